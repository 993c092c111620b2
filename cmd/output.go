package cmd

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/tweetify/internal/config"
)

// writeOutput encodes v as JSON or YAML, and calls html for every other
// format.
func writeOutput(w io.Writer, format string, v interface{}, html func(io.Writer) error) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return html(w)
	}
}
