package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/tweetify/internal/config"
	"github.com/conneroisu/tweetify/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, commit, build time, Go version and platform of
this binary.

Examples:
  tweetify version            # All build information
  tweetify version --short    # Version and abbreviated commit
  tweetify version -o json    # Machine readable`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "output", "o", "text", "output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	if versionShort {
		_, err := fmt.Fprintln(out, info.Short())
		return err
	}
	switch versionFormat {
	case "text", config.FormatJSON, config.FormatYAML:
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", versionFormat)
	}
	return writeOutput(out, versionFormat, info, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, info.String())
		return err
	})
}
