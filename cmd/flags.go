package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/conneroisu/tweetify/internal/annotate"
	"github.com/conneroisu/tweetify/internal/config"
	"github.com/conneroisu/tweetify/internal/timeago"
	"github.com/conneroisu/tweetify/internal/widget"
)

var (
	_ pflag.Value = (*formatValue)(nil)
	_ pflag.Value = (*modeValue)(nil)
	_ pflag.Value = (*overshootValue)(nil)
	_ pflag.Value = (*timeValue)(nil)
)

// formatValue is an output format flag: html, json or yaml.
type formatValue string

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	switch s {
	case config.FormatHTML, config.FormatJSON, config.FormatYAML:
		*f = formatValue(s)
		return nil
	default:
		return fmt.Errorf("invalid output format %q, must be one of: html, json, yaml", s)
	}
}

func (f *formatValue) Type() string { return "format" }

// modeValue is a widget preset flag.
type modeValue widget.Mode

func (m *modeValue) String() string { return string(*m) }

func (m *modeValue) Set(s string) error {
	mode, err := widget.ParseMode(s)
	if err != nil {
		return err
	}
	*m = modeValue(mode)
	return nil
}

func (m *modeValue) Type() string { return "mode" }

// overshootValue selects what happens to entities that run past the text.
type overshootValue annotate.OvershootPolicy

func (o *overshootValue) String() string { return annotate.OvershootPolicy(*o).String() }

func (o *overshootValue) Set(s string) error {
	policy, err := annotate.ParseOvershootPolicy(s)
	if err != nil {
		return err
	}
	*o = overshootValue(policy)
	return nil
}

func (o *overshootValue) Type() string { return "policy" }

// timeValue accepts anything timeago.Parse does. The empty string unsets it.
type timeValue struct {
	t   time.Time
	set bool
}

func (v *timeValue) String() string {
	if !v.set {
		return ""
	}
	return v.t.Format(time.RFC3339)
}

func (v *timeValue) Set(s string) error {
	if s == "" {
		*v = timeValue{}
		return nil
	}
	t, ok, err := timeago.Parse(s)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q is not a point in time", s)
	}
	*v = timeValue{t: t, set: true}
	return nil
}

func (v *timeValue) Type() string { return "time" }

// Or returns the flag's time, or fallback when it was not given.
func (v *timeValue) Or(fallback time.Time) time.Time {
	if v.set {
		return v.t
	}
	return fallback
}
