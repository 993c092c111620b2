package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/tweetify/internal/config"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/loader"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/markup"
	"github.com/conneroisu/tweetify/internal/tweet"
	"github.com/conneroisu/tweetify/internal/widget"
)

var (
	renderFormat    = formatValue(config.FormatHTML)
	renderMode      = modeValue(widget.ModeDefault)
	renderOvershoot overshootValue
	renderFragments bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Annotate a timeline document and print the result",
	Long: `Load a user_timeline document, annotate every status and print the
widget markup. Pass - to read the document from standard input; without an
argument the configured source.path is used.

Examples:
  tweetify render timeline.json                   # Widget as HTML
  tweetify render --mode minimal timeline.json    # Only the status list
  tweetify render -o json --fragments timeline.json
  curl -s $URL | tweetify render -o yaml -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	f := renderCmd.Flags()
	f.VarP(&renderFormat, "output", "o", "output format (html, json, yaml)")
	f.Var(&renderMode, "mode", "widget preset (default, full, medium, minimal)")
	f.Var(&renderOvershoot, "overshoot", "entities running past the end of the text (strict, clamp)")
	f.BoolVar(&renderFragments, "fragments", false, "print only the annotated text of each status")

	_ = viper.BindPFlag("render.format", f.Lookup("output"))
	_ = viper.BindPFlag("widget.mode", f.Lookup("mode"))
	_ = viper.BindPFlag("render.overshoot", f.Lookup("overshoot"))
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	statuses, err := readTimeline(cmd, cfg, logger, args)
	if err != nil {
		return err
	}

	w := cfg.NewWidget(logger)
	out := cmd.OutOrStdout()

	if renderFragments {
		annotated, err := w.Annotated(statuses)
		if err != nil {
			return err
		}
		return writeOutput(out, cfg.Render.Format, annotated, func(out io.Writer) error {
			for _, s := range annotated {
				if err := markup.RenderHTML(out, s.Fragments...); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return nil
		})
	}

	frags, err := w.Build(statuses)
	if err != nil {
		return err
	}
	return writeOutput(out, cfg.Render.Format, frags, func(out io.Writer) error {
		if err := markup.RenderHTML(out, frags...); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	})
}

// readTimeline loads the document named by args, or the configured source.
func readTimeline(cmd *cobra.Command, cfg *config.Config, logger logging.Logger, args []string) ([]tweet.Status, error) {
	path := cfg.Source.Path
	if len(args) > 0 {
		path = args[0]
	}

	l := loader.Loader{Logger: logger}
	switch path {
	case "":
		return nil, tweeterrors.NewValidationError(tweeterrors.CodeInvalidOption,
			"no timeline given: pass a file, - for stdin, or set source.path")
	case "-":
		return l.Decode(cmd.InOrStdin())
	default:
		return l.LoadFile(path)
	}
}
