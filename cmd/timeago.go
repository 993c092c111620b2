package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/tweetify/internal/timeago"
)

var timeagoNow timeValue

var timeagoCmd = &cobra.Command{
	Use:   "timeago <value>",
	Short: "Print how long ago a timestamp was",
	Long: `Print a timestamp the way the widget shows it: "just now", "5 minutes ago",
"3 hours ago", or a short date once a day has passed.

The value may be Unix seconds or a date in the created_at layout of the
REST API, RFC 3339 or RFC 1123. Dates are printed in render.timezone.
Empty input ("" or 0) prints nothing.

Examples:
  tweetify timeago "Sun Mar 10 11:30:00 +0000 2024"
  tweetify timeago --now 2024-03-10T12:00:00Z 1710066600`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeago,
}

func init() {
	rootCmd.AddCommand(timeagoCmd)

	timeagoCmd.Flags().Var(&timeagoNow, "now", "reference time (default is the current time)")
}

func runTimeago(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f := timeago.Formatter{Location: cfg.Location()}
	s, ok, err := f.Format(args[0], timeagoNow.Or(time.Now()))
	if err != nil || !ok {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}
