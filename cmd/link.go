package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/tweetify/internal/links"
	"github.com/conneroisu/tweetify/internal/widget"
)

var (
	requestCount int
	requestMode  = modeValue(widget.ModeDefault)
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Build profile, status, intent, search and avatar URLs",
}

var linkUserCmd = &cobra.Command{
	Use:   "user <screen-name> [status-id]",
	Short: "Print the profile URL, or the status URL when an id is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		status := ""
		if len(args) == 2 {
			status = args[1]
		}
		return printLine(cmd, cfg.LinkBuilder().UserURL(args[0], status))
	},
}

var linkIntentCmd = &cobra.Command{
	Use:       "intent <status-id> <reply|retweet|favorite>",
	Short:     "Print the web intent URL for a status",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(links.IntentReply), string(links.IntentRetweet), string(links.IntentFavorite)},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		action, err := links.ParseIntent(args[1])
		if err != nil {
			return err
		}
		u, err := cfg.LinkBuilder().IntentURL(args[0], action)
		if err != nil {
			return err
		}
		return printLine(cmd, u)
	},
}

var linkSearchCmd = &cobra.Command{
	Use:   "search <hashtag>",
	Short: "Print the search URL for a hashtag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return printLine(cmd, cfg.LinkBuilder().SearchURL(args[0]))
	},
}

var linkAvatarCmd = &cobra.Command{
	Use:   "avatar <profile-image-url>",
	Short: "Print the larger variant of a profile image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printLine(cmd, links.AvatarURL(args[0]))
	},
}

var linkRequestCmd = &cobra.Command{
	Use:   "request <screen-name|user-id>",
	Short: "Print the user_timeline URL that yields the document to render",
	Long: `Print the user_timeline request for a user. Numeric arguments are
treated as user ids. The widget settings decide whether retweets and
replies are requested.`,
	Args: cobra.ExactArgs(1),
	RunE: runLinkRequest,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.AddCommand(linkUserCmd, linkIntentCmd, linkSearchCmd, linkAvatarCmd, linkRequestCmd)

	linkCmd.PersistentFlags().String("base", links.DefaultBase, "base URL links are built on")
	_ = viper.BindPFlag("links.base", linkCmd.PersistentFlags().Lookup("base"))

	linkRequestCmd.Flags().IntVarP(&requestCount, "count", "n", widget.DefaultOptions().TweetCount, "number of statuses to request")
	linkRequestCmd.Flags().Var(&requestMode, "mode", "widget preset (default, full, medium, minimal)")
}

func runLinkRequest(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	user := widget.ForUser(args[0])
	opts := cfg.Widget.Options
	opts.ScreenName, opts.UserID = user.ScreenName, user.UserID
	if cmd.Flags().Changed("count") {
		opts.TweetCount = requestCount
	}

	mode, err := widget.ParseMode(cfg.Widget.Mode)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mode") {
		mode = widget.Mode(requestMode)
	}
	opts = mode.Apply(opts)

	if err := opts.Validate(); err != nil {
		return err
	}
	return printLine(cmd, opts.RequestURL())
}

func printLine(cmd *cobra.Command, s string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}
