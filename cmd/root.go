// Package cmd provides the tweetify command-line interface.
//
// Configuration is read from several sources with clear precedence:
//  1. Command-line flags (--output, --port, etc.) - highest priority
//  2. Individual environment variables (TWEETIFY_SERVER_PORT, etc.)
//  3. The file named by --config or TWEETIFY_CONFIG_FILE
//  4. .tweetify.yml in the working directory - lowest priority
//
// Environment variables follow the TWEETIFY_<SECTION>_<OPTION> pattern,
// e.g. TWEETIFY_RENDER_FORMAT=json or TWEETIFY_WIDGET_MODE=minimal.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/tweetify/internal/config"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tweetify",
	Short: "Render tweets with linked mentions, hashtags, URLs and media",
	Long: `tweetify turns timeline documents from the Twitter REST API into markup.
Mentions, hashtags, links and media inside each status are replaced with
anchors, timestamps become relative times and the whole timeline can be
laid out as a widget.

Quick Start:
  tweetify render timeline.json            Render the widget as HTML
  tweetify render -o json --fragments -    Annotate statuses read from stdin
  tweetify timeago "Sun Mar 10 11:30:00 +0000 2024"
  tweetify link intent 1001 retweet
  tweetify serve timeline.json             Live preview in the browser`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// Exit codes returned by ExitCode.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitInputError = 2
)

// ExitCode maps a command error onto the process exit status. Errors the
// user can fix by changing the input exit with ExitInputError.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case tweeterrors.IsRecoverable(err):
		return ExitInputError
	default:
		return ExitFailure
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .tweetify.yml, can also use TWEETIFY_CONFIG_FILE env var)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

// initConfig points viper at the config file and enables TWEETIFY_
// environment overrides. A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(config.EnvPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(config.FileName)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the validated configuration and builds the logger it
// describes. Logs go to the command's error stream.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "cli",
	})
	return cfg, logger, nil
}
