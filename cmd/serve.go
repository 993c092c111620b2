package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Preview a rendered timeline with live reload",
	Long: `Serve the widget for a timeline document and reload open pages whenever
the file changes.

Endpoints:
  /           the widget as an HTML page
  /fragments  the annotated text of every status as JSON
  /health     load status of the source file
  /ws         reload notifications

Examples:
  tweetify serve timeline.json
  tweetify serve -p 3000 --host 0.0.0.0 timeline.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Duration("debounce", 300*time.Millisecond, "Wait this long after the last change before reloading")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.debounce", serveCmd.Flags().Lookup("debounce"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Source.Path = args[0]
	}
	if cfg.Source.Path == "" {
		return tweeterrors.NewValidationError(tweeterrors.CodeInvalidOption,
			"no timeline given: pass a file or set source.path")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	fmt.Fprintf(cmd.OutOrStdout(), "Previewing %s at http://%s\n", cfg.Source.Path, addr)
	return srv.Start(ctx)
}
