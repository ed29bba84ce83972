package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/nfrund/eventdesk/internal/app"
	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/logging"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Long: `Start the contact API and the realtime notification gateway.

Configuration is read from the environment and an optional .env file.
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.New()
		cfg := config.New()
		if serveAddr != "" {
			cfg.ServerAddr = serveAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, app.Options{})
		if err != nil {
			return err
		}
		if err := a.Run(ctx); err != nil {
			slog.Error("Server stopped with error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides SERVER_ADDR")
}
