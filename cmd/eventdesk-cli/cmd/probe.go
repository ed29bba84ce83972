package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nfrund/eventdesk/internal/probe"
	"github.com/spf13/cobra"
)

var (
	probeURL     string
	probeToken   string
	probeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the realtime notification path end to end",
	Long: `Open a realtime connection, submit one contact message and wait for the
matching new_message notification.

The command exits with a non-zero status when the notification does not
arrive before the timeout.

Examples:
  eventdesk-cli probe
  eventdesk-cli probe --url https://desk.example.com --token $ADMIN_API_TOKEN --timeout 10s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := probe.Run(cmd.Context(), probe.Config{
			BaseURL: probeURL,
			Token:   probeToken,
			Timeout: probeTimeout,
		})
		if err != nil {
			var timeout *probe.TimeoutError
			if errors.As(err, &timeout) {
				return fmt.Errorf("no notification received: %w", err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Notification received in %s\n", res.Latency.Round(time.Millisecond))
		fmt.Fprintf(out, "   ID:      %s\n", res.Message.ID)
		fmt.Fprintf(out, "   Subject: %s\n", res.Message.Subject)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeURL, "url", "http://localhost:8080", "Server base URL")
	probeCmd.Flags().StringVar(&probeToken, "token", os.Getenv("ADMIN_API_TOKEN"), "Admin token for the realtime endpoint")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", probe.DefaultTimeout, "Maximum time to wait for the notification")
}
