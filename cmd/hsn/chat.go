package main

import (
	"context"

	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the HSN assistant",
	Long: `Starts an interactive session. Mention HSN codes in free text and the
assistant validates them, applying the keyword and code guardrails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")
		width, _ := cmd.Flags().GetInt("width")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		// Keep the terminal clean: logs below warn are noise during a chat.
		app, err := openApp(sigCtx, cmd, func(c *config.Config) {
			if !cmd.Flags().Changed("log-level") && c.Log.Level == config.Default().Log.Level {
				c.Log.Level = "warn"
			}
			c.Metrics.Enabled = false
		})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunChat(sigCtx, app, cli.ChatOptions{
			SessionID: sessionID,
			Headless:  headless,
			Width:     width,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (a new one is generated when empty)")
	chatCmd.Flags().Bool("headless", false, "Plain output without banner or markdown rendering")
	chatCmd.Flags().Int("width", 100, "Word wrap width for rendered replies")
}
