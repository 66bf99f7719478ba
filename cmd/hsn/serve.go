package main

import (
	"context"

	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the HSN assistant as a JSON API over HTTP, with an OpenAPI
document, Server-Sent Events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := openApp(sigCtx, cmd, func(c *config.Config) {
			if cmd.Flags().Changed("port") {
				c.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("watch") {
				c.Data.Watch, _ = cmd.Flags().GetBool("watch")
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunServe(sigCtx, app, cli.ServeOptions{
			Port:  app.Config.Server.Port,
			Watch: app.Config.Data.Watch,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("watch", false, "Reload the master data when the file changes")
}
