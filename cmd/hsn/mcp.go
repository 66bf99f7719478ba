package main

import (
	"context"

	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the HSN assistant as an MCP Server.
This allows AI agents to call the HSN validation tool directly.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := openApp(sigCtx, cmd, func(c *config.Config) {
			if cmd.Flags().Changed("transport") {
				c.MCP.Transport, _ = cmd.Flags().GetString("transport")
			}
			if cmd.Flags().Changed("port") {
				c.MCP.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("watch") {
				c.Data.Watch, _ = cmd.Flags().GetBool("watch")
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunMCP(sigCtx, app, cli.MCPOptions{
			Transport: app.Config.MCP.Transport,
			Port:      app.Config.MCP.Port,
			Watch:     app.Config.Data.Watch,
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", config.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Bool("watch", false, "Reload the master data when the file changes")
}
