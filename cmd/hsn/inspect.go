package main

import (
	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [prefix]",
	Short: "Describe the loaded master data",
	Long: `Prints table statistics, or a Mermaid flowchart of the code hierarchy
with --format mermaid (optionally limited to codes under prefix).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		prefix := ""
		if len(args) > 0 {
			prefix = args[0]
		}

		app, err := openApp(cmd.Context(), cmd, func(c *config.Config) {
			c.Metrics.Enabled = false
		})
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunInspect(app, format, prefix, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: markdown, json or mermaid")
}
