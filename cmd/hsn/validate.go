package main

import (
	"errors"

	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

var errInvalidCodes = errors.New("one or more codes are not valid")

var validateCmd = &cobra.Command{
	Use:   "validate [codes...]",
	Short: "Validate HSN codes against the master data",
	Long: `Checks each code directly against the reference table and prints one
result per code. Exits with status 1 when any code is not valid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			format = cli.FormatJSON
		}

		// One-shot commands log warnings only unless asked otherwise.
		app, err := openApp(cmd.Context(), cmd, func(c *config.Config) {
			if !cmd.Flags().Changed("log-level") && c.Log.Level == config.Default().Log.Level {
				c.Log.Level = "warn"
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		ok, err := cli.RunValidate(cmd.Context(), app, args, format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !ok {
			return errInvalidCodes
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print results as JSON")
	validateCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: markdown, json or mermaid")
}
