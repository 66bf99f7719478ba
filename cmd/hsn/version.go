package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsn"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hsn",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hsn version %s\n", strings.TrimSpace(hsn.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
