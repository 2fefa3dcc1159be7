package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MiuraToya/pythaw/analyzer"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rule set",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, r := range analyzer.BuiltinRules() {
			fmt.Printf("%s  %-45s %s\n", r.Code, r.Pattern, r.Message)
		}
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
