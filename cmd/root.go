package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mevzuat",
	Short: "Regulatory compliance tracker",
	Long: `Mevzuat stores companies and regulatory texts, classifies regulations
by keyword rules, links regulations to companies as obligations, and computes
a per-company compliance score.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
