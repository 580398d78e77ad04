package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for phonescan
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phonescan",
		Short: "Find DDD-DDD-DDDD phone numbers in text",
		Long: `phonescan validates and extracts phone numbers written in the fixed
DDD-DDD-DDDD form (three digits, dash, three digits, dash, four digits).

It scans command-line text, stdin, and plain text, Markdown, or HTML files,
optionally walking whole directory trees, and keeps a history of past scans.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .phonescan/config.yaml)")

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
