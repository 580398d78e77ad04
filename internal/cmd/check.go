package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/phonescan/internal/phone"
)

// NewCheckCommand creates the 'phonescan check' command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <candidate>...",
		Short: "Check whether each argument is exactly a DDD-DDD-DDDD phone number",
		Long: `Check validates each argument as a whole: it must be exactly twelve
characters in the DDD-DDD-DDDD form. Surrounding text makes a candidate
invalid; use 'phonescan scan --text' to search inside text instead.

Exits non-zero when any candidate is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().BoolP("quiet", "q", false, "Print nothing, only set the exit status")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	invalid := 0
	for _, candidate := range args {
		ok := phone.IsPhoneNumber(candidate)
		if !ok {
			invalid++
		}
		if quiet {
			continue
		}
		fmt.Fprintf(out, "%q: ", candidate)
		if ok {
			green.Fprintln(out, "valid")
		} else {
			red.Fprintln(out, "invalid")
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d candidate(s) invalid", invalid, len(args))
	}
	return nil
}
