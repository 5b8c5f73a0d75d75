package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display iwslt version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "iwslt v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the bare version number")

	return cmd
}
