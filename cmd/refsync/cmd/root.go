package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/log"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "refsync",
	Short: "Mirror remote reference content into local workspaces",
	Long: `refsync manages named reference mirrors: remote sources are cloned once
into a shared cache, then selectively loaded into one or more independent
workspaces. Cached sources can be refreshed, workspaces re-synchronized to
the refreshed content, and loaded copies removed again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := log.New(os.Stdout, os.Stderr, verbose, quiet)
		cmd.SetContext(log.WithLogger(cmd.Context(), logger))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("refsync %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command, printing the failure and any attached
// hint before reporting it to main.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := errkind.HintOf(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		return err
	}
	return nil
}
