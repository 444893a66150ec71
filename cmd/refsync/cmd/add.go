package cmd

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/log"
)

var addBranch string

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Clone a remote source into the shared cache",
	Long: `Clones the given source once into the shared cache under its derived
host/owner/repo name. Adding a source that is already cached is an error;
use 'refsync update' to refresh it instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr, err := newManager(cfg)
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())

		entry, err := mgr.Add(cmd.Context(), args[0], cache.AddOptions{Branch: addBranch})
		if err != nil {
			return err
		}

		logger.Infof("Cached %s", entry.Name)
		logger.Detailf("path: %s", entry.CachePath)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addBranch, "branch", "", "clone a specific branch")
	rootCmd.AddCommand(addCmd)
}
