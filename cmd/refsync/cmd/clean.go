package cmd

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/log"
)

var cleanCache bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove empty reference directories, or unused cache entries",
	Long: `Removes directories under the workspace's load directory that contain no
files. With --cache, instead removes cached sources that no workspace has
loaded anywhere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())

		if cleanCache {
			removed, err := eng.CleanCache(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range removed {
				logger.Infof("  removed  %s", name)
			}
			logger.Infof("Removed %d unused cache entries.", len(removed))
			return nil
		}

		removed, err := eng.Clean(cmd.Context())
		if err != nil {
			return err
		}
		logger.Infof("Removed %d empty directories.", removed)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "remove cache entries no workspace has loaded")
	rootCmd.AddCommand(cleanCmd)
}
