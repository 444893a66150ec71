package cmd

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/log"
)

var listLoaded bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached sources, or this workspace's loaded references",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.FromContext(cmd.Context())

		if listLoaded {
			return listLoadedRefs(cmd, logger)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr, err := newManager(cfg)
		if err != nil {
			return err
		}

		entries, err := mgr.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			logger.Infof("No cached sources. Add one with 'refsync add <url>'.")
			return nil
		}

		for _, e := range entries {
			meta, err := mgr.ReadMeta(e)
			if err != nil {
				logger.Infof("%s  (metadata unreadable)", e.Name)
				continue
			}
			line := e.Name + "  " + shortRev(meta.Revision)
			if meta.Branch != "" {
				line += "  [" + meta.Branch + "]"
			}
			logger.Infof("%s", line)
			logger.Detailf("url: %s", e.URL)
			logger.Detailf("path: %s", e.CachePath)
		}
		return nil
	},
}

func listLoadedRefs(cmd *cobra.Command, logger *log.Logger) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}

	statuses, err := eng.StatusAll(cmd.Context())
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		logger.Infof("Nothing loaded in this workspace.")
		return nil
	}

	for _, s := range statuses {
		stateStr := "current"
		switch {
		case s.Err != nil:
			stateStr = "error: " + s.Err.Error()
		case !s.CacheExists:
			stateStr = "cache missing"
		case !s.TargetExists:
			stateStr = "copy missing"
		case s.NeedsSync:
			stateStr = "drifted " + shortRev(s.LoadedRevision) + " -> " + shortRev(s.CacheRevision)
		}
		logger.Infof("%s  %s  (%s)", s.Record.TargetPath, s.Record.Name, stateStr)
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listLoaded, "loaded", false, "list this workspace's loaded references with drift state")
	rootCmd.AddCommand(listCmd)
}
