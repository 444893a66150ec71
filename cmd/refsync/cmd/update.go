package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/cache"
	"github.com/refsync/refsync/internal/engine"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/log"
)

var (
	updateSync   bool
	updateForce  bool
	updateBranch string
	updateCheck  bool
)

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Refresh cached sources, optionally re-syncing this workspace",
	Long: `Pulls the named cached source (or all of them) and records the new
revision. With --sync, loaded references in this workspace are then
re-synchronized to the refreshed content. With --check, only reports
whether upstreams moved, without pulling.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateBranch != "" && len(args) == 0 {
			return errkind.New(errkind.InvalidInput, "--branch requires a source name")
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())

		names, err := updateTargets(eng.Cache, args)
		if err != nil {
			return err
		}

		if updateCheck {
			return checkRemotes(cmd, eng, names)
		}

		failures := 0
		for _, name := range names {
			if updateBranch != "" {
				if err := eng.Cache.SwitchBranch(cmd.Context(), name, updateBranch); err != nil {
					failures++
					logger.Errorf("%s: %v", name, err)
					continue
				}
			}

			res, err := eng.Cache.Refresh(cmd.Context(), name)
			if err != nil {
				failures++
				logger.Errorf("%s: %v", name, err)
				continue
			}

			if res.OldRevision == res.NewRevision {
				logger.Infof("  unchanged  %s (%s)", name, shortRev(res.NewRevision))
			} else {
				logger.Infof("  updated    %s %s -> %s", name, shortRev(res.OldRevision), shortRev(res.NewRevision))
			}
		}

		if updateSync {
			if err := syncWorkspace(cmd, eng, logger); err != nil {
				return err
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d source(s) failed to update", failures)
		}
		return nil
	},
}

// updateTargets resolves the update scope: one matched name, or all.
func updateTargets(mgr *cache.Manager, args []string) ([]string, error) {
	if len(args) == 1 {
		entry, err := mgr.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		return []string{entry.Name}, nil
	}

	entries, err := mgr.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

func checkRemotes(cmd *cobra.Command, eng *engine.Engine, names []string) error {
	logger := log.FromContext(cmd.Context())
	failures := 0

	for _, name := range names {
		behind, err := eng.Cache.HasRemoteUpdates(cmd.Context(), name)
		if err != nil {
			failures++
			logger.Errorf("%s: %v", name, err)
			continue
		}
		if behind {
			logger.Infof("  behind     %s", name)
		} else {
			logger.Infof("  current    %s", name)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d source(s) could not be checked", failures)
	}
	return nil
}

func syncWorkspace(cmd *cobra.Command, eng *engine.Engine, logger *log.Logger) error {
	results, err := eng.SyncAll(cmd.Context(), updateForce)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Success {
			logger.Infof("  %s  %s", r.Message, r.Record.TargetPath)
		} else {
			logger.Errorf("%s: %s", r.Record.TargetPath, r.Message)
		}
	}

	logger.Infof("")
	logger.Infof("Sync complete: %d of %d, %d failed.",
		len(results)-engine.FailureCount(results), len(results), engine.FailureCount(results))

	if n := engine.FailureCount(results); n > 0 {
		return fmt.Errorf("%d reference(s) failed to sync", n)
	}
	return nil
}

func init() {
	updateCmd.Flags().BoolVar(&updateSync, "sync", false, "re-sync this workspace's loaded references afterwards")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "re-copy even when revisions match")
	updateCmd.Flags().StringVar(&updateBranch, "branch", "", "switch the source to this branch before updating")
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "report whether upstreams moved, without pulling")
	rootCmd.AddCommand(updateCmd)
}
