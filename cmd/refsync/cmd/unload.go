package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/engine"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/log"
	"github.com/refsync/refsync/internal/match"
	"github.com/refsync/refsync/internal/state"
)

var unloadAll bool

var unloadCmd = &cobra.Command{
	Use:   "unload <name|path>... | --all",
	Short: "Remove loaded references from this workspace",
	Long: `Removes the copied content, the loading record, and the ignore entry for
each named reference, then cleans up directories the removal left empty.
With --all every reference loaded in this workspace is removed. Each item
is processed independently; one failure does not stop the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if unloadAll == (len(args) > 0) {
			return errkind.New(errkind.InvalidInput, "name either specific references or --all, not both or neither")
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())

		var results []engine.UnloadResult
		if unloadAll {
			results, err = eng.UnloadAll(cmd.Context())
			if err != nil {
				return err
			}
		} else {
			records, err := resolveUnloadTargets(eng, args)
			if err != nil {
				return err
			}
			for _, record := range records {
				results = append(results, eng.Unload(cmd.Context(), record))
			}
		}

		failures := 0
		for _, r := range results {
			if r.Success {
				logger.Infof("  unloaded  %s", r.Record.TargetPath)
			} else {
				failures++
				logger.Errorf("%s: %s", r.Record.TargetPath, r.Message)
			}
		}

		logger.Infof("")
		logger.Infof("Unloaded %d of %d, %d failed.", len(results)-failures, len(results), failures)
		if failures > 0 {
			return fmt.Errorf("%d reference(s) failed to unload", failures)
		}
		return nil
	},
}

// resolveUnloadTargets maps each query to exactly one record, prompting on
// ambiguity when possible.
func resolveUnloadTargets(eng *engine.Engine, queries []string) ([]state.Record, error) {
	var records []state.Record
	for _, query := range queries {
		record, err := eng.ResolveRecord(query)
		if errkind.Is(err, errkind.AmbiguousMatch) {
			var ambiguous *match.AmbiguousError
			if !errors.As(err, &ambiguous) {
				return nil, err
			}
			entry, pickErr := disambiguate(err, match.Result{Query: query, Matches: ambiguous.Matches})
			if pickErr != nil {
				return nil, pickErr
			}
			record, err = eng.ResolveRecord(entry.TargetPath)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func init() {
	unloadCmd.Flags().BoolVar(&unloadAll, "all", false, "unload every reference in this workspace")
	rootCmd.AddCommand(unloadCmd)
}
