package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/engine"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/log"
	"github.com/refsync/refsync/internal/match"
)

var (
	loadBranch  string
	loadSubPath string
	loadForce   bool
)

var loadCmd = &cobra.Command{
	Use:   "load <name> [path]",
	Short: "Materialize a cached source into this workspace",
	Long: `Copies a cached source into the workspace at the given path (default
<loadDir>/<repo>), records the loading, and registers the path in the
workspace ignore file. The name may be the full host/owner/repo name, the
bare repo name, or a trailing run of name segments.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		opts := engine.LoadOptions{
			Query:   args[0],
			Branch:  loadBranch,
			SubPath: loadSubPath,
			Force:   loadForce,
		}
		if len(args) == 2 {
			opts.TargetPath = args[1]
		}

		record, err := eng.Load(cmd.Context(), opts)
		if errkind.Is(err, errkind.AmbiguousMatch) {
			// Offer an interactive choice; in a pipe the ambiguity
			// stays fatal.
			var ambiguous *match.AmbiguousError
			if !errors.As(err, &ambiguous) {
				return err
			}
			entry, pickErr := disambiguate(err, match.Result{Query: args[0], Matches: ambiguous.Matches})
			if pickErr != nil {
				return pickErr
			}
			opts.Query = entry.Name
			record, err = eng.Load(cmd.Context(), opts)
		}
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())
		logger.Infof("Loaded %s at %s (%s)", record.Name, record.TargetPath, shortRev(record.Revision))
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadBranch, "branch", "", "switch the cached source to this branch before copying")
	loadCmd.Flags().StringVar(&loadSubPath, "path", "", "copy only this sub-directory of the source")
	loadCmd.Flags().BoolVar(&loadForce, "force", false, "replace an existing copy at the target path")
	rootCmd.AddCommand(loadCmd)
}
