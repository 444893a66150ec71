package cmd

import (
	"github.com/spf13/cobra"

	"github.com/refsync/refsync/internal/config"
	"github.com/refsync/refsync/internal/errkind"
	"github.com/refsync/refsync/internal/log"
)

var configCmd = &cobra.Command{
	Use:   "config [get <key> | set <key> <value>]",
	Short: "Show or edit refsync settings",
	Long: `Without arguments, prints the effective configuration. 'get' prints one
key, 'set' assigns it. Keys: cacheDir, loadDir, autoIgnore.`,
	Args: cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		logger := log.FromContext(cmd.Context())

		switch {
		case len(args) == 0:
			cacheDir, err := cfg.EffectiveCacheDir()
			if err != nil {
				return err
			}
			logger.Infof("cacheDir:   %s", cacheDir)
			logger.Infof("loadDir:    %s", cfg.EffectiveLoadDir())
			logger.Infof("autoIgnore: %v", cfg.IgnoreEnabled())
			return nil

		case args[0] == "get" && len(args) == 2:
			value, err := cfg.Get(args[1])
			if err != nil {
				return errkind.Wrap(errkind.InvalidInput, err, "reading config")
			}
			logger.Infof("%s", value)
			return nil

		case args[0] == "set" && len(args) == 3:
			if err := cfg.Set(args[1], args[2]); err != nil {
				return errkind.Wrap(errkind.InvalidInput, err, "updating config")
			}
			return config.Save(path, cfg)

		default:
			return errkind.New(errkind.InvalidInput, "usage: refsync config [get <key> | set <key> <value>]")
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
