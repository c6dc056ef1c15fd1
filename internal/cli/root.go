// Package cli implements the geosynth command line.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geomagical/geosynth"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/config"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/kind"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	verbose int
	quiet   bool

	v   *viper.Viper
	cfg config.Config
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "geosynth",
		Short: "Download and inspect the GeoSynth synthetic scene dataset",
		Long: `Download and inspect the GeoSynth synthetic scene dataset.

Settings are read from ~/.config/geosynth/config.yaml (or --config) and
GEOSYNTH_* environment variables. Command line flags take precedence.`,
		Version:           geosynth.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/geosynth/config.yaml)")
	root.PersistentFlags().CountVar(&a.verbose, "verbose", "increase log verbosity (repeatable)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(a.downloadCommand(), a.kindsCommand(), a.configCommand())

	return root
}

// setup loads the configuration and initializes logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := log.LevelFromFlags(a.verbose, a.quiet)
	if a.verbose == 0 && !a.quiet {
		if level, err = log.ParseLevel(cfg.LogLevel); err != nil {
			level = slog.LevelWarn
		}
	}
	log.Init(cmd.ErrOrStderr(), level)
	log.Debug(log.CatCLI, "starting", "command", cmd.Name(), "version", geosynth.Version)

	return nil
}

// registry returns the builtin kinds with the configured bundle compression.
func (a *app) registry() (*kind.Registry, error) {
	ct, err := format.ParseCompression(a.cfg.BundleCompression)
	if err != nil {
		return nil, err
	}
	if ct == format.CompressionDeflate {
		return kind.Default(), nil
	}

	return kind.Default().WithBundleCompression(ct)
}

// Execute runs the command line with ctx and returns the first error.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
