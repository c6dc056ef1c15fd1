package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geomagical/geosynth/download"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/kind"
)

func (a *app) downloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [kinds...]",
		Short: "Download and extract kind archives",
		Long: fmt.Sprintf(`Download and extract kind archives into <dst>/<variant>.

Kinds are given by name, or by the sentinels "all" and "non-hdr". With no
kinds every non-HDR kind is downloaded. Kinds that have not been published
for the variant are reported and skipped.

Available kinds:
  %s`, kindList()),
		Example: `  geosynth download
  geosynth download rgb depth --variant full
  geosynth download all --dst /data/geosynth --cleanup=false`,
		RunE: a.runDownload,
	}

	flags := cmd.Flags()
	flags.StringP("dst", "d", "", "dataset root (default: ~/data/geosynth)")
	flags.String("variant", "", `dataset variant, "demo" or "full" (default: demo)`)
	flags.BoolP("force", "f", false, "redownload archives that are already present")
	flags.Bool("cleanup", true, "replace extracted archives with an empty marker")

	_ = a.v.BindPFlag("dataset_path", flags.Lookup("dst"))
	_ = a.v.BindPFlag("variant", flags.Lookup("variant"))
	_ = a.v.BindPFlag("force", flags.Lookup("force"))
	_ = a.v.BindPFlag("cleanup", flags.Lookup("cleanup"))

	return cmd
}

func (a *app) runDownload(cmd *cobra.Command, args []string) error {
	r, err := a.registry()
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	bars := newBarReporter(out)
	defer bars.Close()

	path, err := download.Download(cmd.Context(), a.cfg.DatasetPath, args,
		download.WithVariant(a.cfg.Variant),
		download.WithForce(a.cfg.Force),
		download.WithCleanup(a.cfg.Cleanup),
		download.WithBaseURL(a.cfg.DownloadRoot),
		download.WithRegistry(r),
		download.WithProgress(bars),
		download.WithUnavailableFunc(func(name string, v format.Variant) {
			bars.Println(fmt.Sprintf("%s for variant %q has not been uploaded yet.\n    Please check back later.", name, v))
		}),
	)
	if err != nil {
		return err
	}
	bars.Close()
	log.Info(log.CatCLI, "download finished", "path", path)

	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded contents to %s.\n", path)

	return nil
}

func kindList() string {
	names := kind.Default().Names()
	s := ""
	for i, name := range names {
		switch {
		case i == 0:
		case i%4 == 0:
			s += ",\n  "
		default:
			s += ", "
		}
		s += name
	}

	return s
}
