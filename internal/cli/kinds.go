package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/scene"
)

func (a *app) kindsCommand() *cobra.Command {
	var scenePath string

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the registered data kinds",
		Long: `List the registered data kinds with their file name and codec.

With --scene, only the kinds present in that scene directory are listed,
together with their file sizes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.registry()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if scenePath == "" {
				fmt.Fprintln(tw, "NAME\tFILE\tCODEC\tHDR")
				for _, d := range r.Descriptors() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", d.Name, d.FileName(), d.Codec, d.IsHDR())
				}

				return tw.Flush()
			}

			path, err := fsutil.ExpandHome(scenePath)
			if err != nil {
				return err
			}
			s := scene.New(path, scene.WithRegistry(r))
			fmt.Fprintln(tw, "NAME\tFILE\tSIZE")
			for _, name := range s.Kinds() {
				data, err := s.Get(name)
				if err != nil {
					return err
				}
				size, err := fsutil.Size(data.Path())
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, data.Descriptor().FileName(), humanize.IBytes(uint64(size)))
			}

			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&scenePath, "scene", "s", "", "list the kinds present in a scene directory")

	return cmd
}
