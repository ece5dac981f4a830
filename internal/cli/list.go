package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the manifest's compositions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, reg, err := loadProject(root)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIZE\tFPS\tFRAMES\tDURATION")
			for _, c := range reg.List() {
				seconds := float64(c.DurationInFrames) / float64(c.FPS)
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\t%.2fs\n",
					c.ID, c.Width, c.Height, c.FPS, c.DurationInFrames, seconds)
			}
			return w.Flush()
		},
	}
}
