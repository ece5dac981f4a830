package cli

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"github.com/framecast/framecast/internal/encoder"
	"github.com/framecast/framecast/internal/system"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report the host's encoder and parallelism defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "h264 encoder:    %s\n", encoder.BestH264Encoder())
			fmt.Fprintf(out, "render workers:  %d\n", system.DefaultWorkers())
			if vm, err := mem.VirtualMemory(); err == nil {
				fmt.Fprintf(out, "memory:          %.1f GiB available of %.1f GiB\n",
					float64(vm.Available)/(1<<30), float64(vm.Total)/(1<<30))
			}
			return nil
		},
	}
}
