package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOpts) *cobra.Command {
	var props string

	cmd := &cobra.Command{
		Use:   "validate [composition-id]",
		Short: "Validate the manifest's timelines and prop schemas",
		Long:  "Validate compiles every composition in the manifest, checking timeline arithmetic and declared durations. With an id and --props it additionally checks the props against the composition's schema, exactly as a render would.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, reg, err := loadProject(root)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err := parseProps(props)
				if err != nil {
					return err
				}
				if _, err := reg.Select(args[0], p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "composition %q ok\n", args[0])
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d compositions ok\n", len(reg.List()))
			return nil
		},
	}

	cmd.Flags().StringVar(&props, "props", "", "input props as a JSON object")
	return cmd
}
