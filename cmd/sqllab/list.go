package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
)

func newListCmd() *cobra.Command {
	var scenariosDir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := registerScenarioFiles(scenariosDir); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range core.Cases() {
				if reason := c.SkipReason(); reason != "" {
					fmt.Fprintf(out, "%s\tskipped: %s\n", c.Name(), reason)
					continue
				}
				fmt.Fprintln(out, c.Name())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scenariosDir, "scenarios-dir", "", "directory of YAML scenarios")
	return cmd
}
