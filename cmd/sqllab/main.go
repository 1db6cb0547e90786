package main

import (
	"os"

	"github.com/spf13/cobra"

	// register the built-in scenarios
	_ "github.com/pingcap/tipocket-sqllab/testcase/sqllab"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "sqllab",
		Short:        "SqlLab browser scenario runner",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(), newListCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
