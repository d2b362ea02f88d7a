// Command queryalgebra is a small demo CLI exercising the condition,
// modification, codec and registry packages end to end against a
// built-in example record type, the way the teacher's cmd/morfx
// wraps its core packages behind a command-line front end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/internal/config"
)

func main() {
	cfg := config.Load()
	root := newRootCmd(cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "queryalgebra",
		Short: "Demo CLI for the query/update algebra core",
		Long: "queryalgebra builds, encodes, applies and simplifies Condition and " +
			"Modification values against a built-in example record type.",
	}

	root.AddCommand(
		newBuildCmd(),
		newEncodeCmd(),
		newApplyCmd(),
		newSimplifyCmd(),
		newRegistryCmd(),
		newSavedCmd(cfg),
	)
	return root
}
