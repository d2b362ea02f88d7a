package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/registry"
)

func newRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List the names pre-populated in a builtins registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := registry.NewWithBuiltins()
			r.RegisterDescriptor(personDescriptor)

			names := r.Names()
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
