package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Print the built-in Person descriptor's field layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := personDescriptor
			fmt.Fprintf(cmd.OutOrStdout(), "%s (nullable=%v)\n", d.SerialName, d.Nullable)
			for _, f := range d.Fields() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %-20s optional=%v\n", f.Name, f.Serializer.SerialName, f.Optional)
			}
			return nil
		},
	}
}
