package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/memcollection"
	"github.com/oxhq/queryalgebra/modification"
)

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Run a sample condition and modification over the built-in dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			coll := memcollection.New(samplePeople())

			activeOnly := condition.OnField{
				Property:  mustField("active"),
				Condition: condition.Equal{Value: true},
			}

			matches, err := coll.Find(activeOnly)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "active before:")
			for _, p := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d)\n", p.Name, p.Age)
			}

			birthdays := modification.OnField{
				Property:     mustField("age"),
				Modification: modification.Increment{Delta: int32(1)},
			}
			touched, err := coll.UpdateWhere(activeOnly, birthdays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nincremented age on %d record(s):\n", touched)
			for _, p := range coll.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d)\n", p.Name, p.Age)
			}
			return nil
		},
	}
}

func mustField(name string) *descriptor.Property {
	prop, ok := personDescriptor.FieldByName(name)
	if !ok {
		panic("queryalgebra: no such field " + name)
	}
	return prop
}
