package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/codec"
	"github.com/oxhq/queryalgebra/condition"
)

func newEncodeCmd() *cobra.Command {
	var nameFilter string
	var minAge int32

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a sample condition into its canonical wire form",
		RunE: func(cmd *cobra.Command, args []string) error {
			nameProp, _ := personDescriptor.FieldByName("name")
			ageProp, _ := personDescriptor.FieldByName("age")

			cond := condition.And{Conditions: []condition.Condition{
				condition.OnField{Property: nameProp, Condition: condition.StringContains{Value: nameFilter, IgnoreCase: true}},
				condition.OnField{Property: ageProp, Condition: condition.GTE{Value: minAge}},
			}}

			wire, err := codec.EncodeCondition(personDescriptor, cond)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(wire, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name-contains", "a", "substring the name must contain")
	cmd.Flags().Int32Var(&minAge, "min-age", 0, "minimum age")
	return cmd
}
