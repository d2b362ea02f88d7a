package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/codec"
	"github.com/oxhq/queryalgebra/modification"
)

func newSimplifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simplify",
		Short: "Show a Chain modification before and after Simplify",
		RunE: func(cmd *cobra.Command, args []string) error {
			ageProp := mustField("age")
			chain := modification.Chain{Modifications: []modification.Modification{
				modification.OnField{Property: ageProp, Modification: modification.Assign{Value: int32(30)}},
				modification.OnField{Property: ageProp, Modification: modification.Increment{Delta: int32(5)}},
				modification.OnField{Property: ageProp, Modification: modification.CoerceAtMost{Value: int32(40)}},
			}}

			before, err := encodeAndPrint(cmd, "before", chain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), before)

			after, err := encodeAndPrint(cmd, "after", modification.Simplify(chain))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), after)
			return nil
		},
	}
}

func encodeAndPrint(cmd *cobra.Command, label string, m modification.Modification) (string, error) {
	wire, err := codec.EncodeModification(personDescriptor, m)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:\n%s", label, out), nil
}
