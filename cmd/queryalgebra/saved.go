package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/internal/config"
	"github.com/oxhq/queryalgebra/store"
)

func newSavedCmd(cfg *config.Config) *cobra.Command {
	saved := &cobra.Command{
		Use:   "saved",
		Short: "Save and list named queries in the sqlite-backed store",
	}

	saved.AddCommand(newSavedSaveCmd(cfg), newSavedListCmd(cfg))
	return saved
}

func newSavedSaveCmd(cfg *config.Config) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a sample \"active\" condition under a name",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(cfg.DatabasePath, cfg.Debug)
			if err != nil {
				return err
			}
			defer s.Close()

			cond := condition.OnField{
				Property:  mustField("active"),
				Condition: condition.Equal{Value: true},
			}
			if err := s.Save(name, "Person", personDescriptor, cond, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "active-people", "name to save the query under")
	return cmd
}

func newSavedListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved queries for the Person record type",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(cfg.DatabasePath, cfg.Debug)
			if err != nil {
				return err
			}
			defer s.Close()

			names, err := s.List("Person")
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
