package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/nlsearch/internal/objective"
)

func newObjectivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "objectives",
		Short: "List the available objective functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range objective.Names() {
				obj, err := objective.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, obj.Domain())
			}
			return nil
		},
	}
}
