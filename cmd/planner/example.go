package main

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/config"
	"github.com/spf13/cobra"
)

func exampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [path]",
		Short: "Write an example household file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "household_example.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			ip := config.NewInputParser()
			if err := ip.SaveHousehold(ip.CreateExampleHousehold(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example household written to %s\n", path)
			return nil
		},
	}
}
