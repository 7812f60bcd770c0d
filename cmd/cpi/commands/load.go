package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load all providers from the providers directory and report what loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}

			names := r.List()
			fmt.Printf("loaded %d provider(s) from %s\n", len(names), providersDir)
			for _, name := range names {
				actions, _ := r.ListActions(name)
				fmt.Printf("  %s (%d action(s))\n", name, len(actions))
			}
			return nil
		},
	}
	return cmd
}
