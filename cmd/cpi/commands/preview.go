package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpi-engine/cpi/pkg/executor"
)

func newPreviewCommand() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "preview <provider> <action>",
		Short: "Print the filled command for an action without running it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}
			p, err := r.Get(args[0])
			if err != nil {
				return err
			}

			params, err := parseParamFlags(paramFlags)
			if err != nil {
				return err
			}

			e := executor.New(newLogger())
			command, err := e.Preview(p, args[1], params)
			if err != nil {
				return err
			}
			fmt.Println(command)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "P", nil, "parameter as key=value, repeatable")
	return cmd
}
