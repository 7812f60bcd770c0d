package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <provider> <action>",
		Short: "Describe an action's invocation shape: command template, required params, defaults",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}
			descriptor, err := r.DescribeAction(args[0], args[1])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(descriptor, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling descriptor: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
