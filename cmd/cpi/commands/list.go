package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListProvidersCommand() *cobra.Command {
	var showDigest bool

	cmd := &cobra.Command{
		Use:   "list-providers",
		Short: "List the names of all loaded providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}
			for _, name := range r.List() {
				if !showDigest {
					fmt.Println(name)
					continue
				}
				digest, err := r.Digest(name)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", name, digest)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDigest, "digest", false, "also print each provider file's blake2b digest")
	return cmd
}

func newListActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-actions <provider>",
		Short: "List the action names of one provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}
			actions, err := r.ListActions(args[0])
			if err != nil {
				return err
			}
			for _, name := range actions {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newListParamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-params <provider> <action>",
		Short: "List the required parameters of one action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRegistry()
			if err != nil {
				return err
			}
			params, err := r.ListRequiredParams(args[0], args[1])
			if err != nil {
				return err
			}
			for _, name := range params {
				fmt.Println(name)
			}
			return nil
		},
	}
}
