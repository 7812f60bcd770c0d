package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpi-engine/cpi/pkg/cpierrors"
	"github.com/cpi-engine/cpi/pkg/provider"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <provider.json>",
		Short: "Validate a single provider document against the structural validator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			p, err := provider.DecodeAndValidate(data)
			if err != nil {
				if kind, ok := cpierrors.KindOf(err); ok {
					return fmt.Errorf("%s: invalid (%s): %w", path, kind, err)
				}
				return fmt.Errorf("%s: invalid: %w", path, err)
			}

			fmt.Printf("%s: valid — provider %q (type %q), %d action(s)\n", path, p.Name, p.Type, len(p.Actions))
			return nil
		},
	}
	return cmd
}
