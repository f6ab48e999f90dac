package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"zkl/internal/crypto"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Publish the stored identity to the registry and initialize its inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassphrase(false)
			if err != nil {
				return err
			}
			id, err := wire.Identity.Unlock(pass)
			if err != nil {
				return err
			}
			defer crypto.WipeIdentity(&id)
			record, err := wire.Identity.Register(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s at %s\n", id.Address(), record)
			return nil
		},
	}
}
