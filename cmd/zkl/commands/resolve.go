package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"zkl/internal/crypto"
	"zkl/internal/domain"
)

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <address>",
		Short: "Print the encryption key registered for a ledger address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := domain.ParseAddress(args[0])
			if err != nil {
				return err
			}
			key, err := wire.Registry.Resolve(cmd.Context(), owner, index)
			if err != nil {
				return err
			}
			fmt.Printf("Key:         %s\nFingerprint: %s\n", key, crypto.Fingerprint(key.Slice()))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&index, "index", 0, "registry index of the address")
	return cmd
}
