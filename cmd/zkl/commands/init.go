package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zkl/internal/crypto"
	"zkl/internal/domain"
)

func initCmd() *cobra.Command {
	var (
		restore bool
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an identity, register it on the ledger and initialize its inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, err := readPassphrase(true)
			if err != nil {
				return err
			}

			var (
				id       domain.Identity
				mnemonic string
			)
			if restore {
				fmt.Fprint(os.Stderr, "Mnemonic: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return err
				}
				id, err = wire.Identity.Import(pass, line, index)
				if err != nil {
					return err
				}
			} else {
				id, mnemonic, err = wire.Identity.Create(pass, index)
				if err != nil {
					return err
				}
				fmt.Printf("Recovery phrase (write it down, it is shown once):\n\n  %s\n\n", mnemonic)
			}
			defer crypto.WipeIdentity(&id)

			fmt.Printf("Identity created.\nAddress:     %s\nIndex:       %d\nFingerprint: %s\n",
				id.Address(), id.RegistryIndex, crypto.Fingerprint(id.EncryptionPublic.Slice()))
			if offline {
				return nil
			}
			record, err := wire.Identity.Register(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("identity saved locally but not registered (run `zkl register`): %w", err)
			}
			fmt.Printf("Registered:  %s\n", record)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&index, "index", 0, "registry index, for several identities per address")
	cmd.Flags().BoolVar(&restore, "restore", false, "restore from a mnemonic read from stdin")
	cmd.Flags().BoolVar(&offline, "offline", false, "create the identity without registering it")
	return cmd
}
