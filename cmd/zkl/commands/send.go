package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zkl/internal/crypto"
	"zkl/internal/domain"
)

// send <file> <recipient> [chain]: encrypt a file and deliver it.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <file> <recipient> [chain]",
		Short: "Encrypt a file to a recipient and append it to their inbox",
		Long: "Encrypt a file to a recipient and append it to their inbox. When chain names a\n" +
			"network other than the home chain, the record is also relayed there over the bridge.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			recipient, err := domain.ParseAddress(args[1])
			if err != nil {
				return err
			}
			var dest domain.ChainID
			if len(args) == 3 {
				n, err := wire.Config.Settings.Lookup(args[2])
				if err != nil {
					return err
				}
				dest = n.ChainID
			}

			pass, err := readPassphrase(false)
			if err != nil {
				return err
			}
			sender, err := wire.Identity.Unlock(pass)
			if err != nil {
				return err
			}
			defer crypto.WipeIdentity(&sender)

			res, err := wire.Send.Send(cmd.Context(), sender, domain.SendRequest{
				Plaintext:      data,
				Recipient:      recipient,
				RecipientIndex: index,
				Destination:    dest,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Sent %s (%d bytes)\nContent: %s\nInbox:   %s\n", args[0], len(data), res.ContentID, res.InboxAddress)
			if res.Relay != nil {
				fmt.Printf("Relay:   %s (%s)\n", res.Relay, res.Relay.State)
			}
			if res.Duplicate {
				fmt.Println("Note: the inbox already held this record; nothing was appended.")
			}
			if !res.Pinned && wire.Config.Settings.Pin {
				fmt.Println("Warning: content is published but not pinned.")
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&index, "index", 0, "recipient's registry index")
	return cmd
}
