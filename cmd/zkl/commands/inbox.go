package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"zkl/internal/crypto"
)

func inboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Read your inbox",
	}
	cmd.AddCommand(inboxListCmd(), inboxReadCmd())
	return cmd
}

func inboxListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List inbox records",
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
			msgs, err := wire.Receive.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Println("(no messages)")
				return nil
			}
			for i, m := range msgs {
				key, _ := m.SenderEncryptionPubkey.X25519()
				ts := time.UnixMilli(int64(m.Timestamp)).UTC().Format(time.RFC3339)
				fmt.Printf("%3d  %s  from %s  %s\n", i, ts, crypto.Fingerprint(key.Slice()), m.EncryptedLink)
			}
			return nil
		},
	}
}

func inboxReadCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "read <n>",
		Short: "Fetch and decrypt inbox message n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("message number: %w", err)
			}
			pass, err := readPassphrase(false)
			if err != nil {
				return err
			}
			id, err := wire.Identity.Unlock(pass)
			if err != nil {
				return err
			}
			defer crypto.WipeIdentity(&id)
			pt, _, err := wire.Receive.Open(cmd.Context(), id, n)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(pt)
				return err
			}
			return os.WriteFile(out, pt, 0o600)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the file here instead of stdout")
	return cmd
}
