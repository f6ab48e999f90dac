package ledger

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"zkl/internal/crypto"
	"zkl/internal/domain"
)

const (
	metaSigner   byte = 1 << 0
	metaWritable byte = 1 << 1
)

var messageDomain = []byte("zkl-tx-v1")

// NewTransaction builds an unsigned transaction paid for by feePayer.
// A random nonce makes every transaction's signature unique.
func NewTransaction(feePayer domain.Address, ixs ...domain.Instruction) (domain.Transaction, error) {
	tx := domain.Transaction{FeePayer: feePayer, Instructions: ixs}
	if len(ixs) == 0 || len(ixs) > 255 {
		return tx, fmt.Errorf("transaction needs 1..255 instructions, got %d", len(ixs))
	}
	if _, err := rand.Read(tx.Nonce[:]); err != nil {
		return tx, err
	}
	return tx, nil
}

// MessageBytes is the canonical encoding that signers sign.
func MessageBytes(tx domain.Transaction) []byte {
	var b bytes.Buffer
	b.Write(messageDomain)
	b.Write(tx.FeePayer[:])
	b.Write(tx.Nonce[:])
	b.WriteByte(byte(len(tx.Instructions)))
	for _, ix := range tx.Instructions {
		b.Write(ix.ProgramID[:])
		b.WriteByte(byte(len(ix.Accounts)))
		for _, a := range ix.Accounts {
			b.Write(a.Address[:])
			var flags byte
			if a.Signer {
				flags |= metaSigner
			}
			if a.Writable {
				flags |= metaWritable
			}
			b.WriteByte(flags)
		}
		b.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(ix.Data))))
		b.Write(ix.Data)
	}
	return b.Bytes()
}

// Sign appends a signature by each key. Keys must sign in account order
// for Signature to name the fee payer's signature.
func Sign(tx *domain.Transaction, keys ...domain.Ed25519Private) {
	msg := MessageBytes(*tx)
	for _, k := range keys {
		var signer domain.Address
		copy(signer[:], k[32:])
		tx.Signatures = append(tx.Signatures, domain.TxSignature{
			Signer:    signer,
			Signature: crypto.SignEd25519(k, msg),
		})
	}
}

// Verify checks that the fee payer and every account marked as signer
// carries a valid signature.
func Verify(tx domain.Transaction) error {
	if len(tx.Instructions) == 0 || len(tx.Instructions) > 255 {
		return Errorf(CodeInvalidArgument, "transaction has %d instructions", len(tx.Instructions))
	}
	msg := MessageBytes(tx)
	valid := make(map[domain.Address]bool, len(tx.Signatures))
	for _, s := range tx.Signatures {
		if crypto.VerifyEd25519(domain.Ed25519Public(s.Signer), msg, s.Signature) {
			valid[s.Signer] = true
		}
	}
	if !valid[tx.FeePayer] {
		return Errorf(CodeMissingSignature, "fee payer %s did not sign", tx.FeePayer)
	}
	for _, ix := range tx.Instructions {
		if len(ix.Accounts) > 255 {
			return Errorf(CodeInvalidArgument, "instruction lists %d accounts", len(ix.Accounts))
		}
		for _, a := range ix.Accounts {
			if a.Signer && !valid[a.Address] {
				return Errorf(CodeMissingSignature, "account %s did not sign", a.Address)
			}
		}
	}
	return nil
}

// Signature returns the transaction id, the base58 fee payer signature.
func Signature(tx domain.Transaction) string {
	for _, s := range tx.Signatures {
		if s.Signer == tx.FeePayer {
			return base58.Encode(s.Signature)
		}
	}
	return ""
}
