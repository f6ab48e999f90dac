package inbox

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

const (
	discriminatorSize = 8
	headerSize        = discriminatorSize + domain.EncodedKeySize + domain.AddressSize + 4

	// AccountSize is the allocation of one inbox account.
	AccountSize = headerSize + domain.MaxInboxMessages*domain.MaxRecordSize + 1

	seedPrefix = "inbox"
)

var discriminator = func() [discriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:InboxAccount"))
	var d [discriminatorSize]byte
	copy(d[:], sum[:])
	return d
}()

// NextShard is the inbox index that continues a full inbox.
func NextShard(index uint32) uint32 { return index + 1 }

// Seeds returns the address seeds of owner's inbox at index.
func Seeds(owner domain.Address, index uint32) [][]byte {
	return [][]byte{[]byte(seedPrefix), owner[:], binary.LittleEndian.AppendUint32(nil, index)}
}

// DeriveAddress returns the inbox address and bump for owner at index.
func DeriveAddress(programID, owner domain.Address, index uint32) (domain.Address, uint8, error) {
	return ledger.FindProgramAddress(Seeds(owner, index), programID)
}

// linkOffset is where the link length prefix sits in an encoded record.
const linkOffset = domain.EncodedKeySize

// recordSize is the encoded size of a record whose link is n bytes.
func recordSize(n int) int { return domain.EncodedKeySize + 4 + n + 32 + 8 }

// accountHeader precedes the records of an inbox account.
type accountHeader struct {
	Discriminator [discriminatorSize]byte
	RecipientKey  domain.EncodedKey
	Wallet        domain.Address
	Count         uint32
}

// accountLayout is the Borsh form of a whole inbox account.
type accountLayout struct {
	Discriminator [discriminatorSize]byte
	RecipientKey  domain.EncodedKey
	Wallet        domain.Address
	Messages      []domain.FileTxRecord
	Bump          uint8
}

// EncodeRecord serializes r in its Borsh layout.
func EncodeRecord(r domain.FileTxRecord) []byte {
	return ledger.EncodeBorsh(r)
}

// DecodeRecord parses one record from the front of b and returns the
// number of bytes consumed. The link length is bounded before decoding.
func DecodeRecord(b []byte) (domain.FileTxRecord, int, error) {
	if len(b) < linkOffset+4 {
		return domain.FileTxRecord{}, 0, apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("truncated record of %d bytes", len(b)))
	}
	n := binary.LittleEndian.Uint32(b[linkOffset:])
	if n > domain.MaxLinkLength {
		return domain.FileTxRecord{}, 0, apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("link length %d", n))
	}
	size := recordSize(int(n))
	if len(b) < size {
		return domain.FileTxRecord{}, 0, apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("truncated record of %d bytes, want %d", len(b), size))
	}
	r, err := ledger.DecodeBorsh[domain.FileTxRecord](b[:size])
	if err != nil {
		return r, 0, apperr.With(apperr.ErrInvalidRecord, err)
	}
	if err := r.Validate(); err != nil {
		return r, 0, err
	}
	return r, size, nil
}

// EncodeAccount lays out a in account form, padded to AccountSize.
func EncodeAccount(a domain.InboxAccount) ([]byte, error) {
	if len(a.Messages) > domain.MaxInboxMessages {
		return nil, apperr.ErrInboxFull
	}
	b := ledger.EncodeBorsh(accountLayout{
		Discriminator: discriminator,
		RecipientKey:  a.RecipientKey,
		Wallet:        a.Wallet,
		Messages:      a.Messages,
		Bump:          a.Bump,
	})
	if len(b) > AccountSize {
		return nil, apperr.ErrInboxFull
	}
	out := make([]byte, AccountSize)
	copy(out, b)
	return out, nil
}

// DecodeAccount parses an inbox account. Records are decoded one at a time
// so that each link length is checked before it is read.
func DecodeAccount(addr domain.Address, data []byte) (domain.InboxAccount, error) {
	a := domain.InboxAccount{Address: addr}
	if len(data) < headerSize+1 {
		return a, apperr.InvalidInput(fmt.Sprintf("inbox account is %d bytes", len(data)))
	}
	h, err := ledger.DecodeBorsh[accountHeader](data[:headerSize])
	if err != nil {
		return a, apperr.Wrap(apperr.CodeInvalidInput, "inbox account header", err)
	}
	if h.Discriminator != discriminator {
		return a, apperr.InvalidInput("not an inbox account")
	}
	if h.Count > domain.MaxInboxMessages {
		return a, apperr.InvalidInput(fmt.Sprintf("inbox claims %d records", h.Count))
	}
	a.RecipientKey = h.RecipientKey
	a.Wallet = h.Wallet

	off := headerSize
	a.Messages = make([]domain.FileTxRecord, 0, h.Count)
	for i := uint32(0); i < h.Count; i++ {
		r, n, err := DecodeRecord(data[off:])
		if err != nil {
			return a, fmt.Errorf("record %d: %w", i, err)
		}
		a.Messages = append(a.Messages, r)
		off += n
	}
	if off >= len(data) {
		return a, apperr.InvalidInput("inbox account truncated before bump")
	}
	a.Bump = data[off]
	return a, nil
}
