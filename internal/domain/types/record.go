package types

import (
	"fmt"
	"unicode/utf8"

	"zkl/internal/apperr"
)

// MaxLinkLength bounds FileTxRecord.EncryptedLink in bytes.
const MaxLinkLength = 128

// MaxRecordSize is the largest encoded FileTxRecord.
const MaxRecordSize = EncodedKeySize + 4 + MaxLinkLength + 32 + 8

// FileTxRecord is the notification appended to a recipient's inbox.
type FileTxRecord struct {
	SenderEncryptionPubkey EncodedKey   `json:"senderEncryptionPubkey"`
	EncryptedLink          string       `json:"encryptedLink"`
	EphemeralPubkey        X25519Public `json:"ephemeralPubkey"`
	Timestamp              uint64       `json:"timestamp"`
}

// NewFileTxRecord validates field sizes and returns a record. It is the
// only supported way to build a record for submission.
func NewFileTxRecord(sender []byte, link string, ephemeral []byte, timestamp uint64) (FileTxRecord, error) {
	senderKey, err := EncodedKeyFromBytes(sender)
	if err != nil {
		return FileTxRecord{}, fmt.Errorf("sender key: %w", err)
	}
	eph, err := X25519PublicFromBytes(ephemeral)
	if err != nil {
		return FileTxRecord{}, fmt.Errorf("ephemeral key: %w", err)
	}
	r := FileTxRecord{
		SenderEncryptionPubkey: senderKey,
		EncryptedLink:          link,
		EphemeralPubkey:        eph,
		Timestamp:              timestamp,
	}
	if err := r.Validate(); err != nil {
		return FileTxRecord{}, err
	}
	return r, nil
}

// Validate checks the invariants NewFileTxRecord enforces; decoded records
// go through it too.
func (r FileTxRecord) Validate() error {
	switch {
	case r.EncryptedLink == "":
		return apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("empty link"))
	case len(r.EncryptedLink) > MaxLinkLength:
		return apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("link is %d bytes, max %d", len(r.EncryptedLink), MaxLinkLength))
	case !utf8.ValidString(r.EncryptedLink):
		return apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("link is not valid UTF-8"))
	case r.SenderEncryptionPubkey[0] != KeyTypeX25519:
		return apperr.With(apperr.ErrInvalidRecord, fmt.Errorf("unsupported sender key type 0x%02x", r.SenderEncryptionPubkey[0]))
	}
	return nil
}
