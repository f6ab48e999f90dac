package registry

import (
	"encoding/binary"
	"fmt"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

const (
	// TagInitialized marks a written record in byte 0.
	TagInitialized byte = 1

	// RecordSize is the allocated size of a registry account.
	RecordSize = 1 + domain.EncodedKeySize + domain.AddressSize + 4 + 1 + 64

	keyOffset = 1

	ixCreate byte = 0

	seedPrefix    = "zkl_account"
	bindingPrefix = "ZKLAccount:"
)

// Seeds returns the address seeds of owner's record at index.
func Seeds(owner domain.Address, index uint32) [][]byte {
	return [][]byte{[]byte(seedPrefix), owner[:], binary.LittleEndian.AppendUint32(nil, index)}
}

// DeriveAddress returns the record address and bump for owner at index.
func DeriveAddress(programID, owner domain.Address, index uint32) (domain.Address, uint8, error) {
	return ledger.FindProgramAddress(Seeds(owner, index), programID)
}

// BindingMessage is what the owner signs to bind the record address.
func BindingMessage(record domain.Address) []byte {
	return []byte(bindingPrefix + record.String())
}

// recordLayout is the Borsh form of a registry account.
type recordLayout struct {
	Tag       uint8
	Key       domain.EncodedKey
	Owner     domain.Address
	Index     uint32
	Bump      uint8
	Signature [64]byte
}

// EncodeRecord lays out r in account form.
func EncodeRecord(r domain.RegistryRecord) []byte {
	return ledger.EncodeBorsh(recordLayout{
		Tag:       TagInitialized,
		Key:       domain.EncodeX25519(r.EncryptionPublicKey),
		Owner:     r.Owner,
		Index:     r.Index,
		Bump:      r.Bump,
		Signature: r.Signature,
	})
}

// DecodeKey reads only the encryption key at its fixed offset.
func DecodeKey(data []byte) (domain.X25519Public, error) {
	if len(data) < keyOffset+domain.EncodedKeySize {
		return domain.X25519Public{}, apperr.InvalidInput(fmt.Sprintf("registry account is %d bytes", len(data)))
	}
	if data[0] != TagInitialized {
		return domain.X25519Public{}, apperr.ErrRecipientNotRegistered
	}
	k, err := domain.EncodedKeyFromBytes(data[keyOffset : keyOffset+domain.EncodedKeySize])
	if err != nil {
		return domain.X25519Public{}, err
	}
	return k.X25519()
}

// DecodeRecord parses a full registry account.
func DecodeRecord(addr domain.Address, data []byte) (domain.RegistryRecord, error) {
	key, err := DecodeKey(data)
	if err != nil {
		return domain.RegistryRecord{}, err
	}
	if len(data) < RecordSize {
		return domain.RegistryRecord{}, apperr.InvalidInput(fmt.Sprintf("registry account is %d bytes, want %d", len(data), RecordSize))
	}
	l, err := ledger.DecodeBorsh[recordLayout](data[:RecordSize])
	if err != nil {
		return domain.RegistryRecord{}, apperr.Wrap(apperr.CodeInvalidInput, "registry account", err)
	}
	return domain.RegistryRecord{
		Address:             addr,
		EncryptionPublicKey: key,
		Owner:               l.Owner,
		Index:               l.Index,
		Bump:                l.Bump,
		Signature:           l.Signature,
	}, nil
}

// CreateArgs are the arguments of the create instruction.
type CreateArgs struct {
	Key       domain.EncodedKey
	Index     uint32
	Signature [64]byte
}

type createData struct {
	Instruction uint8
	Args        CreateArgs
}

// CreateInstruction builds the instruction that writes owner's record.
func CreateInstruction(programID, record, owner domain.Address, args CreateArgs) domain.Instruction {
	return domain.Instruction{
		ProgramID: programID,
		Accounts: []domain.AccountMeta{
			{Address: record, Writable: true},
			{Address: owner, Signer: true, Writable: true},
		},
		Data: ledger.EncodeBorsh(createData{Instruction: ixCreate, Args: args}),
	}
}

// DecodeCreate parses create instruction data.
func DecodeCreate(data []byte) (CreateArgs, error) {
	d, err := ledger.DecodeBorsh[createData](data)
	if err != nil {
		return CreateArgs{}, fmt.Errorf("registry: malformed create instruction: %w", err)
	}
	if d.Instruction != ixCreate {
		return CreateArgs{}, fmt.Errorf("registry: unknown instruction %d", d.Instruction)
	}
	return d.Args, nil
}
