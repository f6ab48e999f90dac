package inbox

import (
	"fmt"

	"zkl/internal/domain"
	"zkl/internal/ledger"
)

const (
	ixInitialize byte = 0
	ixAppend     byte = 1
)

// InitializeArgs are the arguments of the initialize instruction.
type InitializeArgs struct {
	RecipientKey domain.EncodedKey
	Index        uint32
}

// AppendArgs are the arguments of the append instruction.
type AppendArgs struct {
	ExpectedCount uint32
	Record        domain.FileTxRecord
}

type initializeData struct {
	Instruction uint8
	Args        InitializeArgs
}

// appendHeader precedes the record in append instruction data.
type appendHeader struct {
	Instruction   uint8
	ExpectedCount uint32
}

const appendHeaderSize = 1 + 4

// InitializeInstruction creates owner's inbox at inboxAddr.
func InitializeInstruction(programID, inboxAddr, owner domain.Address, args InitializeArgs) domain.Instruction {
	data := ledger.EncodeBorsh(initializeData{Instruction: ixInitialize, Args: args})
	return domain.Instruction{
		ProgramID: programID,
		Accounts: []domain.AccountMeta{
			{Address: inboxAddr, Writable: true},
			{Address: owner, Signer: true, Writable: true},
		},
		Data: data,
	}
}

// AppendInstruction appends a record to inboxAddr. senderRecord is the
// sender's registry record, which authorizes the sender key.
func AppendInstruction(programID, inboxAddr, sender, senderRecord domain.Address, args AppendArgs) domain.Instruction {
	data := ledger.EncodeBorsh(appendHeader{Instruction: ixAppend, ExpectedCount: args.ExpectedCount})
	data = append(data, EncodeRecord(args.Record)...)
	return domain.Instruction{
		ProgramID: programID,
		Accounts: []domain.AccountMeta{
			{Address: inboxAddr, Writable: true},
			{Address: sender, Signer: true},
			{Address: senderRecord},
		},
		Data: data,
	}
}

// DecodeInstruction parses instruction data into *InitializeArgs or *AppendArgs.
func DecodeInstruction(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("inbox: empty instruction")
	}
	switch data[0] {
	case ixInitialize:
		d, err := ledger.DecodeBorsh[initializeData](data)
		if err != nil {
			return nil, fmt.Errorf("inbox: initialize: %w", err)
		}
		return &d.Args, nil
	case ixAppend:
		if len(data) < appendHeaderSize {
			return nil, fmt.Errorf("inbox: append is %d bytes", len(data))
		}
		h, err := ledger.DecodeBorsh[appendHeader](data[:appendHeaderSize])
		if err != nil {
			return nil, fmt.Errorf("inbox: append: %w", err)
		}
		r, n, err := DecodeRecord(data[appendHeaderSize:])
		if err != nil {
			return nil, err
		}
		if appendHeaderSize+n != len(data) {
			return nil, fmt.Errorf("inbox: %d trailing bytes", len(data)-appendHeaderSize-n)
		}
		return &AppendArgs{ExpectedCount: h.ExpectedCount, Record: r}, nil
	}
	return nil, fmt.Errorf("inbox: unknown instruction %d", data[0])
}
