package bridge

import (
	"encoding/binary"
	"fmt"

	"zkl/internal/domain"
	"zkl/internal/ledger"
)

const (
	ixPostMessage    byte = 0
	ixReceiveMessage byte = 1
)

// SequenceAddress is the account that counts emitter's messages.
func SequenceAddress(programID, emitter domain.Address) (domain.Address, uint8, error) {
	return ledger.FindProgramAddress([][]byte{[]byte("Sequence"), emitter[:]}, programID)
}

// MessageAddress is the account holding emitter's message seq.
func MessageAddress(programID, emitter domain.Address, seq uint64) (domain.Address, uint8, error) {
	return ledger.FindProgramAddress(
		[][]byte{[]byte("PostedMessage"), emitter[:], binary.BigEndian.AppendUint64(nil, seq)},
		programID,
	)
}

// ClaimAddress marks a VAA as consumed on the destination chain.
func ClaimAddress(programID domain.Address, chain domain.ChainID, emitter domain.Address, seq uint64) (domain.Address, uint8, error) {
	return ledger.FindProgramAddress(
		[][]byte{
			[]byte("Claim"),
			binary.BigEndian.AppendUint16(nil, uint16(chain)),
			emitter[:],
			binary.BigEndian.AppendUint64(nil, seq),
		},
		programID,
	)
}

// PostArgs are the arguments of postMessage.
type PostArgs struct {
	Nonce       uint32
	Consistency uint8
	Payload     []byte
}

type postData struct {
	Instruction uint8
	Args        PostArgs
}

// postHeaderSize covers the instruction tag, nonce, consistency and the
// payload length prefix.
const postHeaderSize = 1 + 4 + 1 + 4

// PostMessageInstruction posts a payload from emitter.
func PostMessageInstruction(programID, emitter, sequence domain.Address, args PostArgs) domain.Instruction {
	data := ledger.EncodeBorsh(postData{Instruction: ixPostMessage, Args: args})
	return domain.Instruction{
		ProgramID: programID,
		Accounts: []domain.AccountMeta{
			{Address: emitter, Signer: true, Writable: true},
			{Address: sequence, Writable: true},
		},
		Data: data,
	}
}

// ReceiveMessageInstruction submits a signed VAA on the destination chain.
func ReceiveMessageInstruction(programID, payer, claim domain.Address, vaa []byte) domain.Instruction {
	data := append([]byte{ixReceiveMessage}, vaa...)
	return domain.Instruction{
		ProgramID: programID,
		Accounts: []domain.AccountMeta{
			{Address: payer, Signer: true, Writable: true},
			{Address: claim, Writable: true},
		},
		Data: data,
	}
}

// DecodeInstruction parses bridge instruction data into *PostArgs or the
// raw VAA bytes of a receive.
func DecodeInstruction(data []byte) (post *PostArgs, vaa []byte, err error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("bridge: empty instruction")
	}
	switch data[0] {
	case ixPostMessage:
		if len(data) < postHeaderSize {
			return nil, nil, fmt.Errorf("bridge: post is %d bytes", len(data))
		}
		n := binary.LittleEndian.Uint32(data[postHeaderSize-4:])
		if uint64(len(data)-postHeaderSize) != uint64(n) {
			return nil, nil, fmt.Errorf("bridge: payload length %d, have %d", n, len(data)-postHeaderSize)
		}
		d, err := ledger.DecodeBorsh[postData](data)
		if err != nil {
			return nil, nil, fmt.Errorf("bridge: post: %w", err)
		}
		return &d.Args, nil, nil
	case ixReceiveMessage:
		return nil, append([]byte(nil), data[1:]...), nil
	}
	return nil, nil, fmt.Errorf("bridge: unknown instruction %d", data[0])
}
