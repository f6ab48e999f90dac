package types

import "fmt"

// ChainID identifies a ledger on the bridge.
type ChainID uint16

const (
	ChainSolana   ChainID = 1
	ChainEthereum ChainID = 2
)

// RelayState tracks a cross-chain message.
type RelayState string

const (
	RelayPending  RelayState = "pending"
	RelayAttested RelayState = "attested"
	RelayRelayed  RelayState = "relayed"
	RelayFailed   RelayState = "failed"
)

// AttestationHandle identifies a message posted to the source bridge and
// tracks how far it has travelled.
type AttestationHandle struct {
	Chain       ChainID    `json:"chain"`
	Emitter     Address    `json:"emitter"`
	Sequence    uint64     `json:"sequence"`
	TxSignature string     `json:"txSignature"`
	State       RelayState `json:"state,omitempty"`
}

func (h AttestationHandle) String() string {
	return fmt.Sprintf("%d/%x/%d", h.Chain, h.Emitter[:], h.Sequence)
}

// CrossChainEnvelope is the attested body of a bridge message.
type CrossChainEnvelope struct {
	Timestamp   uint32
	Nonce       uint32
	SourceChain ChainID
	Emitter     Address
	Sequence    uint64
	Consistency uint8
	Payload     []byte
}

// SignedEnvelope is an envelope plus the guardian-signed bytes that the
// destination bridge verifies.
type SignedEnvelope struct {
	Envelope CrossChainEnvelope
	Raw      []byte
}
