package types

import "time"

// SendStage names a step of the send state machine.
type SendStage string

const (
	StageResolveRecipient SendStage = "ResolveRecipient"
	StageEncrypt          SendStage = "Encrypt"
	StagePublish          SendStage = "Publish"
	StagePin              SendStage = "Pin"
	StageBuildRecord      SendStage = "BuildRecord"
	StageRelayAttest      SendStage = "RelayAttest"
	StageRelayDeliver     SendStage = "RelayDeliver"
	StageInboxAppend      SendStage = "InboxAppend"
	StageDone             SendStage = "Done"
)

// SendRequest describes one file transfer.
type SendRequest struct {
	Plaintext      []byte
	Recipient      Address
	RecipientIndex uint32
	// Destination is the chain the notification is relayed to. The zero
	// value means the home chain and skips the relay.
	Destination ChainID
}

// SendResult reports a finished transfer.
type SendResult struct {
	ID           string
	ContentID    string
	InboxAddress Address
	Record       FileTxRecord
	Relay        *AttestationHandle
	Pinned       bool
	// Duplicate is set when the inbox already held the record.
	Duplicate bool
}

// SendJournalEntry is the persisted progress of a send, used to resume it
// without repeating side effects.
type SendJournalEntry struct {
	ID          string             `json:"id"`
	Key         string             `json:"key"`
	Recipient   Address            `json:"recipient"`
	Stage       SendStage          `json:"stage"`
	ContentID   string             `json:"contentId,omitempty"`
	Record      *FileTxRecord      `json:"record,omitempty"`
	// AttestTx is the signed bridge post, kept so that a retry after an
	// ambiguous failure resubmits the same transaction.
	AttestTx    *Transaction       `json:"attestTx,omitempty"`
	Attestation *AttestationHandle `json:"attestation,omitempty"`
	Delivered   bool               `json:"delivered"`
	Appended    bool               `json:"appended"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
