package programs

import (
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/ledger"
	"zkl/internal/registry"
)

// Inbox stores bounded, append-only lists of file transfer records.
type Inbox struct {
	RegistryProgram domain.Address
}

func (p *Inbox) Process(ic *ledger.InvokeContext, data []byte) error {
	parsed, err := inbox.DecodeInstruction(data)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	switch args := parsed.(type) {
	case *inbox.InitializeArgs:
		return p.initialize(ic, args)
	case *inbox.AppendArgs:
		return p.append(ic, args)
	}
	return ledger.Errorf(ledger.CodeInvalidArgument, "unhandled instruction")
}

func (p *Inbox) initialize(ic *ledger.InvokeContext, args *inbox.InitializeArgs) error {
	inboxMeta, err := ic.Meta(0)
	if err != nil {
		return err
	}
	ownerMeta, err := ic.Meta(1)
	if err != nil {
		return err
	}
	if !ownerMeta.Signer {
		return ledger.Errorf(ledger.CodeMissingSignature, "owner must sign")
	}
	addr, bump, err := inbox.DeriveAddress(ic.ProgramID, ownerMeta.Address, args.Index)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if addr != inboxMeta.Address {
		return ledger.Errorf(ledger.CodeInvalidAccount, "inbox address %s does not match seeds", inboxMeta.Address)
	}
	if _, err := args.RecipientKey.X25519(); err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	data, err := inbox.EncodeAccount(domain.InboxAccount{
		RecipientKey: args.RecipientKey,
		Wallet:       ownerMeta.Address,
		Bump:         bump,
	})
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	return ic.Create(addr, data)
}

func (p *Inbox) append(ic *ledger.InvokeContext, args *inbox.AppendArgs) error {
	inboxMeta, err := ic.Meta(0)
	if err != nil {
		return err
	}
	senderMeta, err := ic.Meta(1)
	if err != nil {
		return err
	}
	recordMeta, err := ic.Meta(2)
	if err != nil {
		return err
	}
	if !senderMeta.Signer {
		return ledger.Errorf(ledger.CodeMissingSignature, "sender must sign")
	}

	regAcc, ok := ic.Get(recordMeta.Address)
	if !ok || regAcc.Owner != p.RegistryProgram {
		return ledger.Errorf(ledger.CodeUnauthorized, "sender %s has no registry record", senderMeta.Address)
	}
	reg, err := registry.DecodeRecord(recordMeta.Address, regAcc.Data)
	if err != nil || reg.Owner != senderMeta.Address {
		return ledger.Errorf(ledger.CodeUnauthorized, "registry record %s does not belong to sender", recordMeta.Address)
	}
	if domain.EncodeX25519(reg.EncryptionPublicKey) != args.Record.SenderEncryptionPubkey {
		return ledger.Errorf(ledger.CodeUnauthorized, "sender key is not the registered key")
	}

	acc, ok := ic.Get(inboxMeta.Address)
	if !ok {
		return ledger.Errorf(ledger.CodeAccountNotFound, "inbox %s", inboxMeta.Address)
	}
	if acc.Owner != ic.ProgramID {
		return ledger.Errorf(ledger.CodeInvalidAccount, "account %s is not an inbox", inboxMeta.Address)
	}
	state, err := inbox.DecodeAccount(inboxMeta.Address, acc.Data)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidAccount, "%v", err)
	}
	if state.Full() {
		return ledger.Errorf(ledger.CodeInboxFull, "inbox %s holds %d records", inboxMeta.Address, len(state.Messages))
	}
	if uint32(len(state.Messages)) != args.ExpectedCount {
		return ledger.Errorf(ledger.CodeStaleState, "inbox holds %d records, caller expected %d", len(state.Messages), args.ExpectedCount)
	}

	state.Messages = append(state.Messages, args.Record)
	data, err := inbox.EncodeAccount(state)
	if err != nil {
		return ledger.Errorf(ledger.CodeInboxFull, "%v", err)
	}
	return ic.Write(inboxMeta.Address, data)
}
