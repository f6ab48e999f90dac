package programs

import (
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/ledger"
	"zkl/internal/registry"
)

// Registry creates write-once identity records.
type Registry struct{}

func (p *Registry) Process(ic *ledger.InvokeContext, data []byte) error {
	args, err := registry.DecodeCreate(data)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	recordMeta, err := ic.Meta(0)
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
	if !recordMeta.Writable {
		return ledger.Errorf(ledger.CodeInvalidAccount, "record account must be writable")
	}

	addr, bump, err := registry.DeriveAddress(ic.ProgramID, ownerMeta.Address, args.Index)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if addr != recordMeta.Address {
		return ledger.Errorf(ledger.CodeInvalidAccount, "record address %s does not match seeds", recordMeta.Address)
	}
	key, err := args.Key.X25519()
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if !crypto.VerifyEd25519(domain.Ed25519Public(ownerMeta.Address), registry.BindingMessage(addr), args.Signature[:]) {
		return ledger.Errorf(ledger.CodeUnauthorized, "binding signature does not verify")
	}

	return ic.Create(addr, registry.EncodeRecord(domain.RegistryRecord{
		EncryptionPublicKey: key,
		Owner:               ownerMeta.Address,
		Index:               args.Index,
		Bump:                bump,
		Signature:           args.Signature,
	}))
}
