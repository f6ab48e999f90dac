package programs

import (
	"encoding/binary"

	"zkl/internal/bridge"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

// Bridge posts outgoing messages and claims incoming VAAs. A VAA is
// accepted only when the guardian set of its emitter chain signed it.
type Bridge struct {
	Guardians bridge.GuardianSets
}

func (p *Bridge) Process(ic *ledger.InvokeContext, data []byte) error {
	post, vaa, err := bridge.DecodeInstruction(data)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if post != nil {
		return p.post(ic, post)
	}
	return p.receive(ic, vaa)
}

func (p *Bridge) post(ic *ledger.InvokeContext, args *bridge.PostArgs) error {
	if len(args.Payload) == 0 || len(args.Payload) > bridge.MaxPayload {
		return ledger.Errorf(ledger.CodeInvalidArgument, "payload is %d bytes", len(args.Payload))
	}
	emitterMeta, err := ic.Meta(0)
	if err != nil {
		return err
	}
	seqMeta, err := ic.Meta(1)
	if err != nil {
		return err
	}
	if !emitterMeta.Signer {
		return ledger.Errorf(ledger.CodeMissingSignature, "emitter must sign")
	}
	seqAddr, _, err := bridge.SequenceAddress(ic.ProgramID, emitterMeta.Address)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if seqAddr != seqMeta.Address {
		return ledger.Errorf(ledger.CodeInvalidAccount, "sequence address %s does not match seeds", seqMeta.Address)
	}

	var seq uint64
	if acc, ok := ic.Get(seqAddr); ok {
		seq = binary.LittleEndian.Uint64(acc.Data)
	} else if err := ic.Create(seqAddr, make([]byte, 8)); err != nil {
		return err
	}

	msgAddr, _, err := bridge.MessageAddress(ic.ProgramID, emitterMeta.Address, seq)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	body := bridge.EncodeBody(domain.CrossChainEnvelope{
		Timestamp:   uint32(ic.Now.Unix()),
		Nonce:       args.Nonce,
		SourceChain: ic.Chain,
		Emitter:     emitterMeta.Address,
		Sequence:    seq,
		Consistency: args.Consistency,
		Payload:     args.Payload,
	})
	if err := ic.Create(msgAddr, body); err != nil {
		return err
	}
	if err := ic.Write(seqAddr, binary.LittleEndian.AppendUint64(nil, seq+1)); err != nil {
		return err
	}
	ic.SetReturnData(binary.LittleEndian.AppendUint64(nil, seq))
	return nil
}

func (p *Bridge) receive(ic *ledger.InvokeContext, raw []byte) error {
	payerMeta, err := ic.Meta(0)
	if err != nil {
		return err
	}
	claimMeta, err := ic.Meta(1)
	if err != nil {
		return err
	}
	if !payerMeta.Signer {
		return ledger.Errorf(ledger.CodeMissingSignature, "payer must sign")
	}
	v, err := bridge.ParseVAA(raw)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidVAA, "%v", err)
	}
	if err := p.Guardians.Verify(v); err != nil {
		return ledger.Errorf(ledger.CodeInvalidVAA, "%v", err)
	}
	e := v.Envelope
	claim, _, err := bridge.ClaimAddress(ic.ProgramID, e.SourceChain, e.Emitter, e.Sequence)
	if err != nil {
		return ledger.Errorf(ledger.CodeInvalidArgument, "%v", err)
	}
	if claim != claimMeta.Address {
		return ledger.Errorf(ledger.CodeInvalidAccount, "claim address %s does not match VAA", claimMeta.Address)
	}
	if _, ok := ic.Get(claim); ok {
		return ledger.Errorf(ledger.CodeAlreadyProcessed, "vaa %d/%s/%d already claimed", e.SourceChain, e.Emitter, e.Sequence)
	}
	return ic.Create(claim, v.Body)
}
