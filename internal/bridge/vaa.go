package bridge

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"zkl/internal/apperr"
	"zkl/internal/crypto"
	"zkl/internal/domain"
)

const (
	vaaVersion   byte = 1
	sigEntrySize      = 1 + 65
	bodyHeader        = 4 + 4 + 2 + domain.AddressSize + 8 + 1

	// MaxPayload bounds a bridged payload.
	MaxPayload = 1024
)

// GuardianSignature is one entry of a VAA signature list.
type GuardianSignature struct {
	Index     uint8
	Signature [65]byte
}

// VAA is a parsed verified action approval.
type VAA struct {
	Version          uint8
	GuardianSetIndex uint32
	Signatures       []GuardianSignature
	Envelope         domain.CrossChainEnvelope
	Body             []byte
}

// EncodeBody serializes the signed portion of a VAA.
func EncodeBody(e domain.CrossChainEnvelope) []byte {
	b := make([]byte, 0, bodyHeader+len(e.Payload))
	b = binary.BigEndian.AppendUint32(b, e.Timestamp)
	b = binary.BigEndian.AppendUint32(b, e.Nonce)
	b = binary.BigEndian.AppendUint16(b, uint16(e.SourceChain))
	b = append(b, e.Emitter[:]...)
	b = binary.BigEndian.AppendUint64(b, e.Sequence)
	b = append(b, e.Consistency)
	return append(b, e.Payload...)
}

// DecodeBody parses a VAA body.
func DecodeBody(b []byte) (domain.CrossChainEnvelope, error) {
	var e domain.CrossChainEnvelope
	if len(b) < bodyHeader {
		return e, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("vaa body is %d bytes", len(b)))
	}
	e.Timestamp = binary.BigEndian.Uint32(b[0:])
	e.Nonce = binary.BigEndian.Uint32(b[4:])
	e.SourceChain = domain.ChainID(binary.BigEndian.Uint16(b[8:]))
	copy(e.Emitter[:], b[10:])
	e.Sequence = binary.BigEndian.Uint64(b[10+domain.AddressSize:])
	e.Consistency = b[18+domain.AddressSize]
	e.Payload = bytes.Clone(b[bodyHeader:])
	return e, nil
}

// Digest is the hash guardians sign.
func Digest(body []byte) [32]byte {
	h := sha256.Sum256(body)
	return sha256.Sum256(h[:])
}

// SignVAA produces a VAA over e signed by every guardian key, in order.
func SignVAA(e domain.CrossChainEnvelope, setIndex uint32, guardians []domain.Ed25519Private) []byte {
	body := EncodeBody(e)
	digest := Digest(body)

	b := make([]byte, 0, 6+len(guardians)*sigEntrySize+len(body))
	b = append(b, vaaVersion)
	b = binary.BigEndian.AppendUint32(b, setIndex)
	b = append(b, byte(len(guardians)))
	for i, k := range guardians {
		var sig [65]byte
		copy(sig[:], crypto.SignEd25519(k, digest[:]))
		b = append(b, byte(i))
		b = append(b, sig[:]...)
	}
	return append(b, body...)
}

// ParseVAA decodes raw VAA bytes without verifying signatures.
func ParseVAA(raw []byte) (VAA, error) {
	var v VAA
	if len(raw) < 6 {
		return v, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("vaa is %d bytes", len(raw)))
	}
	v.Version = raw[0]
	if v.Version != vaaVersion {
		return v, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("vaa version %d", v.Version))
	}
	v.GuardianSetIndex = binary.BigEndian.Uint32(raw[1:])
	n := int(raw[5])
	off := 6
	if len(raw) < off+n*sigEntrySize {
		return v, apperr.With(apperr.ErrRelayRejected, fmt.Errorf("vaa truncated in signatures"))
	}
	for i := 0; i < n; i++ {
		var s GuardianSignature
		s.Index = raw[off]
		copy(s.Signature[:], raw[off+1:off+sigEntrySize])
		v.Signatures = append(v.Signatures, s)
		off += sigEntrySize
	}
	v.Body = bytes.Clone(raw[off:])
	env, err := DecodeBody(v.Body)
	if err != nil {
		return v, err
	}
	v.Envelope = env
	return v, nil
}

// GuardianSets maps an emitter chain to the guardians that attest its
// messages.
type GuardianSets map[domain.ChainID][]domain.Ed25519Public

// Verify checks v against the set of its emitter chain.
func (s GuardianSets) Verify(v VAA) error {
	set, ok := s[v.Envelope.SourceChain]
	if !ok {
		return fmt.Errorf("no guardian set for chain %d", v.Envelope.SourceChain)
	}
	return v.Verify(set)
}

// Verify checks that every guardian in set signed the body.
func (v VAA) Verify(set []domain.Ed25519Public) error {
	if len(set) == 0 {
		return fmt.Errorf("empty guardian set")
	}
	digest := Digest(v.Body)
	signed := make(map[uint8]bool, len(v.Signatures))
	for _, s := range v.Signatures {
		if int(s.Index) >= len(set) || signed[s.Index] {
			return fmt.Errorf("bad guardian index %d", s.Index)
		}
		if !crypto.VerifyEd25519(set[s.Index], digest[:], s.Signature[:64]) {
			return fmt.Errorf("guardian %d signature invalid", s.Index)
		}
		signed[s.Index] = true
	}
	if len(signed) < len(set) {
		return fmt.Errorf("%d of %d guardians signed", len(signed), len(set))
	}
	return nil
}
