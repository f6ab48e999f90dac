package domain

import (
	interfaces "zkl/internal/domain/interfaces"
	types "zkl/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Address            = types.Address
	Fingerprint        = types.Fingerprint
	X25519Public       = types.X25519Public
	X25519Private      = types.X25519Private
	Ed25519Public      = types.Ed25519Public
	Ed25519Private     = types.Ed25519Private
	EncodedKey         = types.EncodedKey
	Identity           = types.Identity
	IdentityMeta       = types.IdentityMeta
	FileTxRecord       = types.FileTxRecord
	RegistryRecord     = types.RegistryRecord
	InboxAccount       = types.InboxAccount
	Account            = types.Account
	AccountMeta        = types.AccountMeta
	Instruction        = types.Instruction
	TxSignature        = types.TxSignature
	Transaction        = types.Transaction
	Receipt            = types.Receipt
	ChainID            = types.ChainID
	RelayState         = types.RelayState
	AttestationHandle  = types.AttestationHandle
	CrossChainEnvelope = types.CrossChainEnvelope
	SignedEnvelope     = types.SignedEnvelope
	SendStage          = types.SendStage
	SendRequest        = types.SendRequest
	SendResult         = types.SendResult
	SendJournalEntry   = types.SendJournalEntry
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Ledger          = interfaces.Ledger
	RegistryClient  = interfaces.RegistryClient
	ContentStore    = interfaces.ContentStore
	RelayClient     = interfaces.RelayClient
	InboxWriter     = interfaces.InboxWriter
	IdentityStore   = interfaces.IdentityStore
	PrivateKeyStore = interfaces.PrivateKeyStore
	SendJournal     = interfaces.SendJournal
	IdentityService = interfaces.IdentityService
	SendService     = interfaces.SendService
)

// Constants re-exported from the types subpackage.
const (
	AddressSize      = types.AddressSize
	KeyTypeX25519    = types.KeyTypeX25519
	EncodedKeySize   = types.EncodedKeySize
	MaxLinkLength    = types.MaxLinkLength
	MaxRecordSize    = types.MaxRecordSize
	MaxInboxMessages = types.MaxInboxMessages

	ChainSolana   = types.ChainSolana
	ChainEthereum = types.ChainEthereum

	RelayPending  = types.RelayPending
	RelayAttested = types.RelayAttested
	RelayRelayed  = types.RelayRelayed
	RelayFailed   = types.RelayFailed

	StageResolveRecipient = types.StageResolveRecipient
	StageEncrypt          = types.StageEncrypt
	StagePublish          = types.StagePublish
	StagePin              = types.StagePin
	StageBuildRecord      = types.StageBuildRecord
	StageRelayAttest      = types.StageRelayAttest
	StageRelayDeliver     = types.StageRelayDeliver
	StageInboxAppend      = types.StageInboxAppend
	StageDone             = types.StageDone
)

// Constructors re-exported from the types subpackage.
var (
	ParseAddress          = types.ParseAddress
	AddressFromBytes      = types.AddressFromBytes
	MustParseAddress      = types.MustParseAddress
	X25519PublicFromBytes = types.X25519PublicFromBytes
	EncodeX25519          = types.EncodeX25519
	EncodedKeyFromBytes   = types.EncodedKeyFromBytes
	NewFileTxRecord       = types.NewFileTxRecord
)
