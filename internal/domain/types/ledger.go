package types

// Account is a ledger account as returned by the RPC.
type Account struct {
	Address Address `json:"address"`
	Owner   Address `json:"owner"`
	Data    []byte  `json:"data"`
}

// AccountMeta names an account an instruction touches.
type AccountMeta struct {
	Address  Address `json:"address"`
	Signer   bool    `json:"signer"`
	Writable bool    `json:"writable"`
}

// Instruction invokes one program.
type Instruction struct {
	ProgramID Address       `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      []byte        `json:"data"`
}

// TxSignature is one signer's ed25519 signature over the transaction message.
type TxSignature struct {
	Signer    Address `json:"signer"`
	Signature []byte  `json:"signature"`
}

// Transaction is an atomic, signed batch of instructions.
type Transaction struct {
	FeePayer     Address       `json:"feePayer"`
	Nonce        [16]byte      `json:"nonce"`
	Instructions []Instruction `json:"instructions"`
	Signatures   []TxSignature `json:"signatures"`
}

// Receipt confirms an applied transaction.
type Receipt struct {
	Signature  string `json:"signature"`
	Slot       uint64 `json:"slot"`
	ReturnData []byte `json:"returnData,omitempty"`
}
