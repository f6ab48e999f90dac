package ledger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"zkl/internal/apperr"
	"zkl/internal/domain"
)

// Program is on-ledger logic invoked by an instruction.
type Program interface {
	Process(ic *InvokeContext, data []byte) error
}

// Memory is an in-process ledger. Each transaction runs against a staged
// copy of the touched accounts and is committed only if every instruction
// succeeds.
type Memory struct {
	mu       sync.Mutex
	chain    domain.ChainID
	slot     uint64
	accounts map[domain.Address]domain.Account
	programs map[domain.Address]Program
	receipts map[string]domain.Receipt
	now      func() time.Time
	log      *slog.Logger
}

// NewMemory returns an empty ledger for chain.
func NewMemory(chain domain.ChainID, log *slog.Logger) *Memory {
	if log == nil {
		log = slog.Default()
	}
	return &Memory{
		chain:    chain,
		accounts: make(map[domain.Address]domain.Account),
		programs: make(map[domain.Address]Program),
		receipts: make(map[string]domain.Receipt),
		now:      time.Now,
		log:      log,
	}
}

// Deploy installs p at programID.
func (m *Memory) Deploy(programID domain.Address, p Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[programID] = p
}

func (m *Memory) ChainID() domain.ChainID { return m.chain }

// Slot returns the number of committed transactions.
func (m *Memory) Slot() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot
}

func (m *Memory) GetAccount(ctx context.Context, addr domain.Address) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[addr]
	if !ok {
		return domain.Account{}, apperr.With(apperr.ErrNotFound, Errorf(CodeAccountNotFound, "%s", addr))
	}
	return cloneAccount(acc), nil
}

// Submit verifies signatures, executes every instruction, and commits. A
// resubmitted transaction returns its original receipt.
func (m *Memory) Submit(ctx context.Context, tx domain.Transaction) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}
	if err := Verify(tx); err != nil {
		return domain.Receipt{}, err
	}
	sig := Signature(tx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.receipts[sig]; ok {
		return r, nil
	}

	staged := make(map[domain.Address]domain.Account)
	var ret []byte
	for i, ix := range tx.Instructions {
		p, ok := m.programs[ix.ProgramID]
		if !ok {
			return domain.Receipt{}, Errorf(CodeInvalidArgument, "instruction %d: unknown program %s", i, ix.ProgramID)
		}
		ic := &InvokeContext{
			ProgramID: ix.ProgramID,
			Accounts:  ix.Accounts,
			Chain:     m.chain,
			Slot:      m.slot + 1,
			Now:       m.now(),
			ledger:    m,
			staged:    staged,
		}
		if err := p.Process(ic, ix.Data); err != nil {
			m.log.Debug("transaction rejected", "signature", sig, "instruction", i, "err", err)
			return domain.Receipt{}, err
		}
		if ic.returnData != nil {
			ret = ic.returnData
		}
	}

	for addr, acc := range staged {
		m.accounts[addr] = acc
	}
	m.slot++
	r := domain.Receipt{Signature: sig, Slot: m.slot, ReturnData: ret}
	m.receipts[sig] = r
	m.log.Debug("transaction committed", "signature", sig, "slot", m.slot, "accounts", len(staged))
	return r, nil
}

// InvokeContext is a program's view of the ledger during one instruction.
type InvokeContext struct {
	ProgramID domain.Address
	Accounts  []domain.AccountMeta
	Chain     domain.ChainID
	Slot      uint64
	Now       time.Time

	ledger     *Memory
	staged     map[domain.Address]domain.Account
	returnData []byte
}

// Get returns the current state of addr including earlier writes in the
// same transaction.
func (ic *InvokeContext) Get(addr domain.Address) (domain.Account, bool) {
	if acc, ok := ic.staged[addr]; ok {
		return cloneAccount(acc), true
	}
	acc, ok := ic.ledger.accounts[addr]
	if !ok {
		return domain.Account{}, false
	}
	return cloneAccount(acc), true
}

// Meta returns the i-th account of the instruction.
func (ic *InvokeContext) Meta(i int) (domain.AccountMeta, error) {
	if i < 0 || i >= len(ic.Accounts) {
		return domain.AccountMeta{}, Errorf(CodeInvalidArgument, "missing account %d", i)
	}
	return ic.Accounts[i], nil
}

// Create allocates addr owned by the invoking program.
func (ic *InvokeContext) Create(addr domain.Address, data []byte) error {
	if _, exists := ic.Get(addr); exists {
		return Errorf(CodeAlreadyInitialized, "account %s already exists", addr)
	}
	ic.staged[addr] = domain.Account{Address: addr, Owner: ic.ProgramID, Data: bytes.Clone(data)}
	return nil
}

// Write replaces the data of an account owned by the invoking program. The
// allocation size cannot change.
func (ic *InvokeContext) Write(addr domain.Address, data []byte) error {
	acc, ok := ic.Get(addr)
	if !ok {
		return Errorf(CodeAccountNotFound, "%s", addr)
	}
	if acc.Owner != ic.ProgramID {
		return Errorf(CodeInvalidAccount, "account %s is not owned by %s", addr, ic.ProgramID)
	}
	if len(data) != len(acc.Data) {
		return Errorf(CodeInvalidArgument, "account %s is %d bytes, write is %d", addr, len(acc.Data), len(data))
	}
	acc.Data = bytes.Clone(data)
	ic.staged[addr] = acc
	return nil
}

// SetReturnData attaches b to the transaction receipt.
func (ic *InvokeContext) SetReturnData(b []byte) { ic.returnData = bytes.Clone(b) }

func cloneAccount(a domain.Account) domain.Account {
	a.Data = bytes.Clone(a.Data)
	return a
}

var _ domain.Ledger = (*Memory)(nil)
