package devnet

import (
	"log/slog"
	"maps"

	"zkl/internal/bridge"
	"zkl/internal/content"
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/ledger"
	"zkl/internal/programs"
	"zkl/internal/registry"
)

// Network is one development chain and its off-chain services.
type Network struct {
	Ledger   *ledger.Memory
	Programs programs.IDs
	Guardian *bridge.DevGuardian
	Content  *content.MemoryStore
	log      *slog.Logger
}

// NewNetwork deploys the programs at ids on a fresh ledger for chain. The
// guardian signs this chain's messages with guardianKey. trusted names the
// guardian set of every other chain whose VAAs the bridge accepts.
func NewNetwork(chain domain.ChainID, ids programs.IDs, guardianKey domain.Ed25519Private, trusted bridge.GuardianSets, log *slog.Logger) *Network {
	if log == nil {
		log = slog.Default()
	}
	l := ledger.NewMemory(chain, log.With("chain", chain))
	g := bridge.NewDevGuardian(l, ids.Bridge, guardianKey)
	sets := maps.Clone(trusted)
	if sets == nil {
		sets = make(bridge.GuardianSets)
	}
	sets[chain] = []domain.Ed25519Public{g.PublicKey()}
	programs.DeployAll(l, ids, sets)
	return &Network{
		Ledger:   l,
		Programs: ids,
		Guardian: g,
		Content:  content.NewMemoryStore(),
		log:      log,
	}
}

// Registry returns a registry client bound to the network.
func (n *Network) Registry() *registry.Client {
	return registry.New(n.Ledger, n.Programs.Registry, n.log)
}

// Inbox returns an inbox writer bound to the network.
func (n *Network) Inbox() *inbox.Writer {
	return inbox.NewWriter(n.Ledger, n.Programs.Inbox, n.Programs.Registry, n.log)
}

// Bridge returns the network as a bridge endpoint.
func (n *Network) Bridge() bridge.Network {
	return bridge.Network{Ledger: n.Ledger, Program: n.Programs.Bridge}
}
