package app

import (
	"log/slog"

	"zkl/internal/bridge"
	"zkl/internal/content"
	"zkl/internal/domain"
	"zkl/internal/inbox"
	"zkl/internal/ledger"
	"zkl/internal/metrics"
	"zkl/internal/registry"
	"zkl/internal/rpc"
	"zkl/internal/services/identity"
	"zkl/internal/services/receive"
	"zkl/internal/services/send"
	"zkl/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config   Config
	Ledger   domain.Ledger
	Registry *registry.Client
	Inbox    *inbox.Writer
	Content  domain.ContentStore
	Relay    *bridge.Client
	Identity *identity.Service
	Send     *send.Service
	Receive  *receive.Service
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := cfg.Settings
	home := s.Home()

	newRPC := func(base string) *rpc.Client { return rpc.New(base, s.Timeout, s.RateLimit) }

	// Home ledger and its programs
	l := ledger.NewHTTPClient(newRPC(home.RPC), home.ChainID, log)
	reg := registry.New(l, home.Programs.Registry, log)
	inb := inbox.NewWriter(l, home.Programs.Inbox, home.Programs.Registry, log)

	// Bridge: the home guardian attests, every other network is a destination
	guardianURL := home.Guardian
	if guardianURL == "" {
		guardianURL = home.RPC
	}
	dests := make(map[domain.ChainID]bridge.Network)
	for _, n := range s.Networks {
		if n.ChainID == home.ChainID {
			continue
		}
		dests[n.ChainID] = bridge.Network{
			Ledger:  ledger.NewHTTPClient(newRPC(n.RPC), n.ChainID, log),
			Program: n.Programs.Bridge,
		}
	}
	relay := bridge.New(
		bridge.Network{Ledger: l, Program: home.Programs.Bridge},
		bridge.NewHTTPGuardian(newRPC(guardianURL)),
		dests,
		bridge.Options{AwaitTimeout: 10 * s.Timeout},
		log,
	)

	cs := content.NewIPFSClient(newRPC(s.ContentAPI), log)

	// File-based stores
	var keys domain.PrivateKeyStore
	if cfg.Keyring {
		keys = store.NewPlatformKeyStore()
	}
	idStore := store.NewIdentityFileStore(cfg.Home, keys)
	journal := store.NewJournalFileStore(cfg.Home)

	// High-level services
	idSvc := identity.New(idStore, reg, inb, log)
	sendSvc := send.New(send.Deps{
		Home:     home.ChainID,
		Registry: reg,
		Content:  cs,
		Relay:    relay,
		Inbox:    inb,
		Journal:  journal,
		Metrics:  cfg.Metrics,
		Log:      log,
	}, send.Options{
		MaxAttempts:     s.Retry.MaxAttempts,
		InitialInterval: s.Retry.InitialInterval,
		MaxInterval:     s.Retry.MaxInterval,
		SubmitTimeout:   s.Timeout,
		Pin:             s.Pin,
	})

	return &Wire{
		Config:   cfg,
		Ledger:   l,
		Registry: reg,
		Inbox:    inb,
		Content:  cs,
		Relay:    relay,
		Identity: idSvc,
		Send:     sendSvc,
		Receive:  receive.New(inb, cs),
		Metrics:  cfg.Metrics,
		Log:      log,
	}, nil
}
