package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"zkl/internal/bridge"
	"zkl/internal/crypto"
	"zkl/internal/domain"
	"zkl/internal/programs"
)

var Config struct {
	Listen           string   `split_words:"true" default:":8899"`
	ChainID          uint16   `envconfig:"CHAIN_ID" default:"1"`
	GuardianSeed     string   `split_words:"true"` // hex, 32 bytes; derived from a fixed phrase when empty
	GuardianSets     []string `split_words:"true" default:"1:self,2:self"` // chain:hexkey, "self" is our own key
	RegistryProgram  string   `split_words:"true" default:"Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko"`
	InboxProgram     string   `split_words:"true" default:"F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv"`
	BridgeProgram    string   `split_words:"true" default:"worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth"`
	RateLimit        float64  `split_words:"true" default:"50"`
	RateBurst        int      `split_words:"true" default:"100"`
	LogLevel         string   `split_words:"true" default:"info"`
}

// settings are the parsed forms of Config.
type settings struct {
	chain    domain.ChainID
	programs programs.IDs
	guardian domain.Ed25519Private
	trusted  bridge.GuardianSets
}

func initConfig() (settings, error) {
	var s settings
	if err := envconfig.Process("ledgerd", &Config); err != nil {
		return s, err
	}
	if Config.ChainID == 0 {
		return s, fmt.Errorf("LEDGERD_CHAIN_ID must be non-zero")
	}
	s.chain = domain.ChainID(Config.ChainID)

	var err error
	if s.programs.Registry, err = domain.ParseAddress(Config.RegistryProgram); err != nil {
		return s, fmt.Errorf("registry program: %w", err)
	}
	if s.programs.Inbox, err = domain.ParseAddress(Config.InboxProgram); err != nil {
		return s, fmt.Errorf("inbox program: %w", err)
	}
	if s.programs.Bridge, err = domain.ParseAddress(Config.BridgeProgram); err != nil {
		return s, fmt.Errorf("bridge program: %w", err)
	}

	seed := sha256.Sum256([]byte("zkl devnet guardian"))
	if Config.GuardianSeed != "" {
		b, err := hex.DecodeString(Config.GuardianSeed)
		if err != nil || len(b) != len(seed) {
			return s, fmt.Errorf("LEDGERD_GUARDIAN_SEED must be %d hex bytes", len(seed))
		}
		copy(seed[:], b)
	}
	var self domain.Ed25519Public
	s.guardian, self = crypto.Ed25519FromSeed(seed[:])
	crypto.Wipe(seed[:])

	s.trusted, err = parseGuardianSets(Config.GuardianSets, self)
	if err != nil {
		return s, err
	}
	return s, nil
}

// parseGuardianSets reads chain:key entries. Entries for the same chain
// form one set, in order.
func parseGuardianSets(entries []string, self domain.Ed25519Public) (bridge.GuardianSets, error) {
	sets := make(bridge.GuardianSets)
	for _, e := range entries {
		chainStr, keyStr, ok := strings.Cut(strings.TrimSpace(e), ":")
		if !ok {
			return nil, fmt.Errorf("guardian set entry %q is not chain:key", e)
		}
		chain, err := strconv.ParseUint(chainStr, 10, 16)
		if err != nil || chain == 0 {
			return nil, fmt.Errorf("guardian set entry %q: bad chain id", e)
		}
		pub := self
		if keyStr != "self" {
			b, err := hex.DecodeString(keyStr)
			if err != nil || len(b) != len(pub) {
				return nil, fmt.Errorf("guardian set entry %q: key is not a hex ed25519 key", e)
			}
			copy(pub[:], b)
		}
		id := domain.ChainID(chain)
		sets[id] = append(sets[id], pub)
	}
	return sets, nil
}
