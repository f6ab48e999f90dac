// Package config loads zkl's runtime configuration.
//
// Values come from built-in defaults, then an optional YAML file, then
// ZKL_* environment variables. Program ids and the content API address are
// parsed once here so that a bad value fails at startup, not mid-send.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"zkl/internal/content"
	"zkl/internal/domain"
	"zkl/internal/programs"
)

// FileName is the config file looked up in the home directory.
const FileName = "config.yaml"

// File is the YAML representation.
type File struct {
	HomeChain string                 `yaml:"homeChain"`
	Networks  map[string]NetworkFile `yaml:"networks"`
	Content   ContentFile            `yaml:"content"`
	Timeout   time.Duration          `yaml:"timeout"`
	Retry     Retry                  `yaml:"retry"`
	RateLimit float64                `yaml:"rateLimit"`
	LogLevel  string                 `yaml:"logLevel"`
}

type NetworkFile struct {
	ChainID  uint16       `yaml:"chainId"`
	RPC      string       `yaml:"rpc"`
	Guardian string       `yaml:"guardian"`
	Programs ProgramsFile `yaml:"programs"`
}

type ProgramsFile struct {
	Registry string `yaml:"registry"`
	Inbox    string `yaml:"inbox"`
	Bridge   string `yaml:"bridge"`
}

type ContentFile struct {
	API string `yaml:"api"`
	Pin *bool  `yaml:"pin"`
}

// Retry bounds the orchestrator's retries of transient failures.
type Retry struct {
	MaxAttempts     int           `yaml:"maxAttempts"`
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
}

// Env holds ZKL_* overrides.
type Env struct {
	Config     string        `envconfig:"CONFIG"`
	HomeChain  string        `split_words:"true"`
	ContentAPI string        `envconfig:"CONTENT_API"`
	Timeout    time.Duration `split_words:"true"`
	RateLimit  float64       `split_words:"true"`
	LogLevel   string        `split_words:"true"`
}

// Network is a resolved chain entry.
type Network struct {
	Name     string
	ChainID  domain.ChainID
	RPC      string
	Guardian string
	Programs programs.IDs
}

// Config is the resolved, validated configuration.
type Config struct {
	HomeChain  string
	Networks   map[string]Network
	ContentAPI string
	Pin        bool
	Timeout    time.Duration
	Retry      Retry
	RateLimit  float64
	LogLevel   string
}

// Default returns the built-in configuration: a local dev ledger pair and
// a local IPFS node.
func Default() File {
	pin := true
	ids := ProgramsFile{
		Registry: "Awboc8a1Z2GcdqUTwWT8ToWUJ1hD3PJALr4bqd3Mtdko",
		Inbox:    "F2eqgbgg9pn9UQfrJ1dUdCPhYbkj4eyvfqk2PEGhD8tv",
		Bridge:   "worm2ZoG2kUd4vFXhvjh93UUH596ayRfgQ2MgjNMTth",
	}
	return File{
		HomeChain: "solana",
		Networks: map[string]NetworkFile{
			"solana": {
				ChainID:  uint16(domain.ChainSolana),
				RPC:      "http://127.0.0.1:8899",
				Guardian: "http://127.0.0.1:8899",
				Programs: ids,
			},
			"ethereum": {
				ChainID:  uint16(domain.ChainEthereum),
				RPC:      "http://127.0.0.1:8898",
				Guardian: "http://127.0.0.1:8898",
				Programs: ids,
			},
		},
		Content:   ContentFile{API: "/ip4/127.0.0.1/tcp/5001", Pin: &pin},
		Timeout:   15 * time.Second,
		Retry:     Retry{MaxAttempts: 5, InitialInterval: 200 * time.Millisecond, MaxInterval: 5 * time.Second},
		RateLimit: 20,
		LogLevel:  "info",
	}
}

// Load resolves configuration. path, if set, must exist; otherwise
// $ZKL_CONFIG and then <home>/config.yaml are tried, and a missing file
// falls back to defaults.
func Load(path, home string) (Config, error) {
	var env Env
	if err := envconfig.Process("zkl", &env); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	f := Default()
	required := path != ""
	if path == "" {
		path = env.Config
		required = path != ""
	}
	if path == "" && home != "" {
		path = filepath.Join(home, FileName)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var parsed File
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
			Merge(&f, parsed)
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyEnv(&f, env)
	return Resolve(f)
}

// Merge overlays the set fields of src onto dst. Networks merge by name.
func Merge(dst *File, src File) {
	if src.HomeChain != "" {
		dst.HomeChain = src.HomeChain
	}
	for name, n := range src.Networks {
		cur := dst.Networks[name]
		if n.ChainID != 0 {
			cur.ChainID = n.ChainID
		}
		if n.RPC != "" {
			cur.RPC = n.RPC
		}
		if n.Guardian != "" {
			cur.Guardian = n.Guardian
		}
		if n.Programs.Registry != "" {
			cur.Programs.Registry = n.Programs.Registry
		}
		if n.Programs.Inbox != "" {
			cur.Programs.Inbox = n.Programs.Inbox
		}
		if n.Programs.Bridge != "" {
			cur.Programs.Bridge = n.Programs.Bridge
		}
		if dst.Networks == nil {
			dst.Networks = make(map[string]NetworkFile)
		}
		dst.Networks[name] = cur
	}
	if src.Content.API != "" {
		dst.Content.API = src.Content.API
	}
	if src.Content.Pin != nil {
		dst.Content.Pin = src.Content.Pin
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.Retry.MaxAttempts != 0 {
		dst.Retry.MaxAttempts = src.Retry.MaxAttempts
	}
	if src.Retry.InitialInterval != 0 {
		dst.Retry.InitialInterval = src.Retry.InitialInterval
	}
	if src.Retry.MaxInterval != 0 {
		dst.Retry.MaxInterval = src.Retry.MaxInterval
	}
	if src.RateLimit != 0 {
		dst.RateLimit = src.RateLimit
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

func applyEnv(f *File, env Env) {
	if env.HomeChain != "" {
		f.HomeChain = env.HomeChain
	}
	if env.ContentAPI != "" {
		f.Content.API = env.ContentAPI
	}
	if env.Timeout != 0 {
		f.Timeout = env.Timeout
	}
	if env.RateLimit != 0 {
		f.RateLimit = env.RateLimit
	}
	if env.LogLevel != "" {
		f.LogLevel = env.LogLevel
	}
}

// Resolve validates f and parses addresses.
func Resolve(f File) (Config, error) {
	c := Config{
		HomeChain: f.HomeChain,
		Networks:  make(map[string]Network, len(f.Networks)),
		Pin:       f.Content.Pin == nil || *f.Content.Pin,
		Timeout:   f.Timeout,
		Retry:     f.Retry,
		RateLimit: f.RateLimit,
		LogLevel:  f.LogLevel,
	}
	seen := make(map[domain.ChainID]string)
	for name, n := range f.Networks {
		if n.ChainID == 0 {
			return Config{}, fmt.Errorf("network %s: chainId is required", name)
		}
		if other, dup := seen[domain.ChainID(n.ChainID)]; dup {
			return Config{}, fmt.Errorf("networks %s and %s share chainId %d", other, name, n.ChainID)
		}
		seen[domain.ChainID(n.ChainID)] = name
		if n.RPC == "" {
			return Config{}, fmt.Errorf("network %s: rpc is required", name)
		}
		ids, err := parsePrograms(n.Programs)
		if err != nil {
			return Config{}, fmt.Errorf("network %s: %w", name, err)
		}
		c.Networks[name] = Network{Name: name, ChainID: domain.ChainID(n.ChainID), RPC: n.RPC, Guardian: n.Guardian, Programs: ids}
	}
	if _, ok := c.Networks[c.HomeChain]; !ok {
		return Config{}, fmt.Errorf("home chain %q is not a configured network", c.HomeChain)
	}
	api, err := content.APIURL(f.Content.API)
	if err != nil {
		return Config{}, err
	}
	c.ContentAPI = api
	if c.Timeout <= 0 {
		return Config{}, fmt.Errorf("timeout must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("retry.maxAttempts must be at least 1")
	}
	return c, nil
}

func parsePrograms(p ProgramsFile) (programs.IDs, error) {
	var ids programs.IDs
	var err error
	if ids.Registry, err = domain.ParseAddress(p.Registry); err != nil {
		return ids, fmt.Errorf("registry program: %w", err)
	}
	if ids.Inbox, err = domain.ParseAddress(p.Inbox); err != nil {
		return ids, fmt.Errorf("inbox program: %w", err)
	}
	if ids.Bridge, err = domain.ParseAddress(p.Bridge); err != nil {
		return ids, fmt.Errorf("bridge program: %w", err)
	}
	return ids, nil
}

// Home returns the home network.
func (c Config) Home() Network { return c.Networks[c.HomeChain] }

// Lookup finds a network by name or decimal chain id.
func (c Config) Lookup(nameOrID string) (Network, error) {
	if n, ok := c.Networks[nameOrID]; ok {
		return n, nil
	}
	for _, n := range c.Networks {
		if fmt.Sprint(uint16(n.ChainID)) == nameOrID {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("unknown chain %q (configured: %v)", nameOrID, c.names())
}

func (c Config) names() []string {
	out := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
