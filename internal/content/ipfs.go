package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	shell "github.com/ipfs/go-ipfs-api"

	"zkl/internal/apperr"
	"zkl/internal/domain"
	"zkl/internal/rpc"
)

// IPFS HTTP API paths.
const (
	PathAdd     = "/api/v0/add"
	PathPin     = "/api/v0/pin/add"
	PathCat     = "/api/v0/cat"
	PathVersion = "/api/v0/version"
)

// Error codes carried in a NodeError.
const (
	ErrNormal   = 0
	ErrClient   = 1
	ErrNotFound = 3
)

const maxCat = 256 << 20

// AddResponse is the body of a successful add.
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// PinResponse is the body of a successful pin.
type PinResponse struct {
	Pins []string `json:"Pins"`
}

// VersionResponse is the body of a version call.
type VersionResponse struct {
	Version string `json:"Version"`
	Commit  string `json:"Commit"`
}

// NodeError is the JSON error body of the node API.
type NodeError struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

// IPFSClient is a domain.ContentStore backed by an IPFS node.
type IPFSClient struct {
	sh  *shell.Shell
	rc  *rpc.Client
	log *slog.Logger
}

// NewIPFSClient returns a client for the node at rc.Base. Requests share
// rc's timeout and rate limit.
func NewIPFSClient(rc *rpc.Client, log *slog.Logger) *IPFSClient {
	if log == nil {
		log = slog.Default()
	}
	return &IPFSClient{
		sh:  shell.NewShellWithClient(rc.Base, rc.HTTPClient()),
		rc:  rc,
		log: log,
	}
}

func (c *IPFSClient) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rc.Timeout > 0 {
		return context.WithTimeout(ctx, c.rc.Timeout)
	}
	return context.WithCancel(ctx)
}

// Add uploads data and returns its content id. It does not pin.
func (c *IPFSClient) Add(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := c.context(ctx)
	defer cancel()

	var out AddResponse
	err := c.sh.Request("add").
		Option("cid-version", 1).
		Option("raw-leaves", true).
		Option("pin", false).
		FileBody(bytes.NewReader(data)).
		Exec(ctx, &out)
	if err != nil {
		return "", c.mapError(ctx, err)
	}
	id, err := ValidateCID(out.Hash)
	if err != nil {
		return "", apperr.Internal("content store returned a bad id", err)
	}
	c.log.Debug("content added", "cid", id, "bytes", len(data))
	return id, nil
}

// Pin asks the node to retain id.
func (c *IPFSClient) Pin(ctx context.Context, id string) error {
	ctx, cancel := c.context(ctx)
	defer cancel()

	var out PinResponse
	if err := c.sh.Request("pin/add", id).Exec(ctx, &out); err != nil {
		return c.mapError(ctx, err)
	}
	for _, p := range out.Pins {
		if p == id {
			return nil
		}
	}
	return fmt.Errorf("pin %s: node pinned %v", id, out.Pins)
}

// Cat fetches the bytes stored under id.
func (c *IPFSClient) Cat(ctx context.Context, id string) ([]byte, error) {
	if _, err := ValidateCID(id); err != nil {
		return nil, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()

	resp, err := c.sh.Request("cat", id).Send(ctx)
	if err != nil {
		return nil, c.mapError(ctx, err)
	}
	defer resp.Close()
	if resp.Error != nil {
		return nil, c.mapError(ctx, resp.Error)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Output, maxCat+1))
	if err != nil {
		return nil, rpc.Classify(ctx, fmt.Errorf("cat %s: %w", id, err))
	}
	if len(b) > maxCat {
		return nil, fmt.Errorf("cat %s: content exceeds %d bytes", id, maxCat)
	}
	return b, nil
}

// mapError turns a node error body into the matching apperr code. Anything
// that never reached the node is classified like other RPC failures.
func (c *IPFSClient) mapError(ctx context.Context, err error) error {
	var ne *shell.Error
	if !errors.As(err, &ne) {
		return rpc.Classify(ctx, err)
	}
	switch ne.Code {
	case ErrNotFound:
		return apperr.With(apperr.ErrNotFound, ne)
	case ErrClient:
		return apperr.Wrap(apperr.CodeInvalidInput, "content store rejected the request", ne)
	}
	if ne.Message == "command not found" {
		return apperr.Internal(fmt.Sprintf("%s has no IPFS API", c.rc.Base), ne)
	}
	return apperr.Transient("content store", ne)
}

var _ domain.ContentStore = (*IPFSClient)(nil)
