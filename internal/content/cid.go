package content

import (
	"fmt"
	"net"
	"strings"

	"github.com/ipfs/go-cid"
	ma "github.com/multiformats/go-multiaddr"
	mh "github.com/multiformats/go-multihash"

	"zkl/internal/apperr"
)

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data.
func ComputeCID(data []byte) (string, error) {
	sum, err := mh.Sum(data, mh.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// ValidateCID checks that s parses as a CID and returns its canonical form.
func ValidateCID(s string) (string, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidInput, fmt.Sprintf("invalid content id %q", s), err)
	}
	return c.String(), nil
}

// APIURL converts a content API address into a base URL.
func APIURL(addr string) (string, error) {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/"), nil
	}
	m, err := ma.NewMultiaddr(addr)
	if err != nil {
		return "", fmt.Errorf("content api address %q: %w", addr, err)
	}
	var host string
	for _, code := range []int{ma.P_IP4, ma.P_IP6, ma.P_DNS, ma.P_DNS4, ma.P_DNS6} {
		if v, err := m.ValueForProtocol(code); err == nil {
			host = v
			break
		}
	}
	port, err := m.ValueForProtocol(ma.P_TCP)
	if host == "" || err != nil {
		return "", fmt.Errorf("content api address %q needs a host and a tcp port", addr)
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
