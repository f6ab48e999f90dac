package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"zkl/internal/apperr"
)

const maxBody = 256 << 20

// Client issues requests against one base URL.
type Client struct {
	Base    string
	HTTP    *http.Client
	Timeout time.Duration
	// Limiter throttles outbound calls; nil disables throttling.
	Limiter *rate.Limiter
}

// New returns a client with the given timeout and requests-per-second
// limit. A limit of zero disables throttling.
func New(base string, timeout time.Duration, perSecond float64) *Client {
	c := &Client{Base: base, HTTP: http.DefaultClient, Timeout: timeout}
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return c
}

// StatusError is a non-2xx response that is not retryable.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// Decode unmarshals the error body into out.
func (e *StatusError) Decode(out any) error { return json.Unmarshal(e.Body, out) }

// PostJSON sends in as JSON and decodes the response into out (if non-nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	return c.Do(ctx, http.MethodPost, path, "application/json", buf, out)
}

// GetJSON decodes the response of a GET into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, "", nil, out)
}

// Do performs one request. out may be nil, a *[]byte for the raw body, or
// a value to JSON-decode into.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Classify(ctx, err)
		}
	}

	u := c.Base + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Classify(ctx, fmt.Errorf("%s %s: %w", method, u, err))
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return Classify(ctx, fmt.Errorf("%s %s: read body: %w", method, u, err))
	}
	if len(b) > maxBody {
		return fmt.Errorf("%s %s: response exceeds %d bytes", method, u, maxBody)
	}
	if resp.StatusCode/100 != 2 {
		se := &StatusError{Method: method, URL: u, Status: resp.StatusCode, Body: b}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return apperr.Transient("rpc", se)
		}
		return se
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = b
		return nil
	default:
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, u, err)
		}
		return nil
	}
}

// HTTPClient returns an http.Client for libraries that build their own
// requests against Base. Its requests wait on Limiter.
func (c *Client) HTTPClient() *http.Client {
	base := c.HTTP
	if base == nil {
		base = http.DefaultClient
	}
	hc := *base
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &limitedTransport{next: next, limiter: c.Limiter}
	return &hc
}

type limitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.next.RoundTrip(req)
}

// Classify maps a transport failure to a timeout, a caller cancellation,
// or a transient error.
func Classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.With(apperr.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperr.Transient("rpc", err)
}
