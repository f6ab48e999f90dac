// Package rpc is the JSON-over-HTTP transport shared by the ledger,
// guardian and content store clients.
//
// Every call is bounded by the client timeout, waits on an optional
// client-side rate limiter, and classifies failures:
//
//   - connection errors, 429 and 5xx responses are apperr.CodeTransient,
//   - an expired deadline is apperr.ErrTimeout,
//   - any other non-2xx response is a *StatusError carrying the body so the
//     caller can decode a structured error.
package rpc
