// Package domain defines the ledger, inbox and send types shared across zkl
// together with the client and store contracts the services depend on.
// Types live in domain/types and contracts in domain/interfaces; this
// package re-exports both so callers import a single name.
package domain
