// Package devnet runs a self-contained development network: an in-memory
// ledger with the registry, inbox and bridge programs deployed, a guardian
// that signs every message posted to its bridge, and a content store.
//
// Network is used directly by tests. Server exposes a Network over the same
// HTTP APIs the production clients speak, and is what cmd/ledgerd serves.
package devnet
