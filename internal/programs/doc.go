// Package programs implements the registry, inbox and bridge programs for
// the in-process ledger runtime (ledger.Memory). They enforce the same
// account layouts and rules the clients in internal/registry,
// internal/inbox and internal/bridge rely on.
package programs
