// Package ledger talks to the chain that hosts the registry, inbox and
// bridge programs.
//
// It provides
//
//   - program-derived address derivation compatible with Solana
//     (FindProgramAddress),
//   - the canonical transaction message encoding, signing and signature
//     verification (NewTransaction, Sign, Verify),
//   - Borsh helpers for program account and instruction layouts
//     (EncodeBorsh, DecodeBorsh),
//   - an HTTP RPC client (HTTPClient) with per-call timeouts and client-side
//     rate limiting, and
//   - Memory, an in-process ledger runtime that executes Program
//     implementations atomically per transaction. cmd/ledgerd serves it over
//     HTTP and tests use it directly.
//
// Program failures cross the wire as *ProgramError values with a stable
// string code so each client can map them onto its own apperr sentinels.
package ledger
