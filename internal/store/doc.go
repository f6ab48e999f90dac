// Package store provides file-based persistence for zkl's local state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the user's configured home
// directory with 0600 permissions.
//
// The package includes stores for:
//   - The sealed identity mnemonic (IdentityFileStore)
//   - The keyring-held sealing key (PlatformKeyStore)
//   - Send progress used for resumption (JournalFileStore)
package store
