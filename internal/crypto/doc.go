// Package crypto exposes the primitives used by zkl.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519,
//     X25519FromSeed, DH)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     Ed25519FromSeed, SignEd25519, VerifyEd25519)
//   - Hybrid public-key encryption of files (Encrypt, Decrypt)
//   - The private-key-at-rest format "nonceHex:ciphertextHex"
//     (EncryptPrivateKey, DecryptPrivateKey) and its password KDF
//     (DeriveSealingKey)
//   - BIP-39 mnemonics and deterministic identity derivation (NewMnemonic,
//     DeriveIdentity)
//   - Best-effort wiping of secrets held in memory (Wipe, WipeIdentity)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Callers should treat returned secrets as
// sensitive and rely on Wipe when practical to reduce lifetime in memory.
package crypto
