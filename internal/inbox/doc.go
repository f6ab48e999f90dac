// Package inbox encodes, initializes, reads and appends to per-recipient
// inbox accounts.
//
// An inbox lives at the program-derived address of ("inbox", owner, index)
// and holds at most domain.MaxInboxMessages records in insertion order.
// When an inbox is full the sender continues at NextShard(index). Records
// use the Borsh layout:
//
//	senderEncryptionPubkey [33]byte
//	encryptedLink          u32 LE length + UTF-8 bytes
//	ephemeralPubkey        [32]byte
//	timestamp              u64 LE
//
// The account itself is an 8-byte discriminator, the recipient key, the
// wallet, a u32-prefixed vector of records and the bump, zero-padded to
// AccountSize.
package inbox
