// Package registry binds a ledger owner to an X25519 encryption key.
//
// A record lives at the program-derived address of ("zkl_account", owner,
// index) and is created once by a transaction signed by the owner. The
// owner also signs "ZKLAccount:<record address>" so that the binding can be
// checked offline. Records are never updated.
package registry
