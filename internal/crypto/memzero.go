package crypto

import (
	"runtime"

	"zkl/internal/domain"
)

// Wipe zeroes b in place. It is best-effort: copies made by the runtime
// or by callers are not reached.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// WipeIdentity zeroes both private keys of id once a command no longer
// needs them. The public halves are kept so id can still be logged.
func WipeIdentity(id *domain.Identity) {
	if id == nil {
		return
	}
	Wipe(id.EncryptionPrivate[:])
	Wipe(id.LedgerPrivate[:])
}
