package ledger

import (
	"fmt"

	"github.com/near/borsh-go"
)

// EncodeBorsh serializes v in Borsh form. v must be built from integers,
// fixed arrays, strings, slices and structs of those, for which encoding
// cannot fail.
func EncodeBorsh(v any) []byte {
	b, err := borsh.Serialize(v)
	if err != nil {
		panic(fmt.Sprintf("ledger: borsh encode %T: %v", v, err))
	}
	return b
}

// DecodeBorsh parses data as a T and rejects trailing bytes. Callers bound
// string and slice lengths before decoding untrusted data.
func DecodeBorsh[T any](data []byte) (T, error) {
	var v T
	if err := borsh.Deserialize(&v, data); err != nil {
		return v, fmt.Errorf("borsh decode %T: %w", v, err)
	}
	if n := len(EncodeBorsh(v)); n != len(data) {
		return v, fmt.Errorf("borsh decode %T: %d trailing bytes", v, len(data)-n)
	}
	return v, nil
}
