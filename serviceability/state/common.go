package state

import (
	"net/netip"

	bin "github.com/gagliardetto/binary"

	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// NextIndex returns index+1 with carry. GlobalState.account_index is
// monotonic; this is the only arithmetic ever applied to it.
func NextIndex(index bin.Uint128) bin.Uint128 {
	index.Lo++
	if index.Lo == 0 {
		index.Hi++
	}
	return index
}

// SameIndex compares the numeric value of two indices, ignoring the
// codec bookkeeping bin.Uint128 carries.
func SameIndex(a, b bin.Uint128) bool {
	return a.Lo == b.Lo && a.Hi == b.Hi
}

// AccountTypeOf peeks the discriminator byte without deserializing.
func AccountTypeOf(data []byte) (AccountType, error) {
	if len(data) == 0 {
		return 0, runtime.ErrDeserializationFailure
	}
	return AccountType(data[0]), nil
}

// expectType fails with AccountTypeMismatch unless byte 0 matches want.
func expectType(d *codec.Decoder, want AccountType) error {
	if got := AccountType(d.U8()); d.Err() == nil && got != want {
		return runtime.ErrAccountTypeMismatch
	}
	return d.Err()
}

// stringSize is the encoded size of a length-prefixed string.
func stringSize(s string) int {
	return 4 + len(s)
}

// vecSize is the encoded size of a vector of fixed-size elements.
func vecSize(n, elem int) int {
	return 4 + n*elem
}

const (
	pubkeySize  = 32
	ipv4Size    = 4
	ipv4NetSize = 5
)

var zeroAddr = netip.AddrFrom4([4]byte{})

// orZero4 normalizes the zero netip.Addr to 0.0.0.0 so records can encode
// unset addresses.
func orZero4(a netip.Addr) netip.Addr {
	if !a.IsValid() {
		return zeroAddr
	}
	return a
}

// orZeroNet normalizes the zero prefix to 0.0.0.0/0.
func orZeroNet(p netip.Prefix) netip.Prefix {
	if !p.IsValid() {
		return netip.PrefixFrom(zeroAddr, 0)
	}
	return p
}
