package codec

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/runtime"
)

// Decoder reads a serialized value. The first failure is sticky and every
// later read returns a zero value, so record decoders stay linear and check
// Err once. Underlying errors surface as DeserializationFailure.
type Decoder struct {
	dec *bin.Decoder
	err error
}

// NewDecoder wraps data for strict reading.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{dec: bin.NewBorshDecoder(data)}
}

func (d *Decoder) note(err error) {
	if d.err == nil && err != nil {
		d.err = fmt.Errorf("%w: %v", runtime.ErrDeserializationFailure, err)
	}
}

// Fail marks the decode as failed with a DeserializationFailure describing
// reason. Used for bad variant tags and length overflows.
func (d *Decoder) Fail(reason string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s", runtime.ErrDeserializationFailure, reason)
	}
}

// Err returns the first decode error, if any.
func (d *Decoder) Err() error { return d.err }

// Remaining reports the number of unread bytes.
func (d *Decoder) Remaining() int { return d.dec.Remaining() }

// U8 reads one byte.
func (d *Decoder) U8() uint8 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.ReadByte()
	d.note(err)
	return v
}

// U16 reads a little-endian uint16.
func (d *Decoder) U16() uint16 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.ReadUint16(binary.LittleEndian)
	d.note(err)
	return v
}

// U32 reads a little-endian uint32.
func (d *Decoder) U32() uint32 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.ReadUint32(binary.LittleEndian)
	d.note(err)
	return v
}

// U64 reads a little-endian uint64.
func (d *Decoder) U64() uint64 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.ReadUint64(binary.LittleEndian)
	d.note(err)
	return v
}

// U128 reads a little-endian unsigned 128-bit integer.
func (d *Decoder) U128() bin.Uint128 {
	if d.err != nil {
		return bin.Uint128{}
	}
	v, err := d.dec.ReadUint128(binary.LittleEndian)
	d.note(err)
	return v
}

// F64 reads a little-endian IEEE-754 double.
func (d *Decoder) F64() float64 {
	if d.err != nil {
		return 0
	}
	v, err := d.dec.ReadFloat64(binary.LittleEndian)
	d.note(err)
	return v
}

// Bool reads a 1-byte boolean; any value other than 0 or 1 fails.
func (d *Decoder) Bool() bool {
	switch d.U8() {
	case 0:
		return false
	case 1:
		return true
	default:
		d.Fail("invalid boolean")
		return false
	}
}

// String reads a u32 length prefix and that many UTF-8 bytes.
func (d *Decoder) String() string {
	n := d.VecLen()
	if d.err != nil {
		return ""
	}
	b, err := d.dec.ReadNBytes(n)
	d.note(err)
	return string(b)
}

// VecLen reads the u32 element-count prefix of a sequence and bounds it by
// the remaining input so corrupt lengths cannot force huge allocations.
func (d *Decoder) VecLen() int {
	n := d.U32()
	if d.err != nil {
		return 0
	}
	if int(n) > d.dec.Remaining() {
		d.Fail("length prefix exceeds input")
		return 0
	}
	return int(n)
}

// Option reads the 1-byte some/none discriminant.
func (d *Decoder) Option() bool {
	return d.Bool()
}

// Pubkey reads 32 raw key bytes.
func (d *Decoder) Pubkey() solana.PublicKey {
	if d.err != nil {
		return solana.PublicKey{}
	}
	b, err := d.dec.ReadNBytes(32)
	d.note(err)
	if err != nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// IPv4 reads 4 address bytes in network order.
func (d *Decoder) IPv4() netip.Addr {
	if d.err != nil {
		return netip.Addr{}
	}
	b, err := d.dec.ReadNBytes(4)
	d.note(err)
	if err != nil {
		return netip.Addr{}
	}
	return netip.AddrFrom4([4]byte(b))
}

// IPv4Net reads 4 address bytes followed by the prefix length byte.
func (d *Decoder) IPv4Net() netip.Prefix {
	addr := d.IPv4()
	bits := d.U8()
	if d.err != nil {
		return netip.Prefix{}
	}
	if bits > 32 {
		d.Fail("invalid prefix length")
		return netip.Prefix{}
	}
	return netip.PrefixFrom(addr, int(bits))
}

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	b, err := d.dec.ReadNBytes(n)
	d.note(err)
	return b
}

// Skip discards n bytes.
func (d *Decoder) Skip(n int) {
	d.Bytes(n)
}
