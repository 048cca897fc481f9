package codec

import (
	"bytes"
	"encoding/binary"
	"net/netip"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Encoder builds a serialized value. Write errors are sticky: the first one
// is kept and every later call becomes a no-op, so callers check Err (or
// Bytes) once at the end.
type Encoder struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.enc = bin.NewBorshEncoder(&e.buf)
	return e
}

func (e *Encoder) note(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

// Err returns the first write error, if any.
func (e *Encoder) Err() error { return e.err }

// Bytes returns the encoded value.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

// U8 writes one byte.
func (e *Encoder) U8(v uint8) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteByte(v))
}

// U16 writes a little-endian uint16.
func (e *Encoder) U16(v uint16) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteUint16(v, binary.LittleEndian))
}

// U32 writes a little-endian uint32.
func (e *Encoder) U32(v uint32) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteUint32(v, binary.LittleEndian))
}

// U64 writes a little-endian uint64.
func (e *Encoder) U64(v uint64) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteUint64(v, binary.LittleEndian))
}

// U128 writes a little-endian unsigned 128-bit integer.
func (e *Encoder) U128(v bin.Uint128) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteUint128(v, binary.LittleEndian))
}

// F64 writes a little-endian IEEE-754 double.
func (e *Encoder) F64(v float64) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteFloat64(v, binary.LittleEndian))
}

// Bool writes 1 for true, 0 for false.
func (e *Encoder) Bool(v bool) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteBool(v))
}

// String writes a u32 length prefix followed by the UTF-8 bytes.
func (e *Encoder) String(s string) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteString(s))
}

// VecLen writes the u32 element-count prefix of a sequence.
func (e *Encoder) VecLen(n int) {
	e.U32(uint32(n))
}

// Option writes the 1-byte some/none discriminant.
func (e *Encoder) Option(some bool) {
	if some {
		e.U8(1)
	} else {
		e.U8(0)
	}
}

// Pubkey writes the raw 32 key bytes.
func (e *Encoder) Pubkey(k solana.PublicKey) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteBytes(k.Bytes(), false))
}

// IPv4 writes the 4 address bytes in network order. The zero Addr
// writes as 0.0.0.0.
func (e *Encoder) IPv4(a netip.Addr) {
	if e.err != nil {
		return
	}
	var b [4]byte
	if a.IsValid() {
		b = a.As4()
	}
	e.note(e.enc.WriteBytes(b[:], false))
}

// IPv4Net writes 4 address bytes followed by the prefix length byte.
// The zero Prefix writes as 0.0.0.0/0.
func (e *Encoder) IPv4Net(p netip.Prefix) {
	e.IPv4(p.Addr())
	bits := p.Bits()
	if bits < 0 {
		bits = 0
	}
	e.U8(uint8(bits))
}

// Raw writes bytes verbatim, without a length prefix.
func (e *Encoder) Raw(b []byte) {
	if e.err != nil {
		return
	}
	e.note(e.enc.WriteBytes(b, false))
}

// Pad writes n zero bytes.
func (e *Encoder) Pad(n int) {
	if e.err != nil || n <= 0 {
		return
	}
	e.note(e.enc.WriteBytes(make([]byte, n), false))
}
