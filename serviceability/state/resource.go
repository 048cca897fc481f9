package state

import (
	"net/netip"

	"github.com/gagliardetto/solana-go"

	"github.com/doublezero/doublezero-contract/allocator"
	"github.com/doublezero/doublezero-contract/codec"
	"github.com/doublezero/doublezero-contract/runtime"
)

// BitmapOffset is where the allocator bitmap begins inside a
// ResourceExtension account, independent of the allocator variant. The
// fixed offset is a compatibility constraint with external fixtures; the
// gap between the variant-specific header and the bitmap is zero padding.
const BitmapOffset = 88

// header = type + owner + bump + associated_with + variant tag
const resourceHeaderFixed = 1 + pubkeySize + 1 + pubkeySize + 1

// ResourceExtension is a resource pool account: an 88-byte header carrying
// one allocator variant, followed by a bitmap that extends to the end of
// the account. Bitmap aliases the account data, so allocator mutations
// write through; only the header needs re-serializing afterwards.
type ResourceExtension struct {
	Owner          solana.PublicKey
	BumpSeed       uint8
	AssociatedWith solana.PublicKey
	AllocatorType  AllocatorType

	// Id allocator header.
	RangeStart uint16
	RangeEnd   uint16
	// Ip allocator header.
	BaseNet netip.Prefix

	FirstFree uint64
	Bitmap    []byte
}

// Type implements Record.
func (r *ResourceExtension) Type() AccountType { return AccountTypeResourceExtension }

// SizeForIdRange returns the account size for an id pool over [start, end).
func SizeForIdRange(start, end uint16) int {
	return BitmapOffset + allocator.BitmapSize(uint64(end)-uint64(start))
}

// SizeForIpBlock returns the account size for an address pool over base.
func SizeForIpBlock(base netip.Prefix) int {
	return BitmapOffset + allocator.BitmapSize(uint64(1)<<(32-base.Bits()))
}

// Serialize renders the full account: header, padding to BitmapOffset,
// then the bitmap.
func (r *ResourceExtension) Serialize() ([]byte, error) {
	e := codec.NewEncoder()
	r.serializeHeader(e)
	e.Pad(BitmapOffset - e.Len())
	e.Raw(r.Bitmap)
	return e.Bytes()
}

func (r *ResourceExtension) serializeHeader(e *codec.Encoder) {
	e.U8(uint8(AccountTypeResourceExtension))
	e.Pubkey(r.Owner)
	e.U8(r.BumpSeed)
	e.Pubkey(r.AssociatedWith)
	e.U8(uint8(r.AllocatorType))
	switch r.AllocatorType {
	case AllocatorTypeId:
		e.U16(r.RangeStart)
		e.U16(r.RangeEnd)
		e.U64(r.FirstFree)
	case AllocatorTypeIp:
		e.IPv4Net(orZeroNet(r.BaseNet))
		e.U64(r.FirstFree)
	}
}

// StoreHeader rewrites the header region of an existing account in place,
// leaving the bitmap untouched. Used after allocator mutations to persist
// the first-free hint.
func (r *ResourceExtension) StoreHeader(accountData []byte) error {
	if len(accountData) < BitmapOffset {
		return runtime.ErrDeserializationFailure
	}
	e := codec.NewEncoder()
	r.serializeHeader(e)
	e.Pad(BitmapOffset - e.Len())
	header, err := e.Bytes()
	if err != nil {
		return err
	}
	copy(accountData[:BitmapOffset], header)
	return nil
}

// DeserializeResourceExtension parses a ResourceExtension account. The
// returned Bitmap aliases data[BitmapOffset:].
func DeserializeResourceExtension(data []byte) (*ResourceExtension, error) {
	if len(data) < BitmapOffset {
		return nil, runtime.ErrDeserializationFailure
	}
	d := codec.NewDecoder(data)
	if err := expectType(d, AccountTypeResourceExtension); err != nil {
		return nil, err
	}
	r := &ResourceExtension{}
	r.Owner = d.Pubkey()
	r.BumpSeed = d.U8()
	r.AssociatedWith = d.Pubkey()
	r.AllocatorType = AllocatorType(d.U8())
	switch r.AllocatorType {
	case AllocatorTypeId:
		r.RangeStart = d.U16()
		r.RangeEnd = d.U16()
		r.FirstFree = d.U64()
	case AllocatorTypeIp:
		r.BaseNet = d.IPv4Net()
		r.FirstFree = d.U64()
	default:
		return nil, runtime.ErrDeserializationFailure
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	r.Bitmap = data[BitmapOffset:]
	return r, nil
}

// IdAllocator returns an allocator view over the account bitmap. After
// use, copy the allocator's FirstFree back via SyncId and StoreHeader.
func (r *ResourceExtension) IdAllocator() (*allocator.ID, error) {
	if r.AllocatorType != AllocatorTypeId {
		return nil, runtime.ErrExtensionMissing
	}
	return allocator.NewID(r.RangeStart, r.RangeEnd, r.FirstFree, r.Bitmap)
}

// IpAllocator returns an allocator view over the account bitmap.
func (r *ResourceExtension) IpAllocator() (*allocator.IP, error) {
	if r.AllocatorType != AllocatorTypeIp {
		return nil, runtime.ErrExtensionMissing
	}
	return allocator.NewIP(r.BaseNet, r.FirstFree, r.Bitmap)
}

// SyncId persists an id-allocator hint back into the header fields.
func (r *ResourceExtension) SyncId(a *allocator.ID) {
	r.FirstFree = a.FirstFree
}

// SyncIp persists an ip-allocator hint back into the header fields.
func (r *ResourceExtension) SyncIp(a *allocator.IP) {
	r.FirstFree = a.FirstFree
}
