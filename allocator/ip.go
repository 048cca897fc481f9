package allocator

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/doublezero/doublezero-contract/runtime"
)

// IP allocates IPv4 addresses (and aligned sub-blocks) from a base prefix.
// Bit i represents base+i. On pools of /30 or wider the network address
// (bit 0) and the broadcast address (last bit) are reserved and can never
// be allocated, singly or inside a block; /31 and /32 pools have no
// reserved addresses.
type IP struct {
	Base      netip.Prefix
	FirstFree uint64
	bits      []byte
}

// NewIP wraps a caller-owned bitmap for the given IPv4 base prefix.
func NewIP(base netip.Prefix, firstFree uint64, bitmap []byte) (*IP, error) {
	if !base.Addr().Is4() {
		return nil, fmt.Errorf("ip allocator: base %s is not IPv4", base)
	}
	base = base.Masked()
	capacity := uint64(1) << (32 - base.Bits())
	if len(bitmap) < BitmapSize(capacity) {
		return nil, fmt.Errorf("ip allocator: bitmap holds %d bytes, need %d", len(bitmap), BitmapSize(capacity))
	}
	return &IP{Base: base, FirstFree: firstFree, bits: bitmap}, nil
}

// Capacity returns the number of addresses covered by the base prefix,
// reserved ones included.
func (a *IP) Capacity() uint64 {
	return uint64(1) << (32 - a.Base.Bits())
}

func (a *IP) usable(i uint64) bool {
	if a.Base.Bits() >= 31 {
		return true
	}
	return i != 0 && i != a.Capacity()-1
}

func (a *IP) addrAt(i uint64) netip.Addr {
	b := a.Base.Addr().As4()
	v := binary.BigEndian.Uint32(b[:]) + uint32(i)
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}

func (a *IP) indexOf(addr netip.Addr) (uint64, bool) {
	if !addr.Is4() || !a.Base.Contains(addr) {
		return 0, false
	}
	b := addr.As4()
	base := a.Base.Addr().As4()
	return uint64(binary.BigEndian.Uint32(b[:]) - binary.BigEndian.Uint32(base[:])), true
}

// nextFree returns the lowest clear usable bit at or above from.
func (a *IP) nextFree(from uint64) uint64 {
	capacity := a.Capacity()
	i := from
	for i < capacity {
		i = nextClear(a.bits, i, capacity)
		if i == capacity || a.usable(i) {
			return i
		}
		i++
	}
	return capacity
}

// Allocate returns the lowest free usable address.
func (a *IP) Allocate() (netip.Addr, error) {
	capacity := a.Capacity()
	if a.FirstFree < capacity && a.usable(a.FirstFree) && !bitGet(a.bits, a.FirstFree) {
		i := a.FirstFree
		bitSet(a.bits, i)
		a.FirstFree = a.nextFree(i + 1)
		return a.addrAt(i), nil
	}
	i := a.nextFree(0)
	if i == capacity {
		return netip.Addr{}, runtime.ErrNoResourcesAvailable
	}
	bitSet(a.bits, i)
	a.FirstFree = a.nextFree(i + 1)
	return a.addrAt(i), nil
}

// AllocateRequested claims a specific address. Returns false when the
// address is outside the pool, reserved, or already taken.
func (a *IP) AllocateRequested(addr netip.Addr) bool {
	i, ok := a.indexOf(addr)
	if !ok || !a.usable(i) || bitGet(a.bits, i) {
		return false
	}
	bitSet(a.bits, i)
	if i == a.FirstFree {
		a.FirstFree = a.nextFree(i + 1)
	}
	return true
}

// Deallocate releases an address. Double frees return false.
func (a *IP) Deallocate(addr netip.Addr) bool {
	i, ok := a.indexOf(addr)
	if !ok || !bitGet(a.bits, i) {
		return false
	}
	bitClear(a.bits, i)
	if i < a.FirstFree {
		a.FirstFree = i
	}
	return true
}

// IsAllocated reports whether an address is taken.
func (a *IP) IsAllocated(addr netip.Addr) bool {
	i, ok := a.indexOf(addr)
	return ok && bitGet(a.bits, i)
}

// Allocated returns every taken address in ascending order.
func (a *IP) Allocated() []netip.Addr {
	var out []netip.Addr
	capacity := a.Capacity()
	for i := uint64(0); i < capacity; i++ {
		if bitGet(a.bits, i) {
			out = append(out, a.addrAt(i))
		}
	}
	return out
}

// AllocateBlock claims the lowest aligned, fully-free run of addresses
// covering a prefix of the requested length (tunnel /31s, dz sub-blocks).
func (a *IP) AllocateBlock(prefixLen int) (netip.Prefix, error) {
	size, err := a.blockSize(prefixLen)
	if err != nil {
		return netip.Prefix{}, err
	}
	capacity := a.Capacity()
	for start := uint64(0); start+size <= capacity; start += size {
		if a.blockFree(start, size) {
			for i := start; i < start+size; i++ {
				bitSet(a.bits, i)
			}
			a.FirstFree = a.nextFree(0)
			return netip.PrefixFrom(a.addrAt(start), prefixLen), nil
		}
	}
	return netip.Prefix{}, runtime.ErrNoResourcesAvailable
}

// AllocateRequestedBlock claims a specific sub-block. Returns false unless
// every covered address is usable and free.
func (a *IP) AllocateRequestedBlock(p netip.Prefix) bool {
	start, size, ok := a.blockAt(p)
	if !ok || !a.blockFree(start, size) {
		return false
	}
	for i := start; i < start+size; i++ {
		bitSet(a.bits, i)
	}
	a.FirstFree = a.nextFree(0)
	return true
}

// DeallocateBlock releases a previously allocated sub-block. Returns false
// unless every covered address is currently taken.
func (a *IP) DeallocateBlock(p netip.Prefix) bool {
	start, size, ok := a.blockAt(p)
	if !ok {
		return false
	}
	for i := start; i < start+size; i++ {
		if !bitGet(a.bits, i) {
			return false
		}
	}
	for i := start; i < start+size; i++ {
		bitClear(a.bits, i)
	}
	if start < a.FirstFree {
		a.FirstFree = a.nextFree(0)
	}
	return true
}

func (a *IP) blockSize(prefixLen int) (uint64, error) {
	if prefixLen < a.Base.Bits() || prefixLen > 32 {
		return 0, fmt.Errorf("ip allocator: /%d block outside base %s", prefixLen, a.Base)
	}
	return uint64(1) << (32 - prefixLen), nil
}

func (a *IP) blockAt(p netip.Prefix) (start, size uint64, ok bool) {
	size, err := a.blockSize(p.Bits())
	if err != nil {
		return 0, 0, false
	}
	start, okIdx := a.indexOf(p.Masked().Addr())
	if !okIdx || start%size != 0 {
		return 0, 0, false
	}
	return start, size, true
}

func (a *IP) blockFree(start, size uint64) bool {
	for i := start; i < start+size; i++ {
		if !a.usable(i) || bitGet(a.bits, i) {
			return false
		}
	}
	return true
}
