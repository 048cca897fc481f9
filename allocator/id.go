package allocator

import (
	"fmt"

	"github.com/doublezero/doublezero-contract/runtime"
)

// ID allocates integer ids from the half-open range [RangeStart, RangeEnd).
// Bit i of the bitmap represents id RangeStart+i.
type ID struct {
	RangeStart uint16
	RangeEnd   uint16
	FirstFree  uint64
	bits       []byte
}

// NewID wraps a caller-owned bitmap. The slice must hold at least
// BitmapSize(capacity) bytes; mutations write through to it.
func NewID(start, end uint16, firstFree uint64, bitmap []byte) (*ID, error) {
	if end < start {
		return nil, fmt.Errorf("id allocator: inverted range [%d, %d)", start, end)
	}
	capacity := uint64(end) - uint64(start)
	if len(bitmap) < BitmapSize(capacity) {
		return nil, fmt.Errorf("id allocator: bitmap holds %d bytes, need %d", len(bitmap), BitmapSize(capacity))
	}
	return &ID{RangeStart: start, RangeEnd: end, FirstFree: firstFree, bits: bitmap}, nil
}

// Capacity returns the number of allocatable ids.
func (a *ID) Capacity() uint64 {
	return uint64(a.RangeEnd) - uint64(a.RangeStart)
}

// Allocate returns the lowest free id, preferring the first-free hint.
func (a *ID) Allocate() (uint16, error) {
	capacity := a.Capacity()
	if a.FirstFree < capacity && !bitGet(a.bits, a.FirstFree) {
		i := a.FirstFree
		bitSet(a.bits, i)
		a.FirstFree = nextClear(a.bits, i+1, capacity)
		return a.RangeStart + uint16(i), nil
	}
	i := nextClear(a.bits, 0, capacity)
	if i == capacity {
		return 0, runtime.ErrNoResourcesAvailable
	}
	bitSet(a.bits, i)
	a.FirstFree = nextClear(a.bits, i+1, capacity)
	return a.RangeStart + uint16(i), nil
}

// AllocateRequested claims a specific id. Returns false when the id is out
// of range or already taken, leaving state untouched.
func (a *ID) AllocateRequested(id uint16) bool {
	if id < a.RangeStart || id >= a.RangeEnd {
		return false
	}
	i := uint64(id - a.RangeStart)
	if bitGet(a.bits, i) {
		return false
	}
	bitSet(a.bits, i)
	if i == a.FirstFree {
		a.FirstFree = nextClear(a.bits, i+1, a.Capacity())
	}
	return true
}

// Deallocate releases an id. Double frees return false and change nothing.
func (a *ID) Deallocate(id uint16) bool {
	if id < a.RangeStart || id >= a.RangeEnd {
		return false
	}
	i := uint64(id - a.RangeStart)
	if !bitGet(a.bits, i) {
		return false
	}
	bitClear(a.bits, i)
	if i < a.FirstFree {
		a.FirstFree = i
	}
	return true
}

// IsAllocated reports whether an id is taken.
func (a *ID) IsAllocated(id uint16) bool {
	if id < a.RangeStart || id >= a.RangeEnd {
		return false
	}
	return bitGet(a.bits, uint64(id-a.RangeStart))
}

// Allocated returns every taken id in ascending order. Physical bits past
// the logical capacity are never reported.
func (a *ID) Allocated() []uint16 {
	var out []uint16
	capacity := a.Capacity()
	for i := uint64(0); i < capacity; i++ {
		if bitGet(a.bits, i) {
			out = append(out, a.RangeStart+uint16(i))
		}
	}
	return out
}
