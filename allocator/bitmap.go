package allocator

import "math/bits"

// BitmapSize returns the physical byte length reserved for capacity logical
// bits: ceil(capacity/8), rounded up to a multiple of 8 bytes.
func BitmapSize(capacity uint64) int {
	n := (capacity + 7) / 8
	return int((n + 7) &^ 7)
}

func bitGet(b []byte, i uint64) bool {
	return b[i/8]&(1<<(i%8)) != 0
}

func bitSet(b []byte, i uint64) {
	b[i/8] |= 1 << (i % 8)
}

func bitClear(b []byte, i uint64) {
	b[i/8] &^= 1 << (i % 8)
}

// nextClear returns the lowest clear bit index in [from, capacity), or
// capacity when every remaining bit is set. Scans byte-at-a-time with a
// trailing-zeros kick once a byte with spare bits is found.
func nextClear(b []byte, from, capacity uint64) uint64 {
	for i := from; i < capacity; {
		if i%8 != 0 || capacity-i < 8 {
			if !bitGet(b, i) {
				return i
			}
			i++
			continue
		}
		byteVal := b[i/8]
		if byteVal == 0xff {
			i += 8
			continue
		}
		j := i + uint64(bits.TrailingZeros8(^byteVal))
		if j < capacity {
			return j
		}
		return capacity
	}
	return capacity
}
