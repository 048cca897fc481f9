// Package allocator implements the two bitmap allocators backing resource
// extension accounts: an integer-id allocator over a half-open u16 range
// and an IPv4 allocator over a prefix. Both operate directly on a
// caller-owned byte slice (the account's bitmap region), use LSB-first bit
// order, and keep a first-free hint that accelerates the common allocation
// path without ever being trusted as proof of freedom.
package allocator
