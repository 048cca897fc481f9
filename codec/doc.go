// Package codec implements the binary account and instruction format:
// little-endian integers, u32 length-prefixed strings and vectors, 1-byte
// options and variant tags, IPv4 values as 4 raw bytes (plus a prefix byte
// for networks). Decoding is strict: a truncated value or unknown tag is a
// DeserializationFailure, while trailing bytes are ignored because accounts
// are pre-sized.
package codec
