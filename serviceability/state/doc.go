// Package state defines the persistent records of the serviceability
// program: one strongly-typed struct per account kind, each prefixed by a
// 1-byte discriminator and serialized in the fixed binary layout the
// fixtures pin down. Records expose Serialize/Deserialize pairs, size
// helpers for account pre-allocation, and domain validation.
package state
