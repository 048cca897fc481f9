// Package pda derives the program-derived address of every DoubleZero
// record from its well-known seeds. Derivation is pure: the bump witness is
// searched from 255 downward until the candidate address leaves the
// Ed25519 curve, and creation instructions persist the winning bump so
// later invocations derive in O(1).
package pda
