// Package runtime defines the host execution contract consumed by the
// DoubleZero programs: accounts, the instruction context, program errors
// with stable numeric codes, and an in-memory host emulator used by tests
// and the local CLI ledger.
package runtime
