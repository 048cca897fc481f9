// Package serviceability implements the control-plane program: the
// dispatcher and one handler per instruction, over the records of the
// state subpackage.
//
// Account ordering is positional and fixed per instruction. Every
// handler takes the transaction signer at index 0; singletons and
// related records follow in the order the handler documents. Handlers
// never write partial state: the host snapshots accounts and rolls the
// instruction back on error.
package serviceability
