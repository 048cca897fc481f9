// Package instructions defines the serviceability program's wire format:
// a 1-byte opcode followed by the instruction's arguments in the codec
// layout. Opcode numbering follows declaration order and is frozen;
// appending new instructions is fine, reordering is a wire break.
package instructions
