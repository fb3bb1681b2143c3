// Package cpu implements the kindA virtual machine and its assembler.
//
// The machine has eight 32-bit registers (r0 always reads 0), a sparse
// word addressed main memory with a write protected low region, a program
// counter and an instruction register. Its instruction set is add, addi,
// lw, sw, beq, jalr, halt and noop, plus the .fill directive.
//
// Instruction words are laid out MSB first as 7 unused bits, a 3-bit
// opcode, two 3-bit register fields and a 16-bit two's complement value.
//
// The assembler accepts either assembly source or machine code, one
// 8 digit hexadecimal word per line, and evaluates $(...) operand
// expressions at translation time.
package cpu
