// This file is part of Ridge32.
//
// Ridge32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Ridge32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Ridge32.  If not, see <https://www.gnu.org/licenses/>.

// Package instructions decodes the Ridge 32 instruction stream. Rather
// than one Operator per encoded variant (the ISA has on the order of 180
// opcodes once every addressing-mode combination is counted), addressing
// mode is captured as decode-time fields on Instruction, and Operator
// only distinguishes opcodes that actually differ in what the processor
// does with them. This is the table-indexed-by-8-bit-opcode dispatch the
// spec's design notes call for; table holes decode to OpIllegal.
package instructions

// Operator names a distinct operation. Addressing-mode variants of the
// same operation (long/short displacement, PC-relative/absolute,
// indexed, which condition a branch/test tests) are carried as fields
// on Instruction, not as separate Operators.
type Operator int

const (
	OpIllegal Operator = iota

	// Register-register ALU.
	OpMove
	OpNeg
	OpAdd
	OpSub
	OpMpy
	OpDiv
	OpRem
	OpNot
	OpOr
	OpXor
	OpAnd
	OpCbit
	OpSbit
	OpTbit
	OpChk

	// Immediate-form ALU (Ry holds a 4-bit unsigned or sign-extended value).
	OpMovei
	OpAddi
	OpSubi
	OpMpyi
	OpNoti
	OpAndi
	OpChki

	// Shifts (register and immediate count) and sign-extension.
	OpLsl
	OpLsr
	OpAsl
	OpAsr
	OpDlsl
	OpDlsr
	OpCsl
	OpSeb
	OpSeh

	// Extended/integer "floating" family that must be implemented.
	OpLcomp
	OpDcomp
	OpEadd
	OpEsub
	OpEmpy
	OpEdiv

	// True floating-point opcodes: stubbed to IllegalInstruction per spec.
	OpFloatStub

	// Privileged.
	OpSus
	OpLus
	OpRum
	OpLdregs
	OpTrans
	OpDirt
	OpMoveSR
	OpMoveRS
	OpMaint
	OpRead
	OpWrite

	// Tests materialising 0/1 in Rx.
	OpTest

	// Control flow.
	OpCallr
	OpRet
	OpKcall
	OpTrap

	// Branches (including unconditional BR and CALL) and LOOP.
	OpBranch
	OpCall
	OpLoop

	// Memory loads/stores and LADDR.
	OpLoadB
	OpLoadH
	OpLoadW
	OpLoadD
	OpStoreB
	OpStoreH
	OpStoreW
	OpStoreD
	OpLaddr
)

// Cond is the signed-comparison condition carried by OpTest and OpBranch
// instructions.
type Cond int

const (
	CondNone Cond = iota
	CondGT
	CondLT
	CondEQ
	CondLE
	CondGE
	CondNE
)

// Size is the width of a memory reference opcode (LOAD/STORE family).
type Size int

const (
	SizeByte Size = iota
	SizeHalf
	SizeWord
	SizeDouble
)

// Def is a table entry: everything about an opcode that doesn't depend
// on the particular rx/ry/displacement of one encoded instance.
//
// Size and Long are not filled in by the table or by Decode/DecodeV and
// stay at their zero values: a load/store's width comes from its Op, and
// the long form from Raw&0x10 (or Length == 6).
type Def struct {
	Op         Operator
	Cond       Cond
	Size       Size
	Immediate  bool // Ry is a 4-bit immediate, not a register number
	PCRelative bool // "c" forms: base = PC at instruction start
	Indexed    bool // "x" forms: add R[Ry] as index
	Long       bool
}

// table maps the full 8-bit opcode space. Entries left at the zero
// value decode as {OpIllegal}. Memory-reference opcodes (top bit set)
// are further split by the long bit (bit 4) in Decode/DecodeV, which is why
// a single table entry covers both the short and long encodings of the
// same instruction.
var table = map[uint8]Def{
	// Register-register ALU (spec's worked test vectors fix 0x00=MOVE, 0x03=ADD).
	0x00: {Op: OpMove},
	0x01: {Op: OpNeg},
	0x02: {Op: OpNot},
	0x03: {Op: OpAdd},
	0x04: {Op: OpSub},
	0x05: {Op: OpMpy},
	0x06: {Op: OpDiv},
	0x07: {Op: OpRem},
	0x08: {Op: OpOr},
	0x09: {Op: OpXor},
	0x0A: {Op: OpAnd},
	0x0B: {Op: OpCbit},
	0x0C: {Op: OpSbit},
	0x0D: {Op: OpTbit},
	0x0E: {Op: OpChk},

	// Immediate-form ALU (spec's worked test vector fixes 0x11=MOVEI).
	0x10: {Op: OpAddi, Immediate: true},
	0x11: {Op: OpMovei, Immediate: true},
	0x12: {Op: OpSubi, Immediate: true},
	0x13: {Op: OpMpyi, Immediate: true},
	0x14: {Op: OpNoti, Immediate: true},
	0x15: {Op: OpAndi, Immediate: true},
	0x16: {Op: OpChki, Immediate: true},

	// Shifts/sign-extension.
	0x20: {Op: OpLsl},
	0x21: {Op: OpLsr},
	0x22: {Op: OpAsl},
	0x23: {Op: OpAsr},
	0x24: {Op: OpDlsl},
	0x25: {Op: OpDlsr},
	0x26: {Op: OpCsl},
	0x27: {Op: OpSeb},
	0x28: {Op: OpSeh},
	0x29: {Op: OpLsl, Immediate: true},
	0x2A: {Op: OpLsr, Immediate: true},
	0x2B: {Op: OpAsl, Immediate: true},
	0x2C: {Op: OpAsr, Immediate: true},
	0x2D: {Op: OpDlsl, Immediate: true},
	0x2E: {Op: OpDlsr, Immediate: true},
	0x2F: {Op: OpCsl, Immediate: true},

	// Integer-required "extended" family.
	0x30: {Op: OpLcomp},
	0x31: {Op: OpDcomp},
	0x32: {Op: OpEadd},
	0x33: {Op: OpEsub},
	0x34: {Op: OpEmpy},
	0x35: {Op: OpEdiv},

	// Unimplemented floating-point family: FIXT, FIXR, RNEG, RADD, RSUB,
	// RMPY, RDIV, MAKERD, FLOAT, RCOMP and their double-precision D-forms.
	0x36: {Op: OpFloatStub}, 0x37: {Op: OpFloatStub}, 0x38: {Op: OpFloatStub},
	0x39: {Op: OpFloatStub}, 0x3A: {Op: OpFloatStub}, 0x3B: {Op: OpFloatStub},
	0x3C: {Op: OpFloatStub}, 0x3D: {Op: OpFloatStub}, 0x3E: {Op: OpFloatStub},
	0x3F: {Op: OpFloatStub}, 0x40: {Op: OpFloatStub}, 0x41: {Op: OpFloatStub},
	0x42: {Op: OpFloatStub}, 0x43: {Op: OpFloatStub}, 0x44: {Op: OpFloatStub},
	0x45: {Op: OpFloatStub}, 0x46: {Op: OpFloatStub}, 0x47: {Op: OpFloatStub},

	// Privileged.
	0x50: {Op: OpSus},
	0x51: {Op: OpLus},
	0x52: {Op: OpRum},
	0x53: {Op: OpLdregs},
	0x54: {Op: OpTrans},
	0x55: {Op: OpDirt},
	0x56: {Op: OpMoveSR},
	0x57: {Op: OpMoveRS},
	0x58: {Op: OpMaint},
	0x59: {Op: OpRead},
	0x5A: {Op: OpWrite},

	// Tests (signed comparison), register and immediate forms.
	0x60: {Op: OpTest, Cond: CondGT},
	0x61: {Op: OpTest, Cond: CondLT},
	0x62: {Op: OpTest, Cond: CondEQ},
	0x63: {Op: OpTest, Cond: CondLE},
	0x64: {Op: OpTest, Cond: CondGE},
	0x65: {Op: OpTest, Cond: CondNE},
	0x66: {Op: OpTest, Cond: CondGT, Immediate: true},
	0x67: {Op: OpTest, Cond: CondLT, Immediate: true},
	0x68: {Op: OpTest, Cond: CondEQ, Immediate: true},
	0x69: {Op: OpTest, Cond: CondLE, Immediate: true},
	0x6A: {Op: OpTest, Cond: CondGE, Immediate: true},
	0x6B: {Op: OpTest, Cond: CondNE, Immediate: true},

	// Control flow.
	0x70: {Op: OpCallr},
	0x71: {Op: OpRet},
	0x72: {Op: OpKcall},
	0x73: {Op: OpTrap},

	// Memory-reference opcodes: top bit (0x80) set. Bit 4 (0x10) is the
	// long/short displacement flag (see Decode) and is never used to
	// distinguish operations below - every entry in this half of the
	// table therefore sits at an opcode with an even upper nibble (the
	// odd-upper-nibble twin, e.g. 0x82|0x10 == 0x92, is the same
	// operation's long-displacement encoding and is resolved by
	// lookupMemRef masking bit 4 off before the table lookup). The
	// spec's worked vector fixes BR_eql's long form at opcode 0x92,
	// which is why BR_eql's (short, base) entry sits at 0x82 here.
	//
	// BR_{gt,lt,eq,le,ge,ne} each have a register-compare and an
	// immediate-compare ("si"/"li" in the spec's naming) form; Def's
	// Immediate flag (already used by the ALU immediate family)
	// distinguishes them here too.
	0x80: {Op: OpBranch, Cond: CondGT},
	0x81: {Op: OpBranch, Cond: CondLT},
	0x82: {Op: OpBranch, Cond: CondEQ},
	0x83: {Op: OpBranch, Cond: CondLE},
	0x84: {Op: OpBranch, Cond: CondGE},
	0x85: {Op: OpBranch, Cond: CondNE},
	0x86: {Op: OpBranch, Cond: CondGT, Immediate: true},
	0x87: {Op: OpBranch, Cond: CondLT, Immediate: true},
	0x88: {Op: OpBranch, Cond: CondEQ, Immediate: true},
	0x89: {Op: OpBranch, Cond: CondLE, Immediate: true},
	0x8A: {Op: OpBranch, Cond: CondGE, Immediate: true},
	0x8B: {Op: OpBranch, Cond: CondNE, Immediate: true},
	0x8C: {Op: OpBranch, Cond: CondNone},
	0x8D: {Op: OpCall},
	0x8E: {Op: OpLoop},

	// LADDR: computes an effective address without touching memory; has
	// the same c/d, indexed/non-indexed modifiers as loads/stores but
	// needs no width, so it gets its own small group.
	0xE0: {Op: OpLaddr, PCRelative: true},
	0xE1: {Op: OpLaddr, PCRelative: true, Indexed: true},
	0xE2: {Op: OpLaddr},
	0xE3: {Op: OpLaddr, Indexed: true},

	// Loads/stores, PC-relative ("c") forms: bit 3 of the low nibble
	// selects indexed vs non-indexed, the low 3 bits select the op.
	0xA0: {Op: OpLoadB, PCRelative: true},
	0xA1: {Op: OpLoadH, PCRelative: true},
	0xA2: {Op: OpLoadW, PCRelative: true},
	0xA3: {Op: OpLoadD, PCRelative: true},
	0xA4: {Op: OpStoreB, PCRelative: true},
	0xA5: {Op: OpStoreH, PCRelative: true},
	0xA6: {Op: OpStoreW, PCRelative: true},
	0xA7: {Op: OpStoreD, PCRelative: true},
	0xA8: {Op: OpLoadB, PCRelative: true, Indexed: true},
	0xA9: {Op: OpLoadH, PCRelative: true, Indexed: true},
	0xAA: {Op: OpLoadW, PCRelative: true, Indexed: true},
	0xAB: {Op: OpLoadD, PCRelative: true, Indexed: true},
	0xAC: {Op: OpStoreB, PCRelative: true, Indexed: true},
	0xAD: {Op: OpStoreH, PCRelative: true, Indexed: true},
	0xAE: {Op: OpStoreW, PCRelative: true, Indexed: true},
	0xAF: {Op: OpStoreD, PCRelative: true, Indexed: true},

	// Loads/stores, absolute ("d") forms: same low-nibble scheme.
	0xC0: {Op: OpLoadB},
	0xC1: {Op: OpLoadH},
	0xC2: {Op: OpLoadW},
	0xC3: {Op: OpLoadD},
	0xC4: {Op: OpStoreB},
	0xC5: {Op: OpStoreH},
	0xC6: {Op: OpStoreW},
	0xC7: {Op: OpStoreD},
	0xC8: {Op: OpLoadB, Indexed: true},
	0xC9: {Op: OpLoadH, Indexed: true},
	0xCA: {Op: OpLoadW, Indexed: true},
	0xCB: {Op: OpLoadD, Indexed: true},
	0xCC: {Op: OpStoreB, Indexed: true},
	0xCD: {Op: OpStoreH, Indexed: true},
	0xCE: {Op: OpStoreW, Indexed: true},
	0xCF: {Op: OpStoreD, Indexed: true},
}

// lookup resolves the register/immediate-format half of the opcode
// space (bit 7 clear, length 2).
func lookup(opcode uint8) (Def, bool) {
	d, ok := table[opcode]
	return d, ok
}

// lookupMemRef resolves the memory-reference half of the opcode space
// (bit 7 set). The long bit (bit 4) does not select a table entry of
// its own; the same Def serves both the short and long encodings, and
// Decode/DecodeV use the bit only to choose how many displacement bytes
// to fetch.
func lookupMemRef(opcode uint8) (Def, bool) {
	d, ok := table[opcode&^0x10]
	return d, ok
}
