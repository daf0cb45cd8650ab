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

package cpu

import (
	"testing"

	"github.com/jdersch/Ridge32/hardware/cpu/instructions"
	"github.com/jdersch/Ridge32/hardware/cpu/registers"
	"github.com/jdersch/Ridge32/hardware/event"
)

func newTestProcessor(t *testing.T, memSize uint32) *Processor {
	t.Helper()
	p := NewProcessor(Config{MemSizeBytes: memSize}, nil, nil)
	p.Reset()
	return p
}

// Seed scenario 1 (spec §8.1): reset, then one MOVE step.
func TestResetAndFirstStep(t *testing.T) {
	p := newTestProcessor(t, 1<<20)

	if p.Regs.PC != registers.ResetVector {
		t.Fatalf("PC after Reset = %#x, want %#x", p.Regs.PC, registers.ResetVector)
	}
	if p.Regs.Mode != registers.Kernel {
		t.Fatalf("Mode after Reset = %v, want Kernel", p.Regs.Mode)
	}
	if p.Regs.SR[registers.SR2] != 1<<20 {
		t.Fatalf("SR2 after Reset = %#x, want %#x", p.Regs.SR[registers.SR2], uint32(1<<20))
	}
	if p.Regs.SR[registers.SR11] != 1 || p.Regs.SR[registers.SR14] != 1 {
		t.Fatalf("SR11/SR14 after Reset = %#x/%#x, want 1/1", p.Regs.SR[registers.SR11], p.Regs.SR[registers.SR14])
	}

	// MOVE R1,R0 at 0x3E000: opcode 0x00, rx=1, ry=0 -> halfword 0x0010.
	p.Mem.WriteHalfword(registers.ResetVector, 0x0010)

	if _, err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if p.Regs.PC != registers.ResetVector+2 {
		t.Fatalf("PC after step = %#x, want %#x", p.Regs.PC, registers.ResetVector+2)
	}
	if p.Regs.R[1] != p.Regs.R[0] {
		t.Fatalf("R1 = %#x, want R0 (%#x)", p.Regs.R[1], p.Regs.R[0])
	}
}

// Seed scenario 2 (spec §8.2): MOVEI R2,#3 then ADD R3,R2.
func TestMoveiThenAdd(t *testing.T) {
	p := newTestProcessor(t, 1<<20)

	p.Mem.WriteHalfword(registers.ResetVector, 0x1123)   // MOVEI R2,#3
	p.Mem.WriteHalfword(registers.ResetVector+2, 0x0332) // ADD R3,R2

	if _, err := p.Step(); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if _, err := p.Step(); err != nil {
		t.Fatalf("step 2: %v", err)
	}

	if p.Regs.R[2] != 3 {
		t.Fatalf("R2 = %d, want 3", p.Regs.R[2])
	}
	if p.Regs.R[3] != 3 {
		t.Fatalf("R3 = %d, want 3", p.Regs.R[3])
	}
	if p.Regs.PC != registers.ResetVector+4 {
		t.Fatalf("PC = %#x, want %#x", p.Regs.PC, registers.ResetVector+4)
	}
}

// Seed scenario 3 (spec §8.3): long-displacement BR_eql taken.
func TestLongDisplacementBranchTaken(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000
	p.Regs.R[1] = 5
	p.Regs.R[2] = 5

	p.Mem.WriteHalfword(0x1000, 0x9212) // BR_eql R1,R2 long form, opcode 0x92
	p.Mem.WriteWord(0x1002, 0x10)       // displacement +0x10

	if _, err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if p.Regs.PC != 0x1010 {
		t.Fatalf("PC = %#x, want %#x", p.Regs.PC, uint32(0x1010))
	}
}

// Seed scenario 4 (spec §8.4): user-mode data load faults while the
// instruction fetch itself succeeds via a hand-constructed VRT entry for
// the code segment.
func TestUserModeLoadPageFault(t *testing.T) {
	p := newTestProcessor(t, 1<<20)

	const ccbBase = 0x5000
	const vector = 0xDEADBEEF
	p.Mem.WriteWord(ccbBase+0x410, vector)

	p.Regs.Mode = registers.User
	p.Regs.PC = 0x1000
	p.Regs.SR[registers.SR8] = 0
	p.Regs.SR[registers.SR9] = 5
	p.Regs.SR[registers.SR12] = 0x10000
	p.Regs.SR[registers.SR13] = 0xFFFFFFFF
	p.Regs.SR[registers.SR11] = ccbBase

	// Code-segment VRT entry mapping vaddr 0x1000 (segment 0) to physical
	// page 0x20000, constructed per the §4.2 algorithm by hand so the
	// fetch succeeds even though the rest of the VRT is zero.
	const codeProbe = 0x10008 // ((0x1000>>12)+0)&SR13 = 1; (1<<3)+SR12
	p.Mem.WriteWord(codeProbe, 0)      // e0: segment 0, vaddr>>16 == 0
	p.Mem.WriteWord(codeProbe+4, 0x1020) // e1: valid (0x1000 bit set), page 0x20

	// LOAD_ds R0,#0x800 at physical 0x20000 (opcode 0xC2, absolute word load).
	p.Mem.WriteHalfword(0x20000, 0xC200)
	p.Mem.WriteHalfword(0x20002, 0x0800)

	result, err := p.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.HasEvent || result.Event.Type != event.PageFault {
		t.Fatalf("event = %+v, want PageFault", result)
	}
	if p.Regs.SR[registers.SR1] != 0xFFFFFFFF {
		t.Fatalf("SR1 = %#x, want 0xFFFFFFFF", p.Regs.SR[registers.SR1])
	}
	if p.Regs.SR[registers.SR2] != 5 {
		t.Fatalf("SR2 = %#x, want 5", p.Regs.SR[registers.SR2])
	}
	if p.Regs.SR[registers.SR3] != 0x800 {
		t.Fatalf("SR3 = %#x, want 0x800", p.Regs.SR[registers.SR3])
	}
	if p.Regs.SR[registers.SR15] != 0x1000 {
		t.Fatalf("SR15 = %#x, want 0x1000 (opc)", p.Regs.SR[registers.SR15])
	}
	if p.Regs.Mode != registers.Kernel {
		t.Fatalf("Mode = %v, want Kernel", p.Regs.Mode)
	}
	if p.Regs.PC != vector {
		t.Fatalf("PC = %#x, want %#x", p.Regs.PC, uint32(vector))
	}
}

// Seed scenario 5 (spec §8.5): CALLR/RET pairing. The worked vector shows
// Rx receives the already-advanced return PC, not the jump target.
func TestCallrRetPairing(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000
	p.Regs.R[4] = 0x2000

	p.Mem.WriteHalfword(0x1000, 0x7054) // CALLR R5,R4

	if _, err := p.Step(); err != nil {
		t.Fatalf("CALLR step: %v", err)
	}
	if p.Regs.R[5] != 0x1002 {
		t.Fatalf("R5 after CALLR = %#x, want 0x1002", p.Regs.R[5])
	}
	if p.Regs.PC != 0x3000 {
		t.Fatalf("PC after CALLR = %#x, want 0x3000", p.Regs.PC)
	}

	p.Mem.WriteHalfword(0x3000, 0x7155) // RET R5,R5

	if _, err := p.Step(); err != nil {
		t.Fatalf("RET step: %v", err)
	}
	if p.Regs.PC != 0x1002 {
		t.Fatalf("PC after RET = %#x, want 0x1002", p.Regs.PC)
	}
	if p.Regs.R[5] != 0x3002 {
		t.Fatalf("R5 after RET = %#x, want 0x3002", p.Regs.R[5])
	}
}

// Seed scenario 6 (spec §8.6): register-pair CBIT.
func TestRegisterPairCbit(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000
	p.Regs.R[6] = 0xFFFFFFFF
	p.Regs.R[7] = 0xFFFFFFFF
	p.Regs.R[8] = 0

	p.Mem.WriteHalfword(0x1000, 0x0B68) // CBIT R6,R8

	if _, err := p.Step(); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if p.Regs.R[6] != 0x7FFFFFFF {
		t.Fatalf("R6 = %#x, want 0x7FFFFFFF", p.Regs.R[6])
	}
	if p.Regs.R[7] != 0xFFFFFFFF {
		t.Fatalf("R7 = %#x, want 0xFFFFFFFF", p.Regs.R[7])
	}

	p.Regs.R[8] = 63
	p.Regs.PC = 0x1002
	p.Mem.WriteHalfword(0x1002, 0x0B68) // CBIT R6,R8 again, now clearing bit 63

	if _, err := p.Step(); err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if p.Regs.R[7] != 0xFFFFFFFE {
		t.Fatalf("R7 = %#x, want 0xFFFFFFFE", p.Regs.R[7])
	}
}

// Invariant: SUS followed by LUS round-trips the saved register window.
func TestSusLusRoundTrip(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.SR[registers.SR14] = 0x8000
	p.Regs.SR[registers.SR15] = 0x1234
	p.Regs.SR[registers.SR8] = 7
	p.Regs.SR[registers.SR9] = 9
	p.Regs.SR[registers.SR10] = 0x55
	p.Regs.R[2] = 0xAAAA
	p.Regs.R[3] = 0xBBBB

	susRet := instructions.Instruction{Rx: 2, Ry: 3}
	p.sus(susRet)

	p.Regs.SR[registers.SR15] = 0
	p.Regs.SR[registers.SR8] = 0
	p.Regs.SR[registers.SR9] = 0
	p.Regs.SR[registers.SR10] = 0
	p.Regs.R[2] = 0
	p.Regs.R[3] = 0

	p.lus(susRet)

	if p.Regs.SR[registers.SR15] != 0x1234 || p.Regs.SR[registers.SR8] != 7 ||
		p.Regs.SR[registers.SR9] != 9 || p.Regs.SR[registers.SR10] != 0x55 {
		t.Fatalf("SR state did not round-trip: %+v", p.Regs.SR)
	}
	if p.Regs.R[2] != 0xAAAA || p.Regs.R[3] != 0xBBBB {
		t.Fatalf("R2/R3 did not round-trip: %#x/%#x", p.Regs.R[2], p.Regs.R[3])
	}
}

// Invariant (spec §8): a misaligned load/store raises DataAlignment
// without committing any partial write.
func TestMisalignedStoreFaultsWithoutMutation(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000
	p.Regs.R[0] = 0x11223344

	// STORE_dw R0,#0x801 (word store, absolute, misaligned by one byte).
	p.Mem.WriteHalfword(0x1000, 0xC600)
	p.Mem.WriteHalfword(0x1002, 0x0801)

	before := p.Mem.ReadWord(0x801)
	result, err := p.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.HasEvent || result.Event.Type != event.DataAlignment {
		t.Fatalf("event = %+v, want DataAlignment", result)
	}
	after := p.Mem.ReadWord(0x801)
	if before != after {
		t.Fatalf("memory at 0x801 changed despite alignment fault: %#x -> %#x", before, after)
	}
}

// Invariant (spec §4.5.3): ASL raises ArithmeticTrap exactly when a
// partial shift flips the sign bit, after committing the partial result.
func TestASLSignFlipArithmeticTrap(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000
	p.Regs.R[0] = 0x60000000 // bit 30 set: one shift left flips the sign bit
	p.Regs.R[1] = 1          // shift count

	p.Mem.WriteHalfword(0x1000, 0x2201) // ASL R0,R1

	result, err := p.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.HasEvent || result.Event.Type != event.ArithmeticTrap {
		t.Fatalf("event = %+v, want ArithmeticTrap", result)
	}
	if p.Regs.R[0] != 0x40000000 {
		t.Fatalf("R0 = %#x, want 0x40000000 (partial shift committed, sign restored)", p.Regs.R[0])
	}
}

// Invariant (spec §4.5.3): an unrecognised MAINT sub-op raises
// IllegalInstruction rather than silently zeroing Rx.
func TestMaintUnrecognisedSubOpRaisesIllegal(t *testing.T) {
	p := newTestProcessor(t, 1<<20)
	p.Regs.PC = 0x1000

	p.Mem.WriteHalfword(0x1000, 0x5801) // MAINT R0,R1: sub-op 1 is not defined

	result, err := p.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.HasEvent || result.Event.Type != event.IllegalInstruction {
		t.Fatalf("event = %+v, want IllegalInstruction", result)
	}
}

