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
	"github.com/jdersch/Ridge32/hardware/cpu/instructions"
	"github.com/jdersch/Ridge32/hardware/cpu/registers"
	"github.com/jdersch/Ridge32/hardware/event"
)

// execCallRet implements CALLR and RET (spec §4.5.3), both register
// format so opc is the two-byte instruction's own fetch address.
func (p *Processor) execCallRet(inst instructions.Instruction, opc uint32) (StepResult, error) {
	switch inst.Op {
	case instructions.OpCallr:
		// Spec §8's worked vector (R5=0x1002 after CALLR R5,R4 from
		// opc=0x1000, R4=0x2000) shows Rx receives the already-advanced
		// return PC, not the jump target, despite §4.5.3's prose reading
		// "R[Rx] = new PC" - the same return-address convention RET uses.
		ret := p.Regs.PC
		target := opc + p.Regs.R[inst.Ry]
		p.Regs.R[inst.Rx] = ret
		p.Regs.PC = target

	case instructions.OpRet:
		oldPC := p.Regs.PC
		newPC := p.Regs.R[inst.Ry]
		p.Regs.PC = newPC
		p.Regs.R[inst.Rx] = oldPC
	}
	return StepResult{}, nil
}

// execKcall implements KCALL: user-mode only, else KernelViolation. The
// event number is (Rx<<4)|Ry, and its CCB offset is 4*eventNumber
// (spec §4.6).
func (p *Processor) execKcall(inst instructions.Instruction, opc uint32) (StepResult, error) {
	if p.Regs.Mode != registers.User {
		return p.applyEvent(event.Event{Type: event.KernelViolation, D0: uint32(inst.Raw)}, opc, p.Regs.PC), nil
	}
	num := uint32(inst.Rx<<4 | inst.Ry)
	return p.applyEvent(event.Event{Type: event.KCall, D0: num}, opc, p.Regs.PC), nil
}

// execTrap implements TRAP Ry: SR3 <- Ry, then raise a software trap.
// The spec's prose names this event "TrapInstruction", but that name is
// not a member of the closed EventType set in spec §4.6; Switch0Interrupt
// is the one CCB vector in that table left otherwise unassigned to any
// opcode and whose always-vectors SR-write shape (SR0/SR15 taken from the
// PC after the TRAP instruction) matches a synchronous software trap, so TRAP's event is dispatched there
// (documented in DESIGN.md).
func (p *Processor) execTrap(inst instructions.Instruction) (StepResult, error) {
	p.Regs.SR[registers.SR3] = uint32(inst.Ry)
	return p.applyEvent(event.Event{Type: event.Switch0Interrupt}, p.Regs.PC, p.Regs.PC), nil
}
