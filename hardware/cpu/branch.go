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

import "github.com/jdersch/Ridge32/hardware/cpu/instructions"

// test evaluates inst's signed condition, comparing R[Rx] against
// either R[Ry] or the sign-extended immediate, per spec §4.5.1 ("Uses
// signed comparison").
func (p *Processor) test(inst instructions.Instruction) bool {
	a := s32(p.Regs.R[inst.Rx])
	var b int32
	if inst.Immediate {
		b = inst.ImmediateValue()
	} else {
		b = s32(p.Regs.R[inst.Ry])
	}

	switch inst.Cond {
	case instructions.CondGT:
		return a > b
	case instructions.CondLT:
		return a < b
	case instructions.CondEQ:
		return a == b
	case instructions.CondLE:
		return a <= b
	case instructions.CondGE:
		return a >= b
	case instructions.CondNE:
		return a != b
	case instructions.CondNone:
		return true
	}
	return false
}

// execTest implements TEST_{gt,lt,eq,lteq,gteq,neq} and their immediate
// forms: materialise a 0/1 in Rx.
func (p *Processor) execTest(inst instructions.Instruction) (StepResult, error) {
	if p.test(inst) {
		p.Regs.R[inst.Rx] = 1
	} else {
		p.Regs.R[inst.Rx] = 0
	}
	return StepResult{}, nil
}

// execBranch implements BR_{gt,lt,eq,lteq,gteq,neq} (register and
// immediate forms), unconditional BR, CALL, and LOOP.
func (p *Processor) execBranch(inst instructions.Instruction, opc uint32) (StepResult, error) {
	switch inst.Op {
	case instructions.OpBranch:
		if p.test(inst) {
			p.Regs.PC = inst.BranchAddress
		}

	case instructions.OpCall:
		// Mirrors CALLR's "store the return address, then jump" shape
		// (spec §4.5.3), using the already-advanced PC as the return
		// address and the decoded branch target as the destination.
		ret := p.Regs.PC
		p.Regs.PC = inst.BranchAddress
		p.Regs.R[inst.Rx] = ret

	case instructions.OpLoop:
		// LOOP's Ry is always the instruction's signed immediate field,
		// not a register number (spec: "R[Rx] += (signed) Ry").
		p.Regs.R[inst.Rx] += uint32(inst.ImmediateValue())
		if s32(p.Regs.R[inst.Rx]) < 0 {
			p.Regs.PC = inst.BranchAddress
		}
	}

	return StepResult{}, nil
}
