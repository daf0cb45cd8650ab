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

// shiftCount resolves the count operand for a shift instruction: the
// register form reads R[Ry], the immediate form reads the raw 4-bit Ry
// field (it is a small unsigned count, never sign-extended), then masks
// to the instruction's width.
func (p *Processor) shiftCount(inst instructions.Instruction, mask uint32) uint32 {
	if inst.Immediate {
		return uint32(inst.Ry) & mask
	}
	return p.Regs.R[inst.Ry] & mask
}

// execShift implements spec §4.5.1's shift/sign-extension family.
func (p *Processor) execShift(inst instructions.Instruction) (StepResult, error) {
	rx := inst.Rx

	switch inst.Op {
	case instructions.OpLsl:
		p.Regs.R[rx] <<= p.shiftCount(inst, 0x1F)
	case instructions.OpLsr:
		p.Regs.R[rx] >>= p.shiftCount(inst, 0x1F)
	case instructions.OpAsr:
		p.Regs.R[rx] = uint32(s32(p.Regs.R[rx]) >> p.shiftCount(inst, 0x1F))
	case instructions.OpDlsl:
		p.Regs.SetPair(rx, p.Regs.Pair(rx)<<p.shiftCount(inst, 0x3F))
	case instructions.OpDlsr:
		p.Regs.SetPair(rx, p.Regs.Pair(rx)>>p.shiftCount(inst, 0x3F))
	case instructions.OpCsl:
		count := p.shiftCount(inst, 0x1F)
		v := p.Regs.R[rx]
		p.Regs.R[rx] = v<<count | v>>(32-count)
		if count == 0 {
			p.Regs.R[rx] = v
		}
	case instructions.OpSeb:
		p.Regs.R[rx] = uint32(int32(int8(p.Regs.R[inst.Ry])))
	case instructions.OpSeh:
		p.Regs.R[rx] = uint32(int32(int16(p.Regs.R[inst.Ry])))
	case instructions.OpAsl:
		return p.execASL(inst), nil
	}

	return StepResult{}, nil
}

// execASL follows the 1983-edition algorithm verbatim (spec §4.5.3):
// shift left one bit at a time, restoring the original sign bit after
// each step; if the bit that would have occupied the sign position
// differs from the original sign, raise ArithmeticTrap after that
// partial shift has already been committed.
func (p *Processor) execASL(inst instructions.Instruction) StepResult {
	rx := inst.Rx
	count := p.shiftCount(inst, 0x1F)
	v := p.Regs.R[rx]
	sign := v & 0x80000000

	for step := uint32(0); step < count; step++ {
		v <<= 1
		top := v & 0x80000000
		v = (v &^ 0x80000000) | sign
		if top != sign {
			p.Regs.R[rx] = v
			return p.raiseArithmeticTrap()
		}
	}

	p.Regs.R[rx] = v
	return StepResult{}
}
