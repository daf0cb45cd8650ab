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
	"github.com/jdersch/Ridge32/hardware/event"
)

func s32(v uint32) int32 { return int32(v) }

// execALU implements the register-register and immediate-form integer
// ALU opcodes (spec §4.5.1's first two bullet groups). Overflow traps
// for ADD/SUB/MPY/DIV are an open question the spec leaves unresolved
// ("unimplemented; wrap silently" - see SPEC_FULL.md §9), so every
// arithmetic op here wraps on uint32/int32 overflow rather than trapping.
func (p *Processor) execALU(inst instructions.Instruction) (StepResult, error) {
	rx, ry := inst.Rx, inst.Ry

	switch inst.Op {
	case instructions.OpMove:
		p.Regs.R[rx] = p.Regs.R[ry]
	case instructions.OpNeg:
		p.Regs.R[rx] = uint32(-s32(p.Regs.R[ry]))
	case instructions.OpAdd:
		p.Regs.R[rx] += p.Regs.R[ry]
	case instructions.OpSub:
		p.Regs.R[rx] -= p.Regs.R[ry]
	case instructions.OpMpy:
		p.Regs.R[rx] = uint32(s32(p.Regs.R[rx]) * s32(p.Regs.R[ry]))
	case instructions.OpDiv:
		if p.Regs.R[ry] == 0 {
			return p.raiseArithmeticTrap(), nil
		}
		p.Regs.R[rx] = uint32(s32(p.Regs.R[rx]) / s32(p.Regs.R[ry]))
	case instructions.OpRem:
		if p.Regs.R[ry] == 0 {
			return p.raiseArithmeticTrap(), nil
		}
		p.Regs.R[rx] = uint32(s32(p.Regs.R[rx]) % s32(p.Regs.R[ry]))
	case instructions.OpNot:
		p.Regs.R[rx] = ^p.Regs.R[ry]
	case instructions.OpOr:
		p.Regs.R[rx] |= p.Regs.R[ry]
	case instructions.OpXor:
		p.Regs.R[rx] ^= p.Regs.R[ry]
	case instructions.OpAnd:
		p.Regs.R[rx] &= p.Regs.R[ry]
	case instructions.OpCbit:
		p.setPairBit(rx, p.Regs.R[ry]&0x3F, false)
	case instructions.OpSbit:
		p.setPairBit(rx, p.Regs.R[ry]&0x3F, true)
	case instructions.OpTbit:
		p.Regs.R[rx] = p.testPairBit(rx, p.Regs.R[ry]&0x3F)
	case instructions.OpChk:
		// Spec resolution of the manual conflict: signed R[Rx] > R[Ry] -> Check.
		if s32(p.Regs.R[rx]) > s32(p.Regs.R[ry]) {
			return p.raiseArithmeticTrap(), nil
		}

	case instructions.OpMovei:
		// Unsigned: matches the spec's worked MOVEI R2,#3 vector.
		p.Regs.R[rx] = uint32(ry & 0xF)
	case instructions.OpAddi:
		p.Regs.R[rx] += uint32(inst.ImmediateValue())
	case instructions.OpSubi:
		p.Regs.R[rx] -= uint32(inst.ImmediateValue())
	case instructions.OpMpyi:
		p.Regs.R[rx] = uint32(s32(p.Regs.R[rx]) * inst.ImmediateValue())
	case instructions.OpNoti:
		// Spec resolution: do NOT mask to 4 bits; ~(sign-extended Ry).
		p.Regs.R[rx] = ^uint32(inst.ImmediateValue())
	case instructions.OpAndi:
		p.Regs.R[rx] &= uint32(ry & 0xF)
	case instructions.OpChki:
		if s32(p.Regs.R[rx]) > inst.ImmediateValue() {
			return p.raiseArithmeticTrap(), nil
		}
	}

	return StepResult{}, nil
}

// raiseArithmeticTrap raises ArithmeticTrap. ADD/SUB/MPY overflow are
// explicitly left unimplemented by the spec; divide-by-zero and CHK's
// bounds failure are not named Open Questions but need a concrete event
// and ArithmeticTrap is the only ALU-originated one the CCB defines.
func (p *Processor) raiseArithmeticTrap() StepResult {
	return p.applyEvent(event.Event{Type: event.ArithmeticTrap}, p.Regs.PC, p.Regs.PC)
}

// pairBitHostIndex converts a Ridge-numbered bit index (0 = MSB of the
// 64-bit pair) within (R[rx], R[rx+1]) into a host bit position of the
// uint64 pair value (0 = LSB), per spec §4.5.3's CBIT/SBIT/TBIT note.
func pairBitHostIndex(ridgeBit uint32) uint {
	return uint(63 - (ridgeBit & 0x3F))
}

func (p *Processor) setPairBit(rx int, ridgeBit uint32, set bool) {
	pair := p.Regs.Pair(rx)
	mask := uint64(1) << pairBitHostIndex(ridgeBit)
	if set {
		pair |= mask
	} else {
		pair &^= mask
	}
	p.Regs.SetPair(rx, pair)
}

func (p *Processor) testPairBit(rx int, ridgeBit uint32) uint32 {
	pair := p.Regs.Pair(rx)
	mask := uint64(1) << pairBitHostIndex(ridgeBit)
	if pair&mask != 0 {
		return 1
	}
	return 0
}
