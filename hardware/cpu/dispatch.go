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

// dispatch executes inst's semantics per spec §4.5.3. opc is the
// instruction's fetch address (PC before advance); p.Regs.PC already
// holds opc+inst.Length by the time dispatch is called, matching the
// algorithm's step order (advance, then dispatch).
func (p *Processor) dispatch(inst instructions.Instruction, opc uint32) (StepResult, error) {
	switch inst.Op {
	case instructions.OpIllegal:
		return p.raiseIllegal(inst, opc), nil

	case instructions.OpMove, instructions.OpNeg, instructions.OpAdd, instructions.OpSub,
		instructions.OpMpy, instructions.OpDiv, instructions.OpRem, instructions.OpNot,
		instructions.OpOr, instructions.OpXor, instructions.OpAnd, instructions.OpCbit,
		instructions.OpSbit, instructions.OpTbit, instructions.OpChk,
		instructions.OpMovei, instructions.OpAddi, instructions.OpSubi, instructions.OpMpyi,
		instructions.OpNoti, instructions.OpAndi, instructions.OpChki:
		return p.execALU(inst)

	case instructions.OpLsl, instructions.OpLsr, instructions.OpAsl, instructions.OpAsr,
		instructions.OpDlsl, instructions.OpDlsr, instructions.OpCsl,
		instructions.OpSeb, instructions.OpSeh:
		return p.execShift(inst)

	case instructions.OpLcomp, instructions.OpDcomp, instructions.OpEadd, instructions.OpEsub,
		instructions.OpEmpy, instructions.OpEdiv:
		return p.execExtended(inst)

	case instructions.OpFloatStub:
		return p.raiseIllegal(inst, opc), nil

	case instructions.OpSus, instructions.OpLus, instructions.OpRum, instructions.OpLdregs,
		instructions.OpTrans, instructions.OpDirt, instructions.OpMoveSR, instructions.OpMoveRS,
		instructions.OpMaint, instructions.OpRead, instructions.OpWrite:
		return p.execPrivileged(inst, opc)

	case instructions.OpTest:
		return p.execTest(inst)

	case instructions.OpCallr, instructions.OpRet:
		return p.execCallRet(inst, opc)

	case instructions.OpKcall:
		return p.execKcall(inst, opc)

	case instructions.OpTrap:
		return p.execTrap(inst)

	case instructions.OpBranch, instructions.OpCall, instructions.OpLoop:
		return p.execBranch(inst, opc)

	case instructions.OpLoadB, instructions.OpLoadH, instructions.OpLoadW, instructions.OpLoadD,
		instructions.OpStoreB, instructions.OpStoreH, instructions.OpStoreW, instructions.OpStoreD,
		instructions.OpLaddr:
		return p.execMemRef(inst, opc)

	default:
		return p.raiseIllegal(inst, opc), nil
	}
}

func (p *Processor) raiseIllegal(inst instructions.Instruction, opc uint32) StepResult {
	seg := p.Regs.SR[registers.SR8]
	return p.applyEvent(event.Event{Type: event.IllegalInstruction, D0: uint32(inst.Raw), D1: seg}, opc, p.Regs.PC)
}

// requirePrivilegedOrPPUser raises KernelViolation and reports
// handled=true if the processor is not in kernel mode (or, when
// allowPPUser is set, PP-user mode).
func (p *Processor) requirePrivilegedOrPPUser(inst instructions.Instruction, opc uint32, allowPPUser bool) (StepResult, bool) {
	if p.Regs.Mode == registers.Kernel {
		return StepResult{}, false
	}
	if allowPPUser && p.Regs.Privileged() {
		return StepResult{}, false
	}
	return p.applyEvent(event.Event{Type: event.KernelViolation, D0: uint32(inst.Raw)}, opc, p.Regs.PC), true
}
