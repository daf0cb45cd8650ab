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
	"github.com/jdersch/Ridge32/hardware/memory"
)

// effectiveAddress computes a memory-reference instruction's address per
// spec §4.4: PC-relative ("c") forms add the displacement to the
// instruction's own fetch address (opc), absolute ("d") forms take the
// displacement as the address outright; indexed forms add R[Ry] on top.
func (p *Processor) effectiveAddress(inst instructions.Instruction, opc uint32) uint32 {
	var base uint32
	if inst.PCRelative {
		base = uint32(int64(opc) + int64(inst.Displacement))
	} else {
		base = uint32(inst.Displacement)
	}
	if inst.Indexed {
		base += p.Regs.R[inst.Ry]
	}
	return base
}

// execMemRef implements LOAD{B,H,W,D}, STORE{B,H,W,D}, and LADDR (spec
// §4.5.3/§4.4). Data accesses go through the virtual family
// unconditionally - Controller.*V already passes through untranslated in
// kernel mode, so there's no separate raw path to maintain here.
func (p *Processor) execMemRef(inst instructions.Instruction, opc uint32) (StepResult, error) {
	ea := p.effectiveAddress(inst, opc)

	if inst.Op == instructions.OpLaddr {
		p.Regs.R[inst.Rx] = ea
		return StepResult{}, nil
	}

	align := alignmentFor(inst.Op)
	if align > 1 && ea%align != 0 {
		return p.applyEvent(event.Event{Type: event.DataAlignment}, opc, p.Regs.PC), nil
	}

	switch inst.Op {
	case instructions.OpLoadB:
		v, fault, err := p.Mem.ReadByteV(ea, memory.Data)
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}
		p.Regs.R[inst.Rx] = uint32(v)

	case instructions.OpLoadH:
		v, fault, err := p.Mem.ReadHalfwordV(ea, memory.Data)
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}
		p.Regs.R[inst.Rx] = uint32(v)

	case instructions.OpLoadW:
		v, fault, err := p.Mem.ReadWordV(ea, memory.Data)
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}
		p.Regs.R[inst.Rx] = v

	case instructions.OpLoadD:
		v, fault, err := p.Mem.ReadDoublewordV(ea, memory.Data)
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}
		p.Regs.SetPair(inst.Rx, v)

	case instructions.OpStoreB:
		fault, err := p.Mem.WriteByteV(ea, memory.Data, uint8(p.Regs.R[inst.Rx]))
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}

	case instructions.OpStoreH:
		fault, err := p.Mem.WriteHalfwordV(ea, memory.Data, uint16(p.Regs.R[inst.Rx]))
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}

	case instructions.OpStoreW:
		fault, err := p.Mem.WriteWordV(ea, memory.Data, p.Regs.R[inst.Rx])
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}

	case instructions.OpStoreD:
		fault, err := p.Mem.WriteDoublewordV(ea, memory.Data, p.Regs.Pair(inst.Rx))
		if err != nil {
			p.halt(err)
			return StepResult{}, err
		}
		if fault {
			return p.pageFault(ea, opc), nil
		}
	}

	return StepResult{}, nil
}

// alignmentFor returns the required address alignment for a load/store
// opcode: halfword needs 2, word 4, doubleword 8 (spec §4.4); byte
// accesses are always aligned.
func alignmentFor(op instructions.Operator) uint32 {
	switch op {
	case instructions.OpLoadH, instructions.OpStoreH:
		return 2
	case instructions.OpLoadW, instructions.OpStoreW:
		return 4
	case instructions.OpLoadD, instructions.OpStoreD:
		return 8
	}
	return 1
}

// pageFault signals PageFault for a data access: D0 is always the
// 0xFFFFFFFF sentinel, D1 the data segment (SR9), D2 the faulting
// virtual address (spec §4.6's worked vector: SR1=0xFFFFFFFF, SR2=seg,
// SR3=addr, SR15=opc).
func (p *Processor) pageFault(vaddr, opc uint32) StepResult {
	ev := event.Event{Type: event.PageFault, D0: 0xFFFFFFFF, D1: p.Regs.SR[registers.SR9], D2: vaddr}
	return p.applyEvent(ev, opc, opc)
}
