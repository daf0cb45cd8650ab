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

// Package event implements the Ridge 32 Control Communications Block
// vectoring described in spec §4.6: each architectural event writes a
// fixed set of special registers and, when it vectors, switches to
// kernel mode and sets PC from a word fetched out of the CCB.
//
// Architectural events are plain values, never Go errors or panics -
// see the spec's "events vs exceptions" design note, carried through
// here as Type/Event being ordinary data the Processor's step loop
// inspects after a handler runs.
package event

import "github.com/jdersch/Ridge32/hardware/cpu/registers"

// Type is the closed set of Ridge 32 architectural events.
type Type int

const (
	KCall Type = iota
	DataAlignment
	IllegalInstruction
	PageFault
	KernelViolation
	ArithmeticTrap
	ExternalInterrupt
	Switch0Interrupt
	Timer1Interrupt
	Timer2Interrupt
)

func (t Type) String() string {
	switch t {
	case KCall:
		return "KCall"
	case DataAlignment:
		return "DataAlignment"
	case IllegalInstruction:
		return "IllegalInstruction"
	case PageFault:
		return "PageFault"
	case KernelViolation:
		return "KernelViolation"
	case ArithmeticTrap:
		return "ArithmeticTrap"
	case ExternalInterrupt:
		return "ExternalInterrupt"
	case Switch0Interrupt:
		return "Switch0Interrupt"
	case Timer1Interrupt:
		return "Timer1Interrupt"
	case Timer2Interrupt:
		return "Timer2Interrupt"
	default:
		return "unknown"
	}
}

// Fixed CCB offsets, spec §4.6. KCall's offset is computed from its
// event number (d0) instead, at 4*d0.
const (
	offDataAlignment      = 0x400
	offIllegalInstruction = 0x404
	offPageFault          = 0x410
	offKernelViolation    = 0x414
	offArithmeticTrap     = 0x41C
	offExternalInterrupt  = 0x420
	offSwitch0Interrupt   = 0x424
	offTimer1Interrupt    = 0x430
	offTimer2Interrupt    = 0x434
)

func offset(t Type, d0 uint32) uint32 {
	switch t {
	case KCall:
		return 4 * d0
	case DataAlignment:
		return offDataAlignment
	case IllegalInstruction:
		return offIllegalInstruction
	case PageFault:
		return offPageFault
	case KernelViolation:
		return offKernelViolation
	case ArithmeticTrap:
		return offArithmeticTrap
	case ExternalInterrupt:
		return offExternalInterrupt
	case Switch0Interrupt:
		return offSwitch0Interrupt
	case Timer1Interrupt:
		return offTimer1Interrupt
	case Timer2Interrupt:
		return offTimer2Interrupt
	}
	return 0
}

// Event is a transient request to enter a kernel handler, carrying the
// parameter words the dispatcher needs. Not every field is meaningful
// for every Type - see Signal and spec §4.6's table.
type Event struct {
	Type Type
	D0   uint32
	D1   uint32
	D2   uint32
}

// RawMemory is the raw (non-translating) memory surface Signal uses to
// fetch the CCB vector word.
type RawMemory interface {
	ReadWord(addr uint32) uint32
}

// AckFunc is supplied by the caller's pending-interrupt device for
// ExternalInterrupt delivery; it is the device's ack_interrupt().
type AckFunc func() uint32

// Signal applies ev's special-register writes for the current mode,
// fetches the CCB vector if the event vectors, and reports the new PC
// and mode the Processor should adopt. opc is the instruction's PC at
// fetch time (spec's "opc"); pcNext is PC after that instruction's
// length was added. Exactly one of opc/pcNext is meaningful per event,
// per spec §4.6's table; callers pass both for simplicity.
func Signal(mem RawMemory, regs *registers.File, ev Event, opc, pcNext uint32, ack AckFunc) (newPC uint32, doVector bool) {
	enteringFromUser := regs.Mode == registers.User
	doVector = true

	switch ev.Type {
	case KCall:
		regs.SR[registers.SR15] = pcNext

	case DataAlignment:
		if enteringFromUser {
			regs.SR[registers.SR0] = 1
			regs.SR[registers.SR15] = opc
		} else {
			regs.SR[registers.SR0] = opc
		}

	case IllegalInstruction:
		if enteringFromUser {
			regs.SR[registers.SR0] = 1
			regs.SR[registers.SR15] = pcNext
		} else {
			regs.SR[registers.SR0] = pcNext
		}
		regs.SR[registers.SR1] = ev.D0
		regs.SR[registers.SR2] = ev.D1
		regs.SR[registers.SR3] = pcNext

	case PageFault:
		regs.SR[registers.SR0] = 1
		regs.SR[registers.SR1] = ev.D0
		regs.SR[registers.SR2] = ev.D1
		regs.SR[registers.SR3] = ev.D2
		regs.SR[registers.SR15] = opc

	case KernelViolation:
		if enteringFromUser {
			regs.SR[registers.SR0] = 1
			regs.SR[registers.SR15] = opc
		} else {
			regs.SR[registers.SR0] = opc
		}
		regs.SR[registers.SR1] = ev.D0
		regs.SR[registers.SR2] = ev.D1
		regs.SR[registers.SR3] = ev.D2

	case ArithmeticTrap:
		// No SR writes defined; still vectors.

	case ExternalInterrupt:
		if !enteringFromUser {
			doVector = false
			break
		}
		var ioir uint32
		if ack != nil {
			ioir = ack()
		}
		regs.SR[registers.SR0] = ioir
		regs.SR[registers.SR15] = pcNext

	case Switch0Interrupt:
		if enteringFromUser {
			regs.SR[registers.SR0] = 1
			regs.SR[registers.SR15] = pcNext
		} else {
			regs.SR[registers.SR0] = pcNext
		}

	case Timer1Interrupt, Timer2Interrupt:
		if !enteringFromUser {
			doVector = false
			break
		}
		regs.SR[registers.SR0] = 1
		regs.SR[registers.SR15] = pcNext
	}

	if !doVector {
		return regs.PC, false
	}

	vector := mem.ReadWord(regs.SR[registers.SR11] + offset(ev.Type, ev.D0))
	regs.Mode = registers.Kernel
	return vector, true
}
