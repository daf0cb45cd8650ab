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

package instructions

// Instruction is an immutable decoded record. Create it on the step
// frame - never heap-allocate it - per the spec's design notes on
// avoiding a fresh allocation every step.
type Instruction struct {
	Def
	Raw           uint8  // the opcode byte as fetched, long bit included
	Rx            int    // 0..15
	Ry            int    // 0..15, or the raw 4-bit immediate field when Def.Immediate
	Displacement  int32  // signed; memory-reference formats only
	BranchAddress uint32 // (fetchAddress + Displacement) & ^1; memory-reference formats only
	Length        int    // 2, 4, or 6
}

// ImmediateValue sign-extends a 4-bit immediate field. Most immediate
// opcodes want this; MOVEI's unsigned reading is handled by the caller
// reading Ry directly instead.
func (i Instruction) ImmediateValue() int32 {
	v := int32(i.Ry & 0xF)
	if v&0x8 != 0 {
		v |= ^int32(0xF)
	}
	return v
}

// Reader is the minimal raw memory-read surface the decoder needs: two
// sequential byte-addressed big-endian reads, one per fetch unit. It is
// satisfied directly by *memory.Controller's raw read family without
// this package importing the memory package - keeping the decode/memory
// dependency one-directional. The Controller's virtual reads take a
// segment argument and reach DecodeV through a VReader adapter instead.
type Reader interface {
	ReadHalfword(addr uint32) uint16
	ReadWord(addr uint32) uint32
}

// VReader is the virtual-fetch counterpart of Reader: each read reports
// whether it page-faulted, since a long-displacement fetch issues two
// independent reads that may fault independently (spec §4.4).
type VReader interface {
	ReadHalfwordV(addr uint32) (uint16, bool, error)
	ReadWordV(addr uint32) (uint32, bool, error)
}

// Decode decodes the instruction at address using a raw (non-faulting)
// reader - the kernel-mode fetch path.
func Decode(mem Reader, address uint32) Instruction {
	first := mem.ReadHalfword(address)
	opcode := uint8(first >> 8)
	rx := int(first>>4) & 0xF
	ry := int(first) & 0xF

	if opcode&0x80 == 0 {
		def, _ := lookup(opcode)
		return Instruction{Def: def, Raw: opcode, Rx: rx, Ry: ry, Length: 2}
	}

	def, _ := lookupMemRef(opcode)
	long := opcode&0x10 != 0
	var disp int32
	var length int
	if long {
		disp = int32(mem.ReadWord(address + 2))
		length = 6
	} else {
		disp = int32(int16(mem.ReadHalfword(address + 2)))
		length = 4
	}
	branch := uint32(int64(address) + int64(disp))
	branch &^= 1

	return Instruction{
		Def: def, Raw: opcode, Rx: rx, Ry: ry,
		Displacement: disp, BranchAddress: branch, Length: length,
	}
}

// DecodeV is the virtual-fetch counterpart of Decode: the caller is in
// user mode, so each half/word fetch can page-fault (spec §4.4, "issues
// TWO distinct memory reads for long-displacement instructions; each
// may page-fault independently"). Report fault=true if any sub-read
// faults; which address is attributed to the fault is left
// implementation-defined by the spec for the straddling case, so this
// implementation reports the address of whichever read actually
// faulted.
func DecodeV(mem VReader, address uint32) (inst Instruction, faultAddr uint32, fault bool, err error) {
	first, fault, err := mem.ReadHalfwordV(address)
	if fault || err != nil {
		return Instruction{}, address, fault, err
	}
	opcode := uint8(first >> 8)
	rx := int(first>>4) & 0xF
	ry := int(first) & 0xF

	if opcode&0x80 == 0 {
		def, _ := lookup(opcode)
		return Instruction{Def: def, Raw: opcode, Rx: rx, Ry: ry, Length: 2}, 0, false, nil
	}

	def, _ := lookupMemRef(opcode)
	long := opcode&0x10 != 0
	var disp int32
	var length int
	if long {
		w, f, e := mem.ReadWordV(address + 2)
		if f || e != nil {
			return Instruction{}, address + 2, f, e
		}
		disp = int32(w)
		length = 6
	} else {
		h, f, e := mem.ReadHalfwordV(address + 2)
		if f || e != nil {
			return Instruction{}, address + 2, f, e
		}
		disp = int32(int16(h))
		length = 4
	}
	branch := uint32(int64(address) + int64(disp))
	branch &^= 1

	return Instruction{
		Def: def, Raw: opcode, Rx: rx, Ry: ry,
		Displacement: disp, BranchAddress: branch, Length: length,
	}, 0, false, nil
}
