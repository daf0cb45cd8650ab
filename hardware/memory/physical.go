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

// Package memory implements the Ridge 32 physical store, the VRT walk,
// and the controller that composes them into the raw/virtual read and
// write families the Processor uses.
package memory

// Physical is a flat, byte-addressed, big-endian store of a fixed size.
// Reads past the end return zero; writes past the end are silent no-ops,
// matching the spec's "out of range access is not a fault" rule (the
// Processor is the one that turns misalignment or a translation fault
// into an event).
type Physical struct {
	bytes []byte
}

// NewPhysical allocates a Physical store of the given size in bytes.
func NewPhysical(sizeBytes uint32) *Physical {
	return &Physical{bytes: make([]byte, sizeBytes)}
}

// Size returns the store's capacity in bytes.
func (p *Physical) Size() uint32 {
	return uint32(len(p.bytes))
}

// Load copies img into the store starting at physical address base,
// truncating at the end of the store. It is used by a host harness to
// seed a memory image (Processor.Reset leaves memory contents alone, so
// it may be called before or after Reset); it is not part of the
// architectural read/write surface.
func (p *Physical) Load(base uint32, img []byte) {
	if int(base) >= len(p.bytes) {
		return
	}
	n := copy(p.bytes[base:], img)
	_ = n
}

func (p *Physical) ReadByte(addr uint32) uint8 {
	if addr >= uint32(len(p.bytes)) {
		return 0
	}
	return p.bytes[addr]
}

func (p *Physical) WriteByte(addr uint32, v uint8) {
	if addr >= uint32(len(p.bytes)) {
		return
	}
	p.bytes[addr] = v
}

func (p *Physical) ReadHalfword(addr uint32) uint16 {
	return uint16(p.ReadByte(addr))<<8 | uint16(p.ReadByte(addr+1))
}

func (p *Physical) WriteHalfword(addr uint32, v uint16) {
	p.WriteByte(addr, uint8(v>>8))
	p.WriteByte(addr+1, uint8(v))
}

func (p *Physical) ReadWord(addr uint32) uint32 {
	return uint32(p.ReadHalfword(addr))<<16 | uint32(p.ReadHalfword(addr+2))
}

func (p *Physical) WriteWord(addr uint32, v uint32) {
	p.WriteHalfword(addr, uint16(v>>16))
	p.WriteHalfword(addr+2, uint16(v))
}

func (p *Physical) ReadDoubleword(addr uint32) uint64 {
	return uint64(p.ReadWord(addr))<<32 | uint64(p.ReadWord(addr+4))
}

func (p *Physical) WriteDoubleword(addr uint32, v uint64) {
	p.WriteWord(addr, uint32(v>>32))
	p.WriteWord(addr+4, uint32(v))
}
