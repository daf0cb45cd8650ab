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

package memory

import "github.com/jdersch/Ridge32/hardware/cpu/registers"

// Segment selects which segment register (SR8 code, SR9 data) a virtual
// access translates against.
type Segment int

const (
	Code Segment = iota
	Data
)

// RegisterView is the minimal read-only view of the register file the
// controller needs. A small interface here, rather than a back-pointer
// to the Processor, is what breaks the Processor<->Controller ownership
// cycle noted in the spec's design notes.
type RegisterView interface {
	Mode() registers.Mode
	SR(i int) uint32
}

// Controller composes a Physical store with a Translator, exposing the
// raw and virtual read/write families described in spec §4.3. It never
// raises events itself; every access that can fault returns a page_fault
// flag (or an err for host-detected impossibilities) that the Processor
// converts into the appropriate event.
type Controller struct {
	Phys *Physical
	vrt  *Translator
	regs RegisterView
}

// NewController composes phys and regs into a Controller.
func NewController(phys *Physical, regs RegisterView) *Controller {
	return &Controller{Phys: phys, vrt: NewTranslator(phys), regs: regs}
}

func (c *Controller) segmentNumber(seg Segment) uint32 {
	if seg == Code {
		return c.regs.SR(registers.SR8)
	}
	return c.regs.SR(registers.SR9)
}

// translate runs the VRT walk using the controller's current SR12/SR13.
func (c *Controller) translate(seg Segment, vaddr uint32, modified, referenced bool) (real uint32, fault bool, err error) {
	segment := c.segmentNumber(seg)
	vrtBase := c.regs.SR(registers.SR12)
	vrMask := c.regs.SR(registers.SR13)
	return c.vrt.Translate(segment, vaddr, vrtBase, vrMask, modified, referenced)
}

// Raw family: always bypasses translation, used for kernel-mode access
// and internally by the VRT walk itself.

func (c *Controller) ReadByte(addr uint32) uint8        { return c.Phys.ReadByte(addr) }
func (c *Controller) ReadHalfword(addr uint32) uint16    { return c.Phys.ReadHalfword(addr) }
func (c *Controller) ReadWord(addr uint32) uint32        { return c.Phys.ReadWord(addr) }
func (c *Controller) ReadDoubleword(addr uint32) uint64  { return c.Phys.ReadDoubleword(addr) }
func (c *Controller) WriteByte(addr uint32, v uint8)     { c.Phys.WriteByte(addr, v) }
func (c *Controller) WriteHalfword(addr uint32, v uint16) { c.Phys.WriteHalfword(addr, v) }
func (c *Controller) WriteWord(addr uint32, v uint32)    { c.Phys.WriteWord(addr, v) }
func (c *Controller) WriteDoubleword(addr uint32, v uint64) { c.Phys.WriteDoubleword(addr, v) }

// Virtual family: in kernel mode these pass through to raw; in user mode
// they translate first using the requested segment register. Per spec,
// virtual reads set only the R bit; virtual writes set both M and R.

func (c *Controller) ReadByteV(addr uint32, seg Segment) (uint8, bool, error) {
	real, fault, err := c.resolveV(addr, seg, false, true)
	if fault || err != nil {
		return 0, fault, err
	}
	return c.Phys.ReadByte(real), false, nil
}

func (c *Controller) ReadHalfwordV(addr uint32, seg Segment) (uint16, bool, error) {
	real, fault, err := c.resolveV(addr, seg, false, true)
	if fault || err != nil {
		return 0, fault, err
	}
	return c.Phys.ReadHalfword(real), false, nil
}

func (c *Controller) ReadWordV(addr uint32, seg Segment) (uint32, bool, error) {
	real, fault, err := c.resolveV(addr, seg, false, true)
	if fault || err != nil {
		return 0, fault, err
	}
	return c.Phys.ReadWord(real), false, nil
}

func (c *Controller) ReadDoublewordV(addr uint32, seg Segment) (uint64, bool, error) {
	real, fault, err := c.resolveV(addr, seg, false, true)
	if fault || err != nil {
		return 0, fault, err
	}
	return c.Phys.ReadDoubleword(real), false, nil
}

func (c *Controller) WriteByteV(addr uint32, seg Segment, v uint8) (bool, error) {
	real, fault, err := c.resolveV(addr, seg, true, true)
	if fault || err != nil {
		return fault, err
	}
	c.Phys.WriteByte(real, v)
	return false, nil
}

func (c *Controller) WriteHalfwordV(addr uint32, seg Segment, v uint16) (bool, error) {
	real, fault, err := c.resolveV(addr, seg, true, true)
	if fault || err != nil {
		return fault, err
	}
	c.Phys.WriteHalfword(real, v)
	return false, nil
}

func (c *Controller) WriteWordV(addr uint32, seg Segment, v uint32) (bool, error) {
	real, fault, err := c.resolveV(addr, seg, true, true)
	if fault || err != nil {
		return fault, err
	}
	c.Phys.WriteWord(real, v)
	return false, nil
}

func (c *Controller) WriteDoublewordV(addr uint32, seg Segment, v uint64) (bool, error) {
	real, fault, err := c.resolveV(addr, seg, true, true)
	if fault || err != nil {
		return fault, err
	}
	c.Phys.WriteDoubleword(real, v)
	return false, nil
}

// resolveV returns the physical address for a virtual access, passing
// through untranslated in kernel mode.
func (c *Controller) resolveV(addr uint32, seg Segment, modified, referenced bool) (real uint32, fault bool, err error) {
	if c.regs.Mode() == registers.Kernel {
		return addr, false, nil
	}
	return c.translate(seg, addr, modified, referenced)
}

// Peek reads a word without perturbing M/R bits or faulting, for use by
// a host harness inspecting state (e.g. cmd/ridgesim, or tests). It is
// not part of the architectural read/write contract.
func (c *Controller) Peek(addr uint32, seg Segment) uint32 {
	if c.regs.Mode() == registers.Kernel {
		return c.Phys.ReadWord(addr)
	}
	real, fault, err := c.translate(seg, addr, false, false)
	if fault || err != nil {
		return 0
	}
	return c.Phys.ReadWord(real)
}

// TranslateRaw exposes the VRT walk directly for the TRANS/DIRT opcodes,
// which pass an explicit segment number rather than Code/Data.
func (c *Controller) TranslateRaw(segment, vaddr uint32, modified, referenced bool) (real uint32, fault bool, err error) {
	vrtBase := c.regs.SR(registers.SR12)
	vrMask := c.regs.SR(registers.SR13)
	return c.vrt.Translate(segment, vaddr, vrtBase, vrMask, modified, referenced)
}
