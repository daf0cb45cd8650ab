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

import "github.com/jdersch/Ridge32/curated"

// maxVRTChainLength bounds the link-chain walk. A normal guest OS never
// builds a cyclic VRT chain; exceeding this is a host-detected
// impossibility, not an architectural page fault (see spec §4.2, §7).
const maxVRTChainLength = 1024

// ErrVRTChainOverflow is reported when a VRT walk exceeds the safety bound.
const ErrVRTChainOverflow = "VRT link chain exceeded %d entries (segment %#x, vaddr %#x) - probable cycle"

// Translator performs the VRT walk described in spec §4.2. It owns no
// state beyond a reference to the physical store the table lives in;
// SR12 (table base) and SR13 (VRMASK) are passed in by the caller on
// every call, since they can change between calls (TRANS/DIRT read them
// fresh each time).
type Translator struct {
	phys *Physical
}

// NewTranslator returns a Translator reading the VRT out of phys.
func NewTranslator(phys *Physical) *Translator {
	return &Translator{phys: phys}
}

// Translate implements the exact probe/match/link-chain/M-R-bit-update
// algorithm of spec §4.2. vrtBase is SR12, vrMask is SR13.
func (t *Translator) Translate(segment, vaddr, vrtBase, vrMask uint32, modified, referenced bool) (real uint32, fault bool, err error) {
	probe := ((vaddr >> 12) + segment) & vrMask
	probe = (probe << 3) + vrtBase

	for step := 0; ; step++ {
		if step >= maxVRTChainLength {
			return 0, false, curated.Errorf(ErrVRTChainOverflow, maxVRTChainLength, segment, vaddr)
		}

		e0 := t.phys.ReadWord(probe)
		e1 := t.phys.ReadWord(probe + 4)

		if (e0>>16) == segment && (e0&0xFFFF) == (vaddr>>16) {
			if e1&0x7000 == 0 {
				return 0, true, nil
			}
			real = ((e1 & 0x7FF) << 12) | (vaddr & 0xFFF)
			if modified {
				e1 |= 0x800
			}
			if referenced {
				e1 |= 0x8000
			}
			t.phys.WriteWord(probe+4, e1)
			return real, false, nil
		}

		link := e1 >> 16
		if link == 0 {
			return 0, true, nil
		}
		probe = link + vrtBase
	}
}
