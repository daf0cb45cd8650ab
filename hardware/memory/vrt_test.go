package memory_test

import (
	"strings"
	"testing"

	"github.com/jdersch/Ridge32/hardware/memory"
)

func TestTranslateMatchSetsMAndRBits(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	const vrtBase = 0x10000
	const vrMask = 0xFFFFFFFF
	const segment = 0x5
	const vaddr = 0x800

	probe := ((uint32(vaddr) >> 12) + segment) & vrMask
	probe = (probe << 3) + vrtBase
	phys.WriteWord(probe, segment<<16|(vaddr>>16))
	phys.WriteWord(probe+4, 0x7000|0x2) // valid, page 2

	tr := memory.NewTranslator(phys)
	real, fault, err := tr.Translate(segment, vaddr, vrtBase, vrMask, true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fault {
		t.Fatal("expected no fault")
	}
	wantReal := uint32(2<<12) | (vaddr & 0xFFF)
	if real != wantReal {
		t.Errorf("real = %#x, want %#x", real, wantReal)
	}

	e1 := phys.ReadWord(probe + 4)
	if e1&0x800 == 0 {
		t.Error("expected M bit set")
	}
	if e1&0x8000 == 0 {
		t.Error("expected R bit set")
	}
}

func TestTranslateNoMatchNoLinkFaults(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	tr := memory.NewTranslator(phys)
	_, fault, err := tr.Translate(0x5, 0x800, 0x10000, 0xFFFFFFFF, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fault {
		t.Fatal("expected page fault on empty VRT")
	}
}

func TestTranslateInvalidEntryFaults(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	const vrtBase = 0x10000
	const segment = 0x5
	const vaddr = 0x800
	probe := ((uint32(vaddr) >> 12) + segment) & 0xFFFFFFFF
	probe = (probe << 3) + vrtBase
	phys.WriteWord(probe, segment<<16|(vaddr>>16))
	phys.WriteWord(probe+4, 0) // flags all clear: invalid

	tr := memory.NewTranslator(phys)
	_, fault, err := tr.Translate(segment, vaddr, vrtBase, 0xFFFFFFFF, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fault {
		t.Fatal("expected page fault on invalid entry")
	}
}

func TestTranslateFollowsLinkChain(t *testing.T) {
	phys := memory.NewPhysical(0x30000)
	const vrtBase = 0x10000
	const segment = 0x5
	const vaddr = 0x800
	probe := ((uint32(vaddr) >> 12) + segment) & 0xFFFFFFFF
	probe = (probe << 3) + vrtBase

	const linkOffset = 0x100
	phys.WriteWord(probe, 0xBAD0) // no match
	phys.WriteWord(probe+4, linkOffset<<16)

	linkProbe := uint32(linkOffset) + vrtBase
	phys.WriteWord(linkProbe, segment<<16|(vaddr>>16))
	phys.WriteWord(linkProbe+4, 0x7000|0x3)

	tr := memory.NewTranslator(phys)
	real, fault, err := tr.Translate(segment, vaddr, vrtBase, 0xFFFFFFFF, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fault {
		t.Fatal("expected chain to resolve without fault")
	}
	if want := uint32(3<<12) | (vaddr & 0xFFF); real != want {
		t.Errorf("real = %#x, want %#x", real, want)
	}
}

func TestTranslateCyclicChainIsHostError(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	const vrtBase = 0x10000
	const segment = 0x5
	const vaddr = 0x800
	probe := ((uint32(vaddr) >> 12) + segment) & 0xFFFFFFFF
	probe = (probe << 3) + vrtBase

	// Entry links to itself forever, and never matches.
	selfLink := probe - vrtBase
	phys.WriteWord(probe, 0xBAD0)
	phys.WriteWord(probe+4, selfLink<<16)

	tr := memory.NewTranslator(phys)
	_, _, err := tr.Translate(segment, vaddr, vrtBase, 0xFFFFFFFF, false, false)
	if err == nil {
		t.Fatal("expected an error for a cyclic VRT chain")
	}
	if !strings.Contains(err.Error(), "link chain") {
		t.Errorf("unexpected error: %v", err)
	}
}
