package memory_test

import (
	"testing"

	"github.com/jdersch/Ridge32/hardware/cpu/registers"
	"github.com/jdersch/Ridge32/hardware/memory"
)

type fakeRegs struct {
	mode registers.Mode
	sr   [16]uint32
}

func (f *fakeRegs) Mode() registers.Mode { return f.mode }
func (f *fakeRegs) SR(i int) uint32      { return f.sr[i] }

func TestKernelModeBypassesTranslation(t *testing.T) {
	phys := memory.NewPhysical(0x10000)
	regs := &fakeRegs{mode: registers.Kernel}
	c := memory.NewController(phys, regs)

	if fault, err := c.WriteWordV(0x100, memory.Data, 0xCAFEBABE); fault || err != nil {
		t.Fatalf("unexpected fault/err: %v %v", fault, err)
	}
	if got := phys.ReadWord(0x100); got != 0xCAFEBABE {
		t.Errorf("word = %#x, want 0xCAFEBABE", got)
	}
}

func TestUserModeTranslatesAgainstDataSegment(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	regs := &fakeRegs{mode: registers.User}
	regs.sr[registers.SR9] = 0x5
	regs.sr[registers.SR12] = 0x10000
	regs.sr[registers.SR13] = 0xFFFFFFFF

	const vaddr = 0x800
	probe := ((uint32(vaddr) >> 12) + 0x5) & 0xFFFFFFFF
	probe = (probe << 3) + 0x10000
	phys.WriteWord(probe, 0x5<<16|(vaddr>>16))
	phys.WriteWord(probe+4, 0x7000|0x2)

	c := memory.NewController(phys, regs)
	v, fault, err := c.ReadWordV(vaddr, memory.Data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fault {
		t.Fatal("expected successful translation")
	}
	_ = v

	e1 := phys.ReadWord(probe + 4)
	if e1&0x8000 == 0 {
		t.Error("expected R bit set by virtual read")
	}
	if e1&0x800 != 0 {
		t.Error("read must not set M bit")
	}
}

func TestUserModeFaultsOnEmptyVRT(t *testing.T) {
	phys := memory.NewPhysical(0x20000)
	regs := &fakeRegs{mode: registers.User}
	regs.sr[registers.SR9] = 0x5
	regs.sr[registers.SR12] = 0x10000
	regs.sr[registers.SR13] = 0xFFFFFFFF

	c := memory.NewController(phys, regs)
	_, fault, err := c.ReadWordV(0x800, memory.Data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fault {
		t.Fatal("expected page fault")
	}
}
