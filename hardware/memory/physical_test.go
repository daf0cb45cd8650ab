package memory_test

import (
	"testing"

	"github.com/jdersch/Ridge32/hardware/memory"
)

func TestWordIsBigEndian(t *testing.T) {
	p := memory.NewPhysical(16)
	p.WriteWord(0, 0x01020304)
	if got := p.ReadByte(0); got != 0x01 {
		t.Errorf("byte 0 = %#x, want 0x01", got)
	}
	if got := p.ReadByte(3); got != 0x04 {
		t.Errorf("byte 3 = %#x, want 0x04", got)
	}
	if got := p.ReadWord(0); got != 0x01020304 {
		t.Errorf("word = %#x, want 0x01020304", got)
	}
}

func TestOutOfRangeAccessIsNotAFault(t *testing.T) {
	p := memory.NewPhysical(4)
	if got := p.ReadByte(1000); got != 0 {
		t.Errorf("out-of-range read = %#x, want 0", got)
	}
	p.WriteByte(1000, 0xFF) // must not panic
}

func TestLoadSeedsImage(t *testing.T) {
	p := memory.NewPhysical(8)
	p.Load(2, []byte{0xAA, 0xBB})
	if got := p.ReadByte(2); got != 0xAA {
		t.Errorf("byte 2 = %#x, want 0xAA", got)
	}
	if got := p.ReadByte(3); got != 0xBB {
		t.Errorf("byte 3 = %#x, want 0xBB", got)
	}
}
