package registers_test

import (
	"testing"

	"github.com/jdersch/Ridge32/hardware/cpu/registers"
)

func TestResetEstablishesPowerOnState(t *testing.T) {
	var f registers.File
	f.R[3] = 0xDEADBEEF
	f.Reset(1048576)

	if f.PC != registers.ResetVector {
		t.Errorf("PC = %#x, want %#x", f.PC, registers.ResetVector)
	}
	if f.Mode != registers.Kernel {
		t.Errorf("Mode = %v, want Kernel", f.Mode)
	}
	if f.SR[registers.SR11] != 1 {
		t.Errorf("SR11 = %#x, want 1", f.SR[registers.SR11])
	}
	if f.SR[registers.SR14] != 1 {
		t.Errorf("SR14 = %#x, want 1", f.SR[registers.SR14])
	}
	if f.SR[registers.SR2] != 1048576 {
		t.Errorf("SR2 = %d, want 1048576", f.SR[registers.SR2])
	}
	if f.R[3] != 0 {
		t.Errorf("R3 = %#x, want 0", f.R[3])
	}
}

func TestPairWrapsAtSixteen(t *testing.T) {
	var f registers.File
	f.SetPair(15, 0x0102030405060708)
	if f.R[15] != 0x01020304 {
		t.Errorf("R15 = %#x, want 0x01020304", f.R[15])
	}
	if f.R[0] != 0x05060708 {
		t.Errorf("R0 = %#x, want 0x05060708", f.R[0])
	}
	if got := f.Pair(15); got != 0x0102030405060708 {
		t.Errorf("Pair(15) = %#x, want 0x0102030405060708", got)
	}
}

func TestPrivilegedUserModeRequiresPPBit(t *testing.T) {
	var f registers.File
	f.Mode = registers.User
	if f.Privileged() {
		t.Fatal("expected unprivileged user mode")
	}
	f.SR[registers.SR10] = registers.PrivilegedBit
	if !f.Privileged() {
		t.Fatal("expected privileged user mode once PP bit set")
	}
}
