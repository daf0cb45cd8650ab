package instructions_test

import (
	"testing"

	"github.com/jdersch/Ridge32/hardware/cpu/instructions"
)

type fakeMem struct {
	b []byte
}

func (m *fakeMem) ReadHalfword(addr uint32) uint16 {
	return uint16(m.b[addr])<<8 | uint16(m.b[addr+1])
}

func (m *fakeMem) ReadWord(addr uint32) uint32 {
	return uint32(m.ReadHalfword(addr))<<16 | uint32(m.ReadHalfword(addr+2))
}

func TestDecodeMoveIsRegisterFormat(t *testing.T) {
	mem := &fakeMem{b: []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}}
	inst := instructions.Decode(mem, 0)
	if inst.Op != instructions.OpMove {
		t.Fatalf("Op = %v, want OpMove", inst.Op)
	}
	if inst.Rx != 1 || inst.Ry != 0 {
		t.Errorf("Rx,Ry = %d,%d want 1,0", inst.Rx, inst.Ry)
	}
	if inst.Length != 2 {
		t.Errorf("Length = %d, want 2", inst.Length)
	}
}

func TestDecodeMovei(t *testing.T) {
	mem := &fakeMem{b: []byte{0x11, 0x23, 0, 0, 0, 0, 0, 0}}
	inst := instructions.Decode(mem, 0)
	if inst.Op != instructions.OpMovei {
		t.Fatalf("Op = %v, want OpMovei", inst.Op)
	}
	if inst.Rx != 2 || inst.Ry != 3 {
		t.Errorf("Rx,Ry = %d,%d want 2,3", inst.Rx, inst.Ry)
	}
}

func TestDecodeLongBranchMatchesSpecVector(t *testing.T) {
	mem := &fakeMem{b: make([]byte, 0x1010)}
	mem.b[0x1000] = 0x92
	mem.b[0x1001] = 0x12
	mem.b[0x1002] = 0x00
	mem.b[0x1003] = 0x00
	mem.b[0x1004] = 0x00
	mem.b[0x1005] = 0x10

	inst := instructions.Decode(mem, 0x1000)
	if inst.Op != instructions.OpBranch || inst.Cond != instructions.CondEQ {
		t.Fatalf("Op/Cond = %v/%v, want OpBranch/CondEQ", inst.Op, inst.Cond)
	}
	if inst.Length != 6 {
		t.Errorf("Length = %d, want 6", inst.Length)
	}
	if inst.Rx != 1 || inst.Ry != 2 {
		t.Errorf("Rx,Ry = %d,%d want 1,2", inst.Rx, inst.Ry)
	}
	want := uint32(0x1000+0x10) &^ 1
	if inst.BranchAddress != want {
		t.Errorf("BranchAddress = %#x, want %#x", inst.BranchAddress, want)
	}
}

func TestDecodeShortBranchIsFourBytes(t *testing.T) {
	mem := &fakeMem{b: make([]byte, 0x2010)}
	mem.b[0x2000] = 0x82
	mem.b[0x2001] = 0x12
	mem.b[0x2002] = 0x00
	mem.b[0x2003] = 0x08
	inst := instructions.Decode(mem, 0x2000)
	if inst.Length != 4 {
		t.Errorf("Length = %d, want 4", inst.Length)
	}
	want := uint32(0x2000+8) &^ 1
	if inst.BranchAddress != want {
		t.Errorf("BranchAddress = %#x, want %#x", inst.BranchAddress, want)
	}
}

func TestDecodeUnknownOpcodeIsIllegal(t *testing.T) {
	mem := &fakeMem{b: []byte{0x48, 0x00, 0, 0, 0, 0, 0, 0}}
	inst := instructions.Decode(mem, 0)
	if inst.Op != instructions.OpIllegal {
		t.Errorf("Op = %v, want OpIllegal", inst.Op)
	}
}

func TestImmediateValueSignExtends(t *testing.T) {
	inst := instructions.Instruction{Ry: 0xF}
	if inst.ImmediateValue() != -1 {
		t.Errorf("ImmediateValue() = %d, want -1", inst.ImmediateValue())
	}
	inst = instructions.Instruction{Ry: 0x3}
	if inst.ImmediateValue() != 3 {
		t.Errorf("ImmediateValue() = %d, want 3", inst.ImmediateValue())
	}
}
