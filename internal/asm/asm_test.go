package asm

import (
	"testing"

	"github.com/otley-vm/wordvm/internal/rom"
	"github.com/otley-vm/wordvm/internal/vmcpu"
	"github.com/otley-vm/wordvm/internal/vmgpu"
)

func TestRoundTripBootstrapReachesEntry(t *testing.T) {
	src := `
routine: entry
    load A lit 0x0042
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	entryAddr := r.Words[rom.BootstrapOperandAddr]

	cpu := vmcpu.New(r, 1000)
	if err := cpu.Step(); err != nil { // JMP_TO_SR
		t.Fatalf("Step 1: %v", err)
	}
	if cpu.InstrPtr != entryAddr {
		t.Fatalf("InstrPtr = %#04x, want entry %#04x", cpu.InstrPtr, entryAddr)
	}
}

func TestSourceScenarioLoadAndHalt(t *testing.T) {
	src := `
routine: entry
    load A lit 0x0042
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cpu := vmcpu.New(r, 1000)
	for i := 0; i < 10 && !cpu.Halt; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !cpu.Halt {
		t.Fatalf("expected halt")
	}
	if cpu.A != 0x0042 {
		t.Fatalf("A = %#04x, want 0x0042", cpu.A)
	}
}

func TestHexOperandResolvesToCharacterCodePoint(t *testing.T) {
	src := `
routine: entry
    load A hex A
    stor A hex B
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cpu := vmcpu.New(r, 1000)
	for i := 0; i < 10 && !cpu.Halt; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !cpu.Halt {
		t.Fatalf("expected halt")
	}
	if cpu.A != 0x0041 {
		t.Fatalf("A = %#04x, want 0x0041 ('A''s code point via hex operand)", cpu.A)
	}
	if r.Words[0x0042] != 0x0041 {
		t.Fatalf("ROM[0x0042] = %#04x, want 0x0041 (stored at 'B''s code point address)", r.Words[0x0042])
	}
}

func TestSourceScenarioDrawStrRendersHi(t *testing.T) {
	src := `
routine: entry
    draw str Hi
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var stores []struct {
		addr uint16
		val  uint16
	}
	cpu := vmcpu.New(r, 1000)
	cpu.OnStore = func(addr, val uint16) error {
		stores = append(stores, struct {
			addr uint16
			val  uint16
		}{addr, val})
		return nil
	}

	for i := 0; i < 200 && !cpu.Halt; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !cpu.Halt {
		t.Fatalf("expected halt")
	}

	gpu := vmgpu.New("", 1000, nil)
	for _, s := range stores {
		if s.addr >= rom.GPUBufferStart && s.addr <= rom.GPUBufferEnd {
			r.Words[s.addr] = s.val
		}
	}
	sawUpdate := false
	for i := 0; i < len(stores); i++ {
		word := r.Words[gpu.BufPtr]
		if gpu.DrawMode {
			gpu.FB.PlaceAndAdvance(byte(word&0x00FF), vmgpu.ColorFromByte(byte(word>>8)))
			if byte(word&0x00FF) == rom.DrawModeEscape {
				gpu.DrawMode = false
			}
		} else if word == rom.GPUDrawLett {
			gpu.DrawMode = true
		} else if word == rom.GPUUpdate {
			sawUpdate = true
		}
		gpu.BufPtr++
	}

	if gpu.FB.Cells[0][0].Char != 'H' {
		t.Fatalf("cell(0,0) = %q, want 'H'", gpu.FB.Cells[0][0].Char)
	}
	if gpu.FB.Cells[1][0].Char != 'i' {
		t.Fatalf("cell(1,0) = %q, want 'i'", gpu.FB.Cells[1][0].Char)
	}
	if !sawUpdate {
		t.Fatalf("expected a GPU_UPDATE word among the stored commands")
	}
}

func TestSourceScenarioCountdownLoop(t *testing.T) {
	src := `
routine: loop
    rsub X num 1
    comp reg X lit 0x0000
    juin loop
    halt
end
routine: entry
    load X lit 0x0005
    jump loop
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cpu := vmcpu.New(r, 1000)
	for i := 0; i < 1000 && !cpu.Halt; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !cpu.Halt {
		t.Fatalf("expected halt")
	}
	if cpu.X != 0 {
		t.Fatalf("X = %#04x, want 0", cpu.X)
	}
}

func TestSourceScenarioSubroutineCallSetsAOnReturn(t *testing.T) {
	src := `
routine: sub
    load A lit 0x0001
    rtor
end
routine: entry
    jusr sub
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cpu := vmcpu.New(r, 1000)
	for i := 0; i < 20 && !cpu.Halt; i++ {
		if err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !cpu.Halt {
		t.Fatalf("expected halt")
	}
	if cpu.A != 1 {
		t.Fatalf("A = %#04x, want 1", cpu.A)
	}
	if cpu.StackPtr != 0 {
		t.Fatalf("StackPtr = %d, want 0 after matched call/return", cpu.StackPtr)
	}
}

func TestBootstrapAddressesLastDefinedRoutine(t *testing.T) {
	src := `
routine: first
    noop
end
routine: second
    noop
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if r.Words[rom.BootstrapAddr] != rom.JmpToSr {
		t.Fatalf("bootstrap opcode = %#04x, want JMP_TO_SR", r.Words[rom.BootstrapAddr])
	}
	wantEntry := rom.ProgramStart + 2 + 2 // first routine (1 noop word + 1 gap word) past it
	if r.Words[rom.BootstrapOperandAddr] != wantEntry {
		t.Fatalf("bootstrap target = %#04x, want %#04x", r.Words[rom.BootstrapOperandAddr], wantEntry)
	}
}

func TestUnknownMnemonicIsParseError(t *testing.T) {
	src := `
routine: entry
    bogus A lit 1
end
`
	_, err := Assemble(src)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("err = %T, want *ParseError", err)
	}
}

func TestUndefinedRoutineReferenceIsParseError(t *testing.T) {
	src := `
routine: entry
    jump nowhere
    halt
end
`
	_, err := Assemble(src)
	if err == nil {
		t.Fatalf("expected a parse error for an undefined routine reference")
	}
}

func TestRptrIsRejected(t *testing.T) {
	src := `
routine: entry
    rptr
end
`
	_, err := Assemble(src)
	if err == nil {
		t.Fatalf("expected rptr to be rejected")
	}
}

func TestSetvPokesLiteralWithoutTouchingInstrPtr(t *testing.T) {
	src := `
routine: entry
    setv 0x0500 lit 0x00FF
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if r.Words[0x0500] != 0x00FF {
		t.Fatalf("ROM[0x0500] = %#04x, want 0x00FF", r.Words[0x0500])
	}
}

func TestCmovPokesGPUBufferDirectly(t *testing.T) {
	src := `
routine: entry
    cmov nl
    halt
end
`
	r, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if r.Words[rom.GPUBufferStart] != rom.GPUNewLine {
		t.Fatalf("GPU buffer[0] = %#04x, want GPU_NEW_LINE", r.Words[rom.GPUBufferStart])
	}
	if r.Words[rom.GPUBufferStart+1] != rom.GPUUpdate {
		t.Fatalf("GPU buffer[1] = %#04x, want GPU_UPDATE", r.Words[rom.GPUBufferStart+1])
	}
}

func TestMissingEndIsParseError(t *testing.T) {
	src := `
routine: entry
    halt
`
	_, err := Assemble(src)
	if err == nil {
		t.Fatalf("expected an error for a routine missing end")
	}
}
