// assembler.go - the in-progress ROM image and routine-resolution state for
// one source file. Writes words directly into the final ROM cells as it
// parses, tracking forward routine references as fixups resolved once the
// whole file has been walked - a direct-write simplification of spec.md
// §4.3's "build per-routine buffers, then copy" description that produces
// the identical final ROM.

package asm

import (
	"fmt"

	"github.com/otley-vm/wordvm/internal/rom"
	"github.com/otley-vm/wordvm/internal/vmgpu"
)

// entrySentinel is the fixup target name for `ctrl cpu reset`, which always
// means "jump back to the entry routine" - the same address the bootstrap
// pair at 0x1000 uses.
const entrySentinel = "\x00entry"

type fixup struct {
	at   uint16 // ROM address of the operand word to patch
	name string // routine name to resolve
	tok  token  // for the diagnostic if resolution fails
}

// Assembler holds one in-progress assembly.
type Assembler struct {
	mem      *rom.ROM
	instrPtr uint16
	gpuPtr   uint16

	routines map[string]uint16
	fixups   []fixup
	lastAddr uint16
}

func newAssembler() *Assembler {
	return &Assembler{
		mem:      rom.New(),
		instrPtr: rom.ProgramStart + 2, // 0x1000/0x1001 reserved for the bootstrap pair
		gpuPtr:   rom.GPUBufferStart,
		routines: make(map[string]uint16),
	}
}

func (a *Assembler) emit(w uint16) uint16 {
	addr := a.instrPtr
	a.mem.Words[addr] = w
	a.instrPtr++
	return addr
}

func (a *Assembler) advanceGPUPtr() {
	a.gpuPtr++
	if a.gpuPtr > rom.GPUBufferEnd {
		a.gpuPtr = rom.GPUBufferStart
	}
}

// pokeGPU writes directly into the GPU buffer at assemble time, bypassing
// the CPU entirely - used by `cmov`, whose cursor moves are placed words,
// not CPU instructions.
func (a *Assembler) pokeGPU(word uint16) {
	a.mem.Words[a.gpuPtr] = word
	a.advanceGPUPtr()
}

// emitGroup emits a (LOAD_GREG word, STOR_GREG gpu_ptr) CPU instruction
// pair - the unit `draw str`/`draw reg` build their GPU buffer writes out
// of, since those mnemonics route through the CPU rather than poking the
// buffer directly.
func (a *Assembler) emitGroup(word uint16) {
	a.emit(rom.LoadGReg)
	a.emit(word)
	a.emit(rom.StorGReg)
	a.emit(a.gpuPtr)
	a.advanceGPUPtr()
}

func loadOpcodeFor(reg string) (uint16, bool) {
	switch reg {
	case "A":
		return rom.LoadAReg, true
	case "X":
		return rom.LoadXReg, true
	case "Y":
		return rom.LoadYReg, true
	case "G":
		return rom.LoadGReg, true
	}
	return 0, false
}

func storOpcodeFor(reg string) (uint16, bool) {
	switch reg {
	case "A":
		return rom.StorAReg, true
	case "X":
		return rom.StorXReg, true
	case "Y":
		return rom.StorYReg, true
	case "G":
		return rom.StorGReg, true
	}
	return 0, false
}

func storOpcodeForCode(code uint16) uint16 {
	switch code {
	case rom.RegA:
		return rom.StorAReg
	case rom.RegX:
		return rom.StorXReg
	case rom.RegY:
		return rom.StorYReg
	default:
		return rom.StorGReg
	}
}

// asmDrawStr expands `draw str` into the CPU instruction groups spec.md
// §4.3 describes, plus the initial GPU_DRAW_LETT entry the prose omits -
// without it the GPU never leaves idle mode and nothing is ever drawn.
func (a *Assembler) asmDrawStr(text string, colorByte byte) {
	a.emitGroup(rom.GPUDrawLett)
	for i := 0; i < len(text); i++ {
		charWord := uint16(colorByte)<<8 | uint16(text[i])
		a.emitGroup(charWord)
	}
	a.emitGroup(0x0060)
	a.emitGroup(uint16(rom.GPUUpdate))
}

// asmDrawReg expands `draw reg <A|X|Y>`: enters draw mode via the
// dedicated GPU_DRAW_VALU opcode (the GPU treats it identically to
// GPU_DRAW_LETT), then streams the register's own runtime value as the
// character word instead of a compile-time literal.
func (a *Assembler) asmDrawReg(regTok token) error {
	code, ok := regCode(regTok.text)
	if !ok {
		return errAt(regTok, "expected A, X, or Y")
	}

	a.emitGroup(uint16(rom.GPUDrawValu))

	a.emit(storOpcodeForCode(code))
	a.emit(a.gpuPtr)
	a.advanceGPUPtr()

	a.emitGroup(0x0060)
	a.emitGroup(uint16(rom.GPUUpdate))
	return nil
}

// asmCmov pokes a cursor-move opcode followed by GPU_UPDATE directly into
// the GPU buffer, matching original_source: cursor moves are assemble-time
// placed words, never CPU instructions.
func (a *Assembler) asmCmov(dir token) error {
	var op uint16
	switch dir.text {
	case "up":
		op = uint16(rom.GPUMvCUp)
	case "do":
		op = uint16(rom.GPUMvCDown)
	case "le":
		op = uint16(rom.GPUMvCLeft)
	case "ri":
		op = uint16(rom.GPUMvCRight)
	case "nl":
		op = uint16(rom.GPUNewLine)
	default:
		return errAt(dir, "expected up, do, le, ri, or nl")
	}
	a.pokeGPU(op)
	a.pokeGPU(uint16(rom.GPUUpdate))
	return nil
}

func (a *Assembler) asmCtrlGPU(sub token) error {
	var op uint16
	switch sub.text {
	case "clear":
		op = uint16(rom.GPUResFBuf)
	case "reset":
		op = uint16(rom.GPUResetPtr)
	case "update":
		op = uint16(rom.GPUUpdate)
	default:
		return errAt(sub, "expected clear, reset, or update")
	}
	a.emitGroup(op)
	return nil
}

func (a *Assembler) asmCtrlCPU(sub token) error {
	switch sub.text {
	case "reset":
		a.emit(rom.JmpToAd)
		at := a.emit(0)
		a.fixups = append(a.fixups, fixup{at: at, name: entrySentinel, tok: sub})
	case "halt":
		a.emit(rom.HaltLoop)
	default:
		return errAt(sub, "expected reset or halt")
	}
	return nil
}

func (a *Assembler) resolveFixups() error {
	a.routines[entrySentinel] = a.lastAddr
	for _, f := range a.fixups {
		addr, ok := a.routines[f.name]
		if !ok {
			return errAt(f.tok, fmt.Sprintf("undefined routine %q", f.name))
		}
		a.mem.Words[f.at] = addr
	}
	return nil
}

func (a *Assembler) emitBootstrap() {
	a.mem.Words[rom.BootstrapAddr] = rom.JmpToSr
	a.mem.Words[rom.BootstrapOperandAddr] = a.lastAddr
}

// drawColorByte resolves a `draw str ... col <name>` color name, defaulting
// to white - shared with internal/vmgpu's own palette so the assembler and
// the GPU agree on what each color name means.
func drawColorByte(name string) byte {
	return vmgpu.ColorByte(name)
}
