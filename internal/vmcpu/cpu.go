// cpu.go - the CPU core: register file, fetch/decode/execute loop, and the
// subroutine/comparison/arithmetic semantics of the instruction set.

package vmcpu

import (
	"context"
	"time"

	"github.com/otley-vm/wordvm/internal/rom"
)

// StoreFunc is called after a STOR_* opcode updates the in-memory ROM word,
// so the caller can flush it to wherever the GPU process reads from (a disk
// file in the two-process deployment; in the in-process harness, a
// mutex-guarded write to the *rom.ROM the GPU reads from).
type StoreFunc func(addr uint16, value uint16) error

// CPU holds the register file, pointers, flags, and the private call stack.
type CPU struct {
	Mem *rom.ROM

	InstrPtr uint16
	StackPtr uint8
	callRAM  [rom.CallStackDepth]uint16

	A, X, Y, G uint16
	Halt       bool
	Eq         bool

	ClockHz int
	OnStore StoreFunc
}

// New creates a CPU over mem with instr_ptr at the program area start.
func New(mem *rom.ROM, clockHz int) *CPU {
	return &CPU{
		Mem:      mem,
		InstrPtr: rom.ProgramStart,
		ClockHz:  clockHz,
	}
}

func (c *CPU) advanceInstrPtr() {
	if c.InstrPtr == rom.ProgramEnd {
		c.InstrPtr = rom.ProgramStart
		return
	}
	c.InstrPtr++
}

func (c *CPU) incStackPtr() {
	if c.StackPtr == 0xFF {
		c.StackPtr = 0x00
		return
	}
	c.StackPtr++
}

func (c *CPU) decStackPtr() {
	if c.StackPtr == 0x00 {
		c.StackPtr = 0xFF
		return
	}
	c.StackPtr--
}

// fetch reads the word at instr_ptr and advances instr_ptr, with wrap.
// Operand reads reuse this same helper.
func (c *CPU) fetch() uint16 {
	w := c.Mem.Words[c.InstrPtr]
	c.advanceInstrPtr()
	return w
}

func (c *CPU) store(addr uint16, value uint16) error {
	c.Mem.Words[addr] = value
	if c.OnStore != nil {
		return c.OnStore(addr, value)
	}
	return nil
}

// resolve maps a COMP_REGS operand to its effective value: the three
// register-id ASCII codes resolve to the live register, anything else is
// used as a literal. This mirrors the original assembler's encoding and,
// as a consequence, a literal that happens to equal 0x0041/0x0058/0x0059
// is read back as the corresponding register rather than as itself - an
// accepted quirk of the wire format, not a bug in this implementation.
func (c *CPU) resolve(v uint16) uint16 {
	switch v {
	case rom.RegA:
		return c.A
	case rom.RegX:
		return c.X
	case rom.RegY:
		return c.Y
	default:
		return v
	}
}

func (c *CPU) regPtr(id uint16) *uint16 {
	switch id {
	case rom.RegA:
		return &c.A
	case rom.RegX:
		return &c.X
	case rom.RegY:
		return &c.Y
	default:
		return nil
	}
}

// Step executes exactly one fetch/decode/execute cycle. Unknown opcode
// values are tolerated as a no-op, per the error-handling design.
func (c *CPU) Step() error {
	word := c.fetch()

	switch word {
	case rom.NoOperat:
		// advance only, already done by fetch

	case rom.LoadAReg:
		c.A = c.fetch()
	case rom.LoadXReg, rom.LoadBReg:
		c.X = c.fetch()
	case rom.LoadYReg:
		c.Y = c.fetch()
	case rom.LoadGReg:
		c.G = c.fetch()

	case rom.StorAReg:
		addr := c.fetch()
		return c.store(addr, c.A)
	case rom.StorXReg:
		addr := c.fetch()
		return c.store(addr, c.X)
	case rom.StorYReg:
		addr := c.fetch()
		return c.store(addr, c.Y)
	case rom.StorGReg:
		addr := c.fetch()
		return c.store(addr, c.G)

	case rom.JmpToAd:
		c.InstrPtr = c.fetch()

	case rom.JmpToSr:
		// Record the operand's own address; RET_TO_OR advances once past
		// it, so execution resumes at the instruction after the call pair.
		operandAddr := c.InstrPtr
		target := c.fetch()
		c.callRAM[c.StackPtr] = operandAddr
		c.incStackPtr()
		c.InstrPtr = target

	case rom.RetToOr:
		c.decStackPtr()
		c.InstrPtr = c.callRAM[c.StackPtr]
		c.advanceInstrPtr()

	case rom.JumpIfEq:
		target := c.fetch()
		if c.Eq {
			c.InstrPtr = target
			c.Eq = false
		}

	case rom.JumpIneq:
		target := c.fetch()
		if !c.Eq {
			c.InstrPtr = target
		}

	case rom.CompRegs:
		v1 := c.fetch()
		v2 := c.fetch()
		c.Eq = c.resolve(v1) == c.resolve(v2)

	case rom.IncRegV:
		id := c.fetch()
		v := c.resolve(c.fetch())
		if r := c.regPtr(id); r != nil {
			*r += v
		}

	case rom.DecRegV:
		id := c.fetch()
		v := c.resolve(c.fetch())
		if r := c.regPtr(id); r != nil {
			*r -= v
		}

	case rom.MulRegV:
		id := c.fetch()
		v := c.resolve(c.fetch())
		if r := c.regPtr(id); r != nil {
			*r *= v
		}

	case rom.DivRegV:
		id := c.fetch()
		v := c.resolve(c.fetch())
		if r := c.regPtr(id); r != nil && v != 0 {
			*r /= v
		}

	case rom.HaltLoop:
		c.Halt = true

	default:
		// Unknown opcode: tolerated as a no-op, per the error-handling design.
	}

	return nil
}

// pace returns how long the CPU sleeps between fetch cycles.
func (c *CPU) pace() time.Duration {
	hz := c.ClockHz
	if hz <= 0 {
		hz = 1
	}
	return time.Duration(1_000_000/hz) * time.Microsecond
}

// Run steps the CPU until it halts, the context is cancelled, or Step
// returns an error (a ROM flush failure).
func (c *CPU) Run(ctx context.Context) error {
	for !c.Halt {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Step(); err != nil {
			return err
		}
		time.Sleep(c.pace())
	}
	return nil
}
