// parser.go - the line-driving parse loop: routine blocks, mnemonic
// dispatch, and the final fixup/bootstrap pass, per the layout algorithm in
// spec.md §4.3.

package asm

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/otley-vm/wordvm/internal/rom"
)

// Assemble compiles source into a ROM image, or returns a *ParseError for
// the first malformed line.
func Assemble(source string) (*rom.ROM, error) {
	a := newAssembler()
	if err := a.run(source); err != nil {
		return nil, err
	}
	return a.mem, nil
}

func (a *Assembler) run(source string) error {
	sc := bufio.NewScanner(strings.NewReader(source))
	lineNum := 0
	inRoutine := false
	routineName := ""
	routineStart := uint16(0)

	for sc.Scan() {
		lineNum++
		toks := tokenizeLine(sc.Text(), lineNum)
		if len(toks) == 0 {
			continue
		}

		if !inRoutine {
			if toks[0].text != "routine:" {
				return errAt(toks[0], "expected a routine: <name> block at top level")
			}
			if len(toks) < 2 {
				return errAt(toks[0], "routine: requires a name")
			}
			routineName = toks[1].text
			routineStart = a.instrPtr
			a.routines[routineName] = routineStart
			inRoutine = true
			continue
		}

		if toks[0].text == "end" {
			a.lastAddr = routineStart
			a.instrPtr++ // one-word gap between routines, per the layout algorithm
			inRoutine = false
			continue
		}

		if err := a.dispatch(toks); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("asm: scan source: %w", err)
	}
	if inRoutine {
		return &ParseError{Line: lineNum, Message: fmt.Sprintf("routine %q missing end", routineName)}
	}

	if err := a.resolveFixups(); err != nil {
		return err
	}
	a.emitBootstrap()
	return nil
}

func (a *Assembler) dispatch(toks []token) error {
	switch toks[0].text {
	case "load":
		return a.parseLoad(toks)
	case "stor":
		return a.parseStor(toks)
	case "jump":
		return a.parseJumpLike(toks, rom.JmpToAd)
	case "jusr":
		return a.parseJumpLike(toks, rom.JmpToSr)
	case "juie":
		return a.parseJumpLike(toks, rom.JumpIfEq)
	case "juin":
		return a.parseJumpLike(toks, rom.JumpIneq)
	case "rtor":
		a.emit(rom.RetToOr)
		return nil
	case "comp":
		return a.parseComp(toks)
	case "radd":
		return a.parseArith(toks, rom.IncRegV)
	case "rsub":
		return a.parseArith(toks, rom.DecRegV)
	case "rmul":
		return a.parseArith(toks, rom.MulRegV)
	case "rdiv":
		return a.parseArith(toks, rom.DivRegV)
	case "halt":
		a.emit(rom.HaltLoop)
		return nil
	case "noop":
		a.emit(rom.NoOperat)
		return nil
	case "setv":
		return a.parseSetv(toks)
	case "draw":
		return a.parseDraw(toks)
	case "cmov":
		return a.parseCmov(toks)
	case "ctrl":
		return a.parseCtrl(toks)
	case "rptr":
		return errAt(toks[0], "reserved, not yet implemented")
	default:
		return errAt(toks[0], "unknown mnemonic")
	}
}

func (a *Assembler) parseLoad(toks []token) error {
	if len(toks) < 2 {
		return errAt(toks[0], "load requires a register")
	}
	opcode, ok := loadOpcodeFor(toks[1].text)
	if !ok {
		return errAt(toks[1], "expected A, X, Y, or G")
	}
	val, _, err := parseValueOperand(toks, 2)
	if err != nil {
		return err
	}
	a.emit(opcode)
	a.emit(val.value)
	return nil
}

func (a *Assembler) parseStor(toks []token) error {
	if len(toks) < 2 {
		return errAt(toks[0], "stor requires a register")
	}
	opcode, ok := storOpcodeFor(toks[1].text)
	if !ok {
		return errAt(toks[1], "expected A, X, Y, or G")
	}
	addr, _, err := parseAddrOperand(toks, 2)
	if err != nil {
		return err
	}
	a.emit(opcode)
	a.emit(addr)
	return nil
}

func (a *Assembler) parseJumpLike(toks []token, opcode uint16) error {
	if len(toks) < 2 {
		return errAt(toks[0], "expected a routine name")
	}
	a.emit(opcode)
	at := a.emit(0)
	a.fixups = append(a.fixups, fixup{at: at, name: toks[1].text, tok: toks[1]})
	return nil
}

func (a *Assembler) parseComp(toks []token) error {
	op1, next, err := parseValueOperand(toks, 1)
	if err != nil {
		return err
	}
	op2, _, err := parseValueOperand(toks, next)
	if err != nil {
		return err
	}
	a.emit(rom.CompRegs)
	a.emit(op1.value)
	a.emit(op2.value)
	return nil
}

func (a *Assembler) parseArith(toks []token, opcode uint16) error {
	if len(toks) < 2 {
		return errAt(toks[0], "expected a register")
	}
	code, ok := regCode(toks[1].text)
	if !ok {
		return errAt(toks[1], "expected A, X, or Y")
	}
	val, _, err := parseValueOperand(toks, 2)
	if err != nil {
		return err
	}
	a.emit(opcode)
	a.emit(code)
	a.emit(val.value)
	return nil
}

func (a *Assembler) parseSetv(toks []token) error {
	if len(toks) < 4 {
		return errAt(toks[0], `setv requires "<addr> lit <value>"`)
	}
	addr, err := parseLiteral(toks[1])
	if err != nil {
		return err
	}
	if toks[2].text != "lit" {
		return errAt(toks[2], `expected "lit"`)
	}
	val, err := parseLiteral(toks[3])
	if err != nil {
		return err
	}
	a.mem.Words[addr] = val
	return nil
}

func (a *Assembler) parseDraw(toks []token) error {
	if len(toks) < 2 {
		return errAt(toks[0], "expected str or reg")
	}
	switch toks[1].text {
	case "str":
		return a.parseDrawStr(toks)
	case "reg":
		if len(toks) < 3 {
			return errAt(toks[1], "expected a register")
		}
		return a.asmDrawReg(toks[2])
	default:
		return errAt(toks[1], "expected str or reg")
	}
}

func (a *Assembler) parseDrawStr(toks []token) error {
	if len(toks) < 3 {
		return errAt(toks[1], "draw str requires text")
	}
	text := strings.ReplaceAll(toks[2].text, "^", " ")
	color := byte(0x00)
	if len(toks) >= 5 && toks[3].text == "col" {
		color = drawColorByte(toks[4].text)
	}
	a.asmDrawStr(text, color)
	return nil
}

func (a *Assembler) parseCmov(toks []token) error {
	if len(toks) < 2 {
		return errAt(toks[0], "expected up, do, le, ri, or nl")
	}
	return a.asmCmov(toks[1])
}

func (a *Assembler) parseCtrl(toks []token) error {
	if len(toks) < 3 {
		return errAt(toks[0], "expected gpu or cpu followed by a subcommand")
	}
	switch toks[1].text {
	case "gpu":
		return a.asmCtrlGPU(toks[2])
	case "cpu":
		return a.asmCtrlCPU(toks[2])
	default:
		return errAt(toks[1], "expected gpu or cpu")
	}
}
