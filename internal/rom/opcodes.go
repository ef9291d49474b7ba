// opcodes.go - the shared word vocabulary of the ROM: CPU opcodes, GPU
// opcodes, and the register identifiers used to thread both.

package rom

// CPU opcodes. All live in the low byte; the high byte is always 0x00.
const (
	NoOperat = 0x0000 // NO_OPERAT - advance instr_ptr only
	LoadAReg = 0x00A1 // LOAD_AREG value - A <- value
	LoadBReg = 0x00A2 // LOAD_BREG - reserved synonym for LoadXReg, see LOAD_XREG
	LoadXReg = 0x0002 // LOAD_XREG value - X <- value
	LoadYReg = 0x0003 // LOAD_YREG value - Y <- value
	LoadGReg = 0x00AF // LOAD_GREG value - G <- value
	StorAReg = 0x0011 // STOR_AREG addr - ROM[addr] <- A
	StorXReg = 0x0012 // STOR_XREG addr - ROM[addr] <- X
	StorYReg = 0x0013 // STOR_YREG addr - ROM[addr] <- Y
	StorGReg = 0x00BF // STOR_GREG addr - ROM[addr] <- G
	JmpToAd  = 0x0020 // JMP_TO_AD addr - instr_ptr <- addr
	JmpToSr  = 0x0021 // JMP_TO_SR addr - push instr_ptr, instr_ptr <- addr
	JumpIfEq = 0x0022 // JUMP_IFEQ addr - branch if eq, clearing eq
	JumpIneq = 0x0023 // JUMP_INEQ addr - branch if not eq
	RetToOr  = 0x0031 // RET_TO_OR - pop instr_ptr, advance once more
	CompRegs = 0x0004 // COMP_REGS v1 v2 - eq <- resolve(v1) == resolve(v2)
	IncRegV  = 0x0042 // INC_REG_V reg value - reg += value
	DecRegV  = 0x0043 // DEC_REG_V reg value - reg -= value
	MulRegV  = 0x0044 // MUL_REG_V reg value - reg *= value
	DivRegV  = 0x0045 // DIV_REG_V reg value - reg /= value
	HaltLoop = 0x000F // HALT_LOOP - halt <- true
)

// Register identifiers, the ASCII code points of the register letters.
// Used both as the LOAD/STOR mnemonic selector at assemble time and as the
// runtime operand encoding for COMP_REGS and the arithmetic opcodes.
const (
	RegA = 0x0041
	RegX = 0x0058
	RegY = 0x0059
)

// GPU opcodes occupy 0xA000-0xA0FF, disjoint from the CPU opcode space by
// high-nibble assignment.
const (
	GPUNoOp     = 0xA000 // GPU_NO_OPERAT - advance buf_ptr
	GPUDrawLett = 0xA001 // GPU_DRAW_LETT - enter draw mode (compile-time text)
	GPUDrawValu = 0xA0A1 // supplemented: enter draw mode (runtime register value)
	GPUUpdate   = 0xA002 // GPU_UPDATE - render framebuffer
	GPUResetPtr = 0xA0A2 // GPU_RESET_PTR - buf_ptr <- 0x0300
	GPUResFBuf  = 0xA0A3 // GPU_RES_F_BUF - clear framebuffer, reset cursor
	GPUMvCUp    = 0xA0B0 // GPU_MV_C_UP - cursor.y--
	GPUMvCDown  = 0xA0B1 // GPU_MV_C_DOWN - cursor.y++
	GPUMvCLeft  = 0xA0B2 // GPU_MV_C_LEFT - cursor.x--
	GPUMvCRight = 0xA0B3 // GPU_MV_C_RIGH - cursor.x++
	GPUNewLine  = 0xA0B4 // GPU_NEW_LINE - cursor.x <- 0, cursor.y++

	// DrawModeEscape is the low-byte value that, while in draw mode, exits
	// draw mode instead of being placed as a character.
	DrawModeEscape = 0x60
)
