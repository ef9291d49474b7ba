// gpu.go - the GPU's own fetch/decode loop: polls the shared ROM file for
// commands written into the GPU buffer region, drives the Framebuffer
// through them, and periodically hands frames to a Backend. Grounded in the
// teacher's device Run loops (poll -> decode -> act on a fixed tick), but
// reading from a shared on-disk ROM instead of an in-process bus, per
// spec.md's two-process model.

package vmgpu

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/otley-vm/wordvm/internal/procutil"
	"github.com/otley-vm/wordvm/internal/rom"
)

const (
	// redrawEveryTicks is how often the GPU forces a RenderFrame even
	// without a GPU_UPDATE, so the cursor keeps blinking.
	redrawEveryTicks = 100
	// blinkEveryRedraws toggles cursor visibility every N forced redraws.
	blinkEveryRedraws = 10
)

// ReadWordFunc reads a single ROM word, the GPU's only way of observing
// what the CPU has written. The two-process deployment rereads it from
// RomPath each tick; internal/vmharness's in-process combined mode instead
// wires this to a mutex-guarded read of a *rom.ROM already shared with the
// CPU, skipping the disk entirely.
type ReadWordFunc func(addr uint16) (uint16, error)

// GPU is the per-process GPU state machine. By default it rereads a single
// word from disk each tick, the way spec.md's two cooperating processes
// communicate; ReadWord can be overridden to read from shared memory
// instead (see internal/vmharness).
type GPU struct {
	RomPath  string
	ClockHz  int
	Backend  Backend
	ReadWord ReadWordFunc

	BufPtr   uint16
	DrawMode bool
	FB       *Framebuffer

	tickCount     int
	redrawCount   int
	cursorVisible bool
	stopRequested atomic.Bool
}

// New returns a GPU ready to poll RomPath, rendering through backend.
func New(romPath string, clockHz int, backend Backend) *GPU {
	return &GPU{
		RomPath:       romPath,
		ClockHz:       clockHz,
		Backend:       backend,
		BufPtr:        rom.GPUBufferStart,
		FB:            NewFramebuffer(),
		cursorVisible: true,
	}
}

// RequestStop asks Run to return at the next tick boundary without going
// through the backend's PollQuit/kill-parent path - the combined-mode
// harness uses this to stop the GPU loop once the CPU it shares a ROM with
// has halted.
func (g *GPU) RequestStop() {
	g.stopRequested.Store(true)
}

func (g *GPU) advanceBufPtr() {
	g.BufPtr++
	if g.BufPtr > rom.GPUBufferEnd {
		g.BufPtr = rom.GPUBufferStart
	}
}

func (g *GPU) pace() time.Duration {
	hz := g.ClockHz
	if hz <= 0 {
		hz = 1
	}
	return time.Duration(1_000_000/hz) * time.Microsecond
}

// Tick reads the word at BufPtr and decodes it, either as a draw-mode
// character or as an idle-mode GPU opcode.
func (g *GPU) Tick() error {
	read := g.ReadWord
	if read == nil {
		read = func(addr uint16) (uint16, error) { return rom.ReadWordAt(g.RomPath, addr) }
	}
	word, err := read(g.BufPtr)
	if err != nil {
		return err
	}

	if g.DrawMode {
		g.stepDrawMode(word)
		return nil
	}
	return g.stepIdleMode(word)
}

func (g *GPU) stepDrawMode(word uint16) {
	low := byte(word & 0x00FF)
	if low == rom.DrawModeEscape {
		g.DrawMode = false
		g.advanceBufPtr()
		return
	}
	high := byte((word >> 8) & 0x00FF)
	g.FB.PlaceAndAdvance(low, ColorFromByte(high))
	g.advanceBufPtr()
}

func (g *GPU) stepIdleMode(word uint16) error {
	switch word {
	case rom.GPUNoOp:
		g.advanceBufPtr()
	case rom.GPUDrawLett, rom.GPUDrawValu:
		g.DrawMode = true
		g.advanceBufPtr()
	case rom.GPUUpdate:
		g.advanceBufPtr()
		return g.renderFrame()
	case rom.GPUResetPtr:
		g.BufPtr = rom.GPUBufferStart
	case rom.GPUResFBuf:
		g.FB.Reset(Black)
		g.advanceBufPtr()
	case rom.GPUMvCUp:
		g.FB.MoveUp()
		g.advanceBufPtr()
	case rom.GPUMvCDown:
		g.FB.MoveDown()
		g.advanceBufPtr()
	case rom.GPUMvCLeft:
		g.FB.MoveLeft()
		g.advanceBufPtr()
	case rom.GPUMvCRight:
		g.FB.MoveRight()
		g.advanceBufPtr()
	case rom.GPUNewLine:
		g.FB.NewLine()
		g.advanceBufPtr()
	default:
		g.advanceBufPtr()
	}
	return nil
}

func (g *GPU) renderFrame() error {
	if g.Backend == nil {
		return nil
	}
	return g.Backend.RenderFrame(g.FB, g.cursorVisible)
}

// Run drives Tick in a loop at ClockHz until the backend reports a quit
// request or ctx is canceled, forcing a periodic redraw (with a blinking
// cursor) in between GPU_UPDATE commands. On quit it kills parentPID, the
// same "GPU closing its window ends the session" behavior spec.md §3
// describes.
func (g *GPU) Run(ctx context.Context, parentPID int) error {
	if g.Backend != nil {
		if err := g.Backend.Init(); err != nil {
			return fmt.Errorf("vmgpu: backend init: %w", err)
		}
		defer g.Backend.Close()
	}

	ticker := time.NewTicker(g.pace())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if g.stopRequested.Load() {
			return nil
		}

		if err := g.Tick(); err != nil {
			return fmt.Errorf("vmgpu: tick: %w", err)
		}

		g.tickCount++
		if g.tickCount >= redrawEveryTicks {
			g.tickCount = 0
			g.redrawCount++
			if g.redrawCount >= blinkEveryRedraws {
				g.redrawCount = 0
				g.cursorVisible = !g.cursorVisible
			}
			if err := g.renderFrame(); err != nil {
				return fmt.Errorf("vmgpu: periodic render: %w", err)
			}
		}

		if g.Backend != nil && g.Backend.PollQuit() {
			if parentPID > 0 {
				_ = procutil.KillProcess(parentPID)
			}
			return nil
		}
	}
}
