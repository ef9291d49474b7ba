// backend_ansi.go - a terminal text-mode renderer, the "debug dump" style
// backend spec.md §9 keeps around alongside the windowed one. Always
// compiled, unlike the ebiten backend, since it needs no platform graphics
// stack - the same role video_terminal.go plays for the teacher, minus the
// bitmap font since this GPU is already character-addressed.

package vmgpu

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

// ansiColorCode maps a palette Color to its SGR foreground code.
func ansiColorCode(c Color) int {
	switch c {
	case Red:
		return 31
	case Green:
		return 32
	case Blue:
		return 34
	case Cyan:
		return 36
	case Magenta:
		return 35
	case Black:
		return 30
	default:
		return 37
	}
}

// ANSIBackend renders the framebuffer as raw ANSI escape sequences to
// stdout and watches stdin (in raw mode, when it is a terminal) for Escape.
type ANSIBackend struct {
	fd            int
	isTerminal    bool
	oldState      *term.State
	quitRequested atomic.Bool
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewANSIBackend constructs the backend. Init() does the actual terminal
// setup so construction itself never fails.
func NewANSIBackend() *ANSIBackend {
	return &ANSIBackend{fd: int(os.Stdin.Fd()), stopCh: make(chan struct{})}
}

func (b *ANSIBackend) Init() error {
	b.isTerminal = term.IsTerminal(b.fd)
	if !b.isTerminal {
		return nil
	}
	old, err := term.MakeRaw(b.fd)
	if err != nil {
		// Not fatal: fall back to a non-interactive renderer that can
		// never observe an Escape keypress.
		b.isTerminal = false
		return nil
	}
	b.oldState = old
	go b.watchStdin()
	return nil
}

func (b *ANSIBackend) watchStdin() {
	buf := make([]byte, 16)
	for {
		select {
		case <-b.stopCh:
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			if buf[i] == 0x1B {
				b.quitRequested.Store(true)
			}
		}
	}
}

func (b *ANSIBackend) RenderFrame(fb *Framebuffer, cursorVisible bool) error {
	var out []byte
	out = append(out, "\x1b[H\x1b[2J"...)
	for y := 0; y < Rows; y++ {
		lastColor := -1
		for x := 0; x < Columns; x++ {
			cell := fb.Cells[x][y]
			code := ansiColorCode(cell.Color)
			if code != lastColor {
				out = append(out, []byte(fmt.Sprintf("\x1b[%dm", code))...)
				lastColor = code
			}
			ch := cell.Char
			if cursorVisible && x == fb.Cursor.X && y == fb.Cursor.Y {
				ch = '_'
			}
			out = append(out, ch)
		}
		out = append(out, "\x1b[0m\r\n"...)
	}
	_, err := os.Stdout.Write(out)
	return err
}

func (b *ANSIBackend) PollQuit() bool {
	return b.quitRequested.Load()
}

func (b *ANSIBackend) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopCh)
		if b.oldState != nil {
			err = term.Restore(b.fd, b.oldState)
		}
	})
	return err
}
