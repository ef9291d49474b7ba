//go:build !headless

// backend_ebiten.go - the windowed text-mode renderer, grounded in the
// teacher's video_backend_ebiten.go: the same Start/RunGame/Update/Draw
// game-loop shape, the same escape-key-or-window-close termination check,
// and the same Ctrl+Shift clipboard affordance, here used for copying the
// rendered screen out instead of pasting keystrokes in.

package vmgpu

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphWidth  = 7
	glyphHeight = 13
)

func newEbitenBackend() (Backend, error) {
	return &ebitenBackend{
		width:  Columns * glyphWidth,
		height: Rows * glyphHeight,
		ready:  make(chan struct{}, 1),
	}, nil
}

type ebitenBackend struct {
	width, height int
	canvas        *ebiten.Image

	mu            sync.RWMutex
	fb            Framebuffer
	cursorVisible bool

	ready         chan struct{}
	readyOnce     sync.Once
	quitRequested atomic.Bool

	clipboardOnce sync.Once
	clipboardOK   bool
}

func (b *ebitenBackend) Init() error {
	ebiten.SetWindowSize(b.width, b.height)
	ebiten.SetWindowTitle("wordvm GPU")
	ebiten.SetWindowResizable(false)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(b); err != nil && err != ebiten.Termination {
			fmt.Printf("wordvm: ebiten backend exited: %v\n", err)
		}
	}()

	<-b.ready
	return nil
}

func (b *ebitenBackend) RenderFrame(fb *Framebuffer, cursorVisible bool) error {
	b.mu.Lock()
	b.fb = *fb
	b.cursorVisible = cursorVisible
	b.mu.Unlock()
	return nil
}

func (b *ebitenBackend) PollQuit() bool {
	return b.quitRequested.Load()
}

func (b *ebitenBackend) Close() error {
	return nil
}

// Update implements ebiten.Game.
func (b *ebitenBackend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		b.quitRequested.Store(true)
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		b.quitRequested.Store(true)
		return ebiten.Termination
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		b.copyScreenToClipboard()
	}
	return nil
}

func (b *ebitenBackend) copyScreenToClipboard() {
	b.clipboardOnce.Do(func() {
		b.clipboardOK = clipboard.Init() == nil
	})
	if !b.clipboardOK {
		return
	}
	b.mu.RLock()
	var sb strings.Builder
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			sb.WriteByte(b.fb.Cells[x][y].Char)
		}
		sb.WriteByte('\n')
	}
	b.mu.RUnlock()
	clipboard.Write(clipboard.FmtText, []byte(sb.String()))
}

// Draw implements ebiten.Game.
func (b *ebitenBackend) Draw(screen *ebiten.Image) {
	if b.canvas == nil {
		b.canvas = ebiten.NewImage(b.width, b.height)
	}
	b.canvas.Fill(color.Black)

	b.mu.RLock()
	fb := b.fb
	cursorVisible := b.cursorVisible
	b.mu.RUnlock()

	face := basicfont.Face7x13
	for x := 0; x < Columns; x++ {
		for y := 0; y < Rows; y++ {
			cell := fb.Cells[x][y]
			ch := cell.Char
			if cursorVisible && x == fb.Cursor.X && y == fb.Cursor.Y {
				ch = '_'
			}
			if ch == ' ' {
				continue
			}
			drawGlyph(b.canvas, face, ch, x*glyphWidth, (y+1)*glyphHeight-face.Descent, paletteToImageColor(cell.Color))
		}
	}

	screen.DrawImage(b.canvas, nil)
	select {
	case b.ready <- struct{}{}:
	default:
	}
	b.readyOnce.Do(func() {})
}

func drawGlyph(dst *ebiten.Image, face font.Face, ch byte, x, y int, col color.Color) {
	img := image.NewRGBA(image.Rect(0, 0, glyphWidth, glyphHeight))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(string(rune(ch)))

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(x), float64(y-face.Metrics().Ascent.Ceil()))
	dst.DrawImage(ebiten.NewImageFromImage(img), opts)
}

func paletteToImageColor(c Color) color.Color {
	switch c {
	case Red:
		return color.RGBA{0xCC, 0x22, 0x22, 0xFF}
	case Green:
		return color.RGBA{0x22, 0xCC, 0x44, 0xFF}
	case Blue:
		return color.RGBA{0x33, 0x66, 0xEE, 0xFF}
	case Cyan:
		return color.RGBA{0x44, 0xCC, 0xDD, 0xFF}
	case Magenta:
		return color.RGBA{0xCC, 0x44, 0xCC, 0xFF}
	case Black:
		return color.Black
	default:
		return color.White
	}
}

// Layout implements ebiten.Game.
func (b *ebitenBackend) Layout(_, _ int) (int, int) {
	return b.width, b.height
}
