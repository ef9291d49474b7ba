// framebuffer.go - the 92x48 text-mode framebuffer and cursor the GPU's
// state machine draws into.

package vmgpu

// Columns/Rows are the fixed framebuffer dimensions.
const (
	Columns = 92
	Rows    = 48
)

// Color is one of the six palette entries the GPU can place a character in.
type Color int

const (
	White Color = iota
	Red
	Green
	Blue
	Cyan
	Magenta
	Black
)

// Cell is one framebuffer position: a character and its color.
type Cell struct {
	Char  byte
	Color Color
}

// Cursor is the current draw position.
type Cursor struct {
	X, Y int
}

// Framebuffer is the GPU's 92x48 text grid plus cursor.
type Framebuffer struct {
	Cells  [Columns][Rows]Cell
	Cursor Cursor
}

// NewFramebuffer returns a framebuffer cleared to spaces on white, cursor
// at the origin - the GPU's initial state. GPU_RES_F_BUF clears to black
// instead; the two are distinct colors, not the same "cleared" value.
func NewFramebuffer() *Framebuffer {
	fb := &Framebuffer{}
	fb.Reset(White)
	return fb
}

// Reset clears every cell to a space in bg and moves the cursor to (0,0).
func (fb *Framebuffer) Reset(bg Color) {
	for x := 0; x < Columns; x++ {
		for y := 0; y < Rows; y++ {
			fb.Cells[x][y] = Cell{Char: ' ', Color: bg}
		}
	}
	fb.Cursor = Cursor{}
}

// PlaceAndAdvance writes ch/color at the cursor, then advances the cursor
// with wraparound: x wraps to 0 incrementing y; y wraps to 0 at the last row.
func (fb *Framebuffer) PlaceAndAdvance(ch byte, color Color) {
	fb.Cells[fb.Cursor.X][fb.Cursor.Y] = Cell{Char: ch, Color: color}
	fb.Cursor.X++
	if fb.Cursor.X >= Columns {
		fb.Cursor.X = 0
		fb.Cursor.Y++
		if fb.Cursor.Y >= Rows {
			fb.Cursor.Y = 0
		}
	}
}

// MoveUp/MoveDown/MoveLeft/MoveRight/NewLine implement the GPU cursor-move
// opcodes. spec.md leaves out-of-range cursor motion unspecified; this
// implementation clamps to the grid rather than letting the cursor run
// negative, which would otherwise panic the next PlaceAndAdvance.
func (fb *Framebuffer) MoveUp()    { fb.Cursor.Y = clamp(fb.Cursor.Y-1, 0, Rows-1) }
func (fb *Framebuffer) MoveDown()  { fb.Cursor.Y = clamp(fb.Cursor.Y+1, 0, Rows-1) }
func (fb *Framebuffer) MoveLeft()  { fb.Cursor.X = clamp(fb.Cursor.X-1, 0, Columns-1) }
func (fb *Framebuffer) MoveRight() { fb.Cursor.X = clamp(fb.Cursor.X+1, 0, Columns-1) }
func (fb *Framebuffer) NewLine() {
	fb.Cursor.X = 0
	fb.Cursor.Y = clamp(fb.Cursor.Y+1, 0, Rows-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
