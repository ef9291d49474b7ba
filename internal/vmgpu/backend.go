// backend.go - the narrow rendering/input interface the GPU core drives,
// and the two concrete implementations selected by name or build tag.

package vmgpu

import "fmt"

// Backend is the external collaborator spec.md §1/§6 carves out: the
// concrete windowing/text-drawing library sits entirely behind this
// interface, never in the GPU state machine itself.
type Backend interface {
	// Init prepares the backend (opens a window, enters raw terminal mode,
	// etc). Called once before the first RenderFrame.
	Init() error
	// RenderFrame draws the current framebuffer state. Called on
	// GPU_UPDATE and periodically to animate the cursor blink.
	RenderFrame(fb *Framebuffer, cursorVisible bool) error
	// PollQuit reports whether the user asked to close the window or
	// pressed Escape - the GPU's termination signal.
	PollQuit() bool
	// Close releases backend resources.
	Close() error
}

// NewBackend resolves a backend by name: "ebiten" for the windowed
// renderer (only available in binaries built without the `headless` tag),
// "headless"/"ansi"/"" for the always-available terminal renderer.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "ebiten":
		return newEbitenBackend()
	case "headless", "ansi", "":
		return NewANSIBackend(), nil
	default:
		return nil, fmt.Errorf("vmgpu: unknown backend %q", name)
	}
}
