//go:build headless

// backend_ebiten_stub.go - the headless-build counterpart to
// backend_ebiten.go, mirroring the teacher's video_backend_headless.go:
// binaries built with -tags headless pull in no graphics stack at all, so
// requesting the windowed backend is simply an error.

package vmgpu

import "fmt"

func newEbitenBackend() (Backend, error) {
	return nil, fmt.Errorf("vmgpu: ebiten backend not available in a headless build")
}
