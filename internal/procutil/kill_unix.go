//go:build !windows

// kill_unix.go - the GPU-kills-its-parent-CPU signal, sent via SIGKILL the
// same way original_source/gpu/src/gpu.rs kills its own parent.

package procutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// KillProcess terminates pid, spec.md's "closing the GPU window ends the
// CPU process too" behavior.
func KillProcess(pid int) error {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil {
		return fmt.Errorf("procutil: kill %d: %w", pid, err)
	}
	return nil
}
