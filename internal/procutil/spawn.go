// spawn.go - launching the GPU process from the CPU process and wiring its
// stdio through, the one piece of process glue spec.md's two-process model
// needs beyond the shared ROM file itself.

package procutil

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// SpawnGPU starts wordgpuPath against romPath, passing the caller's own pid
// so the GPU process can kill its parent CPU process on window close. The
// child inherits this process's stdio so its terminal backend (if any) can
// still read the controlling terminal. extraArgs are flags and go before the
// two positional arguments, since the flag package stops at the first
// positional one.
func SpawnGPU(wordgpuPath, romPath string, extraArgs ...string) (*exec.Cmd, error) {
	args := append(append([]string{}, extraArgs...), romPath, strconv.Itoa(os.Getpid()))
	cmd := exec.Command(wordgpuPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("procutil: spawn gpu: %w", err)
	}
	return cmd, nil
}
