// wordgpu polls a shared ROM file for GPU buffer commands, renders an
// 92x48 text framebuffer through a pluggable backend, and can terminate its
// parent CPU process when the user closes the window.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/otley-vm/wordvm/internal/vmgpu"
)

func main() {
	clockHz := flag.Int("clock", 1000, "GPU clock rate in Hz")
	backendName := flag.String("backend", "ebiten", "rendering backend: ebiten or headless")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: wordgpu [-clock hz] [-backend ebiten|headless] <rom-path> <parent-pid>\n")
		os.Exit(1)
	}
	romPath := args[0]
	parentPID, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "wordgpu: invalid parent pid %q: %v\n", args[1], err)
		os.Exit(1)
	}

	if err := run(romPath, parentPID, *clockHz, *backendName); err != nil {
		fmt.Fprintf(os.Stderr, "wordgpu: %v\n", err)
		os.Exit(1)
	}
}

func run(romPath string, parentPID, clockHz int, backendName string) error {
	backend, err := vmgpu.NewBackend(backendName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gpu := vmgpu.New(romPath, clockHz, backend)
	return gpu.Run(ctx, parentPID)
}
