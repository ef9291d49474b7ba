// wordcpu loads a ROM image and runs the CPU fetch/decode/execute loop,
// flushing stores back to the ROM file and spawning the GPU as a child
// process unless told not to.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/otley-vm/wordvm/internal/procutil"
	"github.com/otley-vm/wordvm/internal/rom"
	"github.com/otley-vm/wordvm/internal/vmcpu"
	"github.com/otley-vm/wordvm/internal/vmgpu"
	"github.com/otley-vm/wordvm/internal/vmharness"
)

func main() {
	clockHz := flag.Int("clock", 1000, "CPU clock rate in Hz")
	gpuBackend := flag.String("gpu-backend", "ebiten", "GPU rendering backend: ebiten or headless")
	noGPU := flag.Bool("no-gpu", false, "do not spawn a GPU process")
	combined := flag.Bool("combined", false, "run CPU and GPU in-process instead of spawning wordgpu")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: wordcpu [-clock hz] [-gpu-backend ebiten|headless] [-no-gpu] [-combined] <rom-path>\n")
		os.Exit(1)
	}
	romPath := args[0]

	if err := run(romPath, *clockHz, *gpuBackend, *noGPU, *combined); err != nil {
		fmt.Fprintf(os.Stderr, "wordcpu: %v\n", err)
		os.Exit(1)
	}
}

func run(romPath string, clockHz int, gpuBackend string, noGPU, combined bool) error {
	mem, err := rom.Load(romPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if combined {
		backend, err := vmgpu.NewBackend(gpuBackend)
		if err != nil {
			return err
		}
		h := vmharness.New(mem, clockHz, clockHz, backend)
		return h.Run(ctx)
	}

	cpu := vmcpu.New(mem, clockHz)
	cpu.OnStore = func(addr, value uint16) error {
		return rom.WriteWordAt(romPath, addr, value)
	}

	if !noGPU {
		wordgpuPath, err := siblingBinary("wordgpu")
		if err != nil {
			return err
		}
		gpuArgs := []string{"-clock", fmt.Sprint(clockHz), "-backend", gpuBackend}
		if _, err := procutil.SpawnGPU(wordgpuPath, romPath, gpuArgs...); err != nil {
			return err
		}
	}

	return cpu.Run(ctx)
}

// siblingBinary resolves a binary expected to live next to this one - the
// usual layout when all three wordvm binaries are built into the same
// directory.
func siblingBinary(name string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve own path: %w", err)
	}
	path := filepath.Join(filepath.Dir(self), name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("find %s next to wordcpu: %w", name, err)
	}
	return path, nil
}
