// harness.go - an in-process combined CPU+GPU run over a single shared ROM,
// for tests and `wordcpu -combined`. The two-process model (CPU and GPU as
// separate binaries trading a ROM file) remains the default; this exists so
// both loops can be driven from one goroutine group without spawning a
// child process or touching disk, the way the teacher's SystemBus guards
// one shared memory block with a single mutex instead of message-passing.

package vmharness

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/otley-vm/wordvm/internal/rom"
	"github.com/otley-vm/wordvm/internal/vmcpu"
	"github.com/otley-vm/wordvm/internal/vmgpu"
)

// Harness runs a CPU and a GPU over one in-memory ROM, guarded by a mutex
// instead of the two-process model's file reads/writes.
type Harness struct {
	mu  sync.RWMutex
	mem *rom.ROM

	CPU *vmcpu.CPU
	GPU *vmgpu.GPU
}

// New builds a harness over mem, wiring the CPU's store flush into a
// mutex-guarded write the GPU's poll reads back out through the same lock.
func New(mem *rom.ROM, cpuClockHz, gpuClockHz int, backend vmgpu.Backend) *Harness {
	h := &Harness{mem: mem}

	h.CPU = vmcpu.New(mem, cpuClockHz)
	h.CPU.OnStore = func(addr, value uint16) error {
		h.mu.Lock()
		mem.Words[addr] = value
		h.mu.Unlock()
		return nil
	}

	h.GPU = vmgpu.New("", gpuClockHz, backend)
	h.GPU.ReadWord = func(addr uint16) (uint16, error) {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return mem.Words[addr], nil
	}

	return h
}

// Run drives the CPU loop and the GPU loop concurrently under one
// errgroup.Group, returning when the CPU halts (after which the CPU goroutine
// calls GPU.RequestStop, so the GPU loop returns at its next tick) or either
// loop errors.
func (h *Harness) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := h.CPU.Run(gctx)
		h.GPU.RequestStop()
		return err
	})
	g.Go(func() error {
		return h.GPU.Run(gctx, 0)
	})

	return g.Wait()
}
