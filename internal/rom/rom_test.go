package rom

import (
	"path/filepath"
	"testing"
)

func TestNewFillsASCIITable(t *testing.T) {
	r := New()
	if r.Words[AsciiUpperStart] != 0x0041 {
		t.Fatalf("A at 0x0200 = %#04x, want 0x0041", r.Words[AsciiUpperStart])
	}
	if r.Words[AsciiUpperStart+25] != 0x005A {
		t.Fatalf("Z at 0x0219 = %#04x, want 0x005A", r.Words[AsciiUpperStart+25])
	}
	if r.Words[AsciiLowerStart] != 0x0061 {
		t.Fatalf("a at 0x0220 = %#04x, want 0x0061", r.Words[AsciiLowerStart])
	}
	if r.Words[AsciiSpace] != 0x0020 {
		t.Fatalf("space at 0x0250 = %#04x, want 0x0020", r.Words[AsciiSpace])
	}
	if r.Words[AsciiPeriod] != 0x002E {
		t.Fatalf("period at 0x0251 = %#04x, want 0x002E", r.Words[AsciiPeriod])
	}
}

func TestNewFillsGPUBufferWithNoOp(t *testing.T) {
	r := New()
	for addr := GPUBufferStart; addr <= GPUBufferEnd; addr++ {
		if r.Words[addr] != GPUNoOp {
			t.Fatalf("gpu buffer word at %#04x = %#04x, want GPUNoOp", addr, r.Words[addr])
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := New()
	r.Words[ProgramStart] = JmpToSr
	r.Words[ProgramStart+1] = 0x2000

	path := filepath.Join(t.TempDir(), "test.rom")
	if err := r.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Words != r.Words {
		t.Fatalf("round-tripped ROM does not match original")
	}
}

func TestSaveTextLoadTextRoundTrip(t *testing.T) {
	r := New()
	r.Words[ProgramStart] = HaltLoop

	path := filepath.Join(t.TempDir(), "test.txt")
	if err := r.SaveText(path); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	loaded, err := LoadText(path)
	if err != nil {
		t.Fatalf("LoadText: %v", err)
	}
	if loaded.Words != r.Words {
		t.Fatalf("round-tripped text ROM does not match original")
	}
}

func TestReadWriteWordAt(t *testing.T) {
	r := New()
	path := filepath.Join(t.TempDir(), "test.rom")
	if err := r.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := WriteWordAt(path, 0x1000, 0xBEEF); err != nil {
		t.Fatalf("WriteWordAt: %v", err)
	}
	got, err := ReadWordAt(path, 0x1000)
	if err != nil {
		t.Fatalf("ReadWordAt: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("ReadWordAt = %#04x, want 0xBEEF", got)
	}

	// Unrelated word is untouched.
	got, err = ReadWordAt(path, GPUBufferStart)
	if err != nil {
		t.Fatalf("ReadWordAt: %v", err)
	}
	if got != GPUNoOp {
		t.Fatalf("ReadWordAt(GPUBufferStart) = %#04x, want GPUNoOp", got)
	}
}
