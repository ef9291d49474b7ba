// wordasm compiles a wordvm assembly source file into a ROM image.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/otley-vm/wordvm/internal/asm"
	"github.com/otley-vm/wordvm/internal/rom"
)

func main() {
	textDump := flag.String("text-dump", "", "also write the newline-delimited binary-string debug dump to this path")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: wordasm [-text-dump <path>] <input.asm> <output.rom>\n")
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	if err := run(inputPath, outputPath, *textDump); err != nil {
		fmt.Fprintf(os.Stderr, "wordasm: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath, textDumpPath string) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	image, err := asm.Assemble(string(source))
	if err != nil {
		return err
	}

	if err := image.Save(outputPath); err != nil {
		return err
	}

	if textDumpPath != "" {
		if err := image.SaveText(textDumpPath); err != nil {
			return err
		}
	}

	fmt.Printf("wordasm: wrote %s (%d words)\n", outputPath, rom.Size)
	return nil
}
