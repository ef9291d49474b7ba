// lexer.go - turns one source line into whitespace-separated tokens with
// line/column positions, after stripping `#`/`//` comments, matching the
// dialect spec.md §4.3 describes.

package asm

import "strings"

type token struct {
	text string
	line int
	col  int
}

func tokenizeLine(raw string, lineNum int) []token {
	line := stripComment(raw)

	var toks []token
	i, n := 0, len(line)
	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && !isSpace(line[i]) {
			i++
		}
		toks = append(toks, token{text: line[start:i], line: lineNum, col: start + 1})
	}
	return toks
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return line
}
