package main

import (
	"fmt"
	"io"
	"os"
)

// readGrammarSource reads a grammar string from path, or from stdin when
// path is empty, mirroring the teacher's compile.go stdin fallback.
func readGrammarSource(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read grammar from stdin: %w", err)
		}
		return string(b), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open grammar file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("cannot read grammar file %s: %w", path, err)
	}
	return string(b), nil
}

// readInput reads the text to tokenize/match from path, or stdin when
// path is empty.
func readInput(path string) (string, error) {
	return readGrammarSource(path)
}
