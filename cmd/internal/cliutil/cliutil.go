// Package cliutil provides shared CLI utilities for treesit command-line tools.
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golangsnmp/treesit"
)

// ReadSource reads the named file, or stdin when name is "" or "-".
func ReadSource(name string) ([]byte, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// ParseEncoding maps an encoding flag value to an InputEncoding.
// Accepted: utf8, utf16, utf16le, utf16be (case-insensitive, dashes ignored).
func ParseEncoding(name string) (treesit.InputEncoding, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "") {
	case "", "utf8":
		return treesit.InputEncodingUTF8, nil
	case "utf16", "utf16le":
		return treesit.InputEncodingUTF16LE, nil
	case "utf16be":
		return treesit.InputEncodingUTF16BE, nil
	}
	return treesit.InputEncodingUTF8, fmt.Errorf("unknown encoding %q", name)
}

// GetOutput opens the output file or returns stdout.
func GetOutput(outputFile string) (*os.File, func(), error) {
	if outputFile == "" || outputFile == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
