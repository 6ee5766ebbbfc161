// internal/source/source.go
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single log line; kernel firewall lines stay well
// under this even with every option field present.
const maxLineSize = 64 * 1024

// FileSource yields lines from a finite file, or stdin for path "-"
type FileSource struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewFileSource opens a file source
func NewFileSource(path string) (*FileSource, error) {
	if path == "-" {
		return &FileSource{scanner: newScanner(os.Stdin)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileSource{file: file, scanner: newScanner(file)}, nil
}

// Next returns the next line, or io.EOF when the file is exhausted
func (s *FileSource) Next(_ context.Context) (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read log source: %w", err)
	}
	return "", io.EOF
}

// Close closes the underlying file
func (s *FileSource) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return scanner
}
