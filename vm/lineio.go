package vm

import (
	"bufio"
	"io"
	"strings"
)

// LineReader supplies input lines to String>>read. ok is false at end of
// input.
type LineReader interface {
	ReadLine() (line string, ok bool)
}

type scannerReader struct {
	sc *bufio.Scanner
}

// NewLineReader reads lines from r. Line terminators (\n or \r\n) are
// stripped.
func NewLineReader(r io.Reader) LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &scannerReader{sc: sc}
}

func (r *scannerReader) ReadLine() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	return strings.TrimSuffix(r.sc.Text(), "\r"), true
}

type emptyInput struct{}

func (emptyInput) ReadLine() (string, bool) { return "", false }
