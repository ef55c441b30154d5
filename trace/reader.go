// Package trace reads branch traces and drives a predictor over them.
package trace

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/bpsim/predictor"
)

// ErrMalformedLine is returned for trace lines that cannot be parsed.
var ErrMalformedLine = errors.New("malformed trace line")

// Branch is one conditional branch record from a trace.
type Branch struct {
	// PC is the address of the branch instruction.
	PC uint32
	// Outcome is the resolved direction. Values 0 and 1 map to NotTaken and
	// Taken. Any larger value maps to an invalid Outcome.
	Outcome predictor.Outcome
}

// unknownOutcome stands in for any outcome value other than 0 or 1.
const unknownOutcome = predictor.Outcome(2)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
)

// Reader parses "<pc> <outcome>" lines. The PC is hexadecimal with an
// optional 0x prefix and the outcome is a small decimal integer. Blank lines
// and lines starting with '#' are skipped.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader wraps r, transparently decompressing gzip and bzip2 streams.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read trace header: %w", err)
	}

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip trace: %w", err)
		}
		src = gz
	case bytes.HasPrefix(magic, bzip2Magic):
		src = bzip2.NewReader(br)
	}

	return &Reader{scanner: bufio.NewScanner(src)}, nil
}

// Open opens a trace file. The path "-" reads standard input.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f

	return r, nil
}

// Close releases the underlying file, if the reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Line returns the 1-based number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next branch record, or io.EOF at the end of the trace.
func (r *Reader) Next() (Branch, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		b, err := parseLine(text)
		if err != nil {
			return Branch{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return b, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Branch{}, fmt.Errorf("failed to read trace: %w", err)
	}

	return Branch{}, io.EOF
}

func parseLine(text string) (Branch, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Branch{}, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformedLine, len(fields))
	}

	pcText := strings.TrimPrefix(strings.TrimPrefix(fields[0], "0x"), "0X")
	pc, err := strconv.ParseUint(pcText, 16, 32)
	if err != nil {
		return Branch{}, fmt.Errorf("%w: bad pc %q", ErrMalformedLine, fields[0])
	}

	outcome, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Branch{}, fmt.Errorf("%w: bad outcome %q", ErrMalformedLine, fields[1])
	}
	if err != nil || outcome > uint64(predictor.Taken) {
		return Branch{PC: uint32(pc), Outcome: unknownOutcome}, nil
	}

	return Branch{PC: uint32(pc), Outcome: predictor.Outcome(outcome)}, nil
}
