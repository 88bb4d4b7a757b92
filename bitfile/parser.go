package bitfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Parse parses a bitstream text file from the given file path.
//
// Example:
//
//	bs, err := bitfile.Parse("design.bit.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) (*Bitstream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a bitstream from any io.Reader. This is useful for
// testing and for bitstreams embedded in other sources.
func ParseReader(r io.Reader) (*Bitstream, error) {
	scanner := bufio.NewScanner(r)
	words := make([]uint16, 0, DefaultWordCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		lineWords, err := parseLine(scanner.Bytes(), lineNum)
		if err != nil {
			return nil, err
		}
		words = append(words, lineWords...)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bitstream: %w", err)
	}

	if len(words) == 0 {
		return nil, &ParseError{Reason: "bitstream produced no data"}
	}

	return &Bitstream{Words: words}, nil
}

// parseLine decodes one line of the bitstream grammar: hex nibbles
// accumulate high-first into a word, '_' flushes the word, space or tab
// truncates the line. A line ending mid-word flushes the accumulator.
func parseLine(line []byte, lineNum int) ([]uint16, error) {
	var words []uint16
	var accumulator uint16
	hasNibble := false

scan:
	for _, b := range line {
		switch {
		case b == '_':
			words = append(words, accumulator)
			accumulator = 0
			hasNibble = false
		case b == ' ' || b == '\t':
			break scan
		default:
			nibble, ok := hexNibble(b)
			if !ok {
				return nil, &ParseError{
					Line:   lineNum,
					Reason: fmt.Sprintf("non-hexadecimal character %q", b),
				}
			}
			accumulator = accumulator<<4 | uint16(nibble)
			hasNibble = true
		}
	}

	if hasNibble {
		words = append(words, accumulator)
	}
	return words, nil
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}
