package bitfile

import (
	"errors"
	"strings"
	"testing"
)

func TestParseReader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []uint16
	}{
		{
			name:  "terminated words",
			input: "1a_2b_",
			want:  []uint16{0x1a, 0x2b},
		},
		{
			name:  "line ending mid-word flushes",
			input: "1a2b",
			want:  []uint16{0x1a2b},
		},
		{
			name:  "space truncates remainder of line",
			input: "1a z",
			want:  []uint16{0x1a},
		},
		{
			name:  "tab truncates remainder of line",
			input: "ff_\tgarbage",
			want:  []uint16{0xff},
		},
		{
			name:  "multiple lines",
			input: "1234_5678_\nabcd",
			want:  []uint16{0x1234, 0x5678, 0xabcd},
		},
		{
			name:  "uppercase and lowercase digits",
			input: "aB_Cd_",
			want:  []uint16{0xab, 0xcd},
		},
		{
			name:  "crlf line endings",
			input: "1a_\r\n2b_\r\n",
			want:  []uint16{0x1a, 0x2b},
		},
		{
			name:  "bare underscore yields zero word",
			input: "_",
			want:  []uint16{0x0000},
		},
		{
			name:  "comment after space survives",
			input: "dead_beef_ trailing comment\n1_",
			want:  []uint16{0xdead, 0xbeef, 0x0001},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs, err := ParseReader(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseReader() failed: %v", err)
			}
			if len(bs.Words) != len(tt.want) {
				t.Fatalf("got %d words %04X, want %d words %04X",
					len(bs.Words), bs.Words, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if bs.Words[i] != tt.want[i] {
					t.Errorf("word %d = 0x%04X, want 0x%04X", i, bs.Words[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseReaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{
			name:     "empty file",
			input:    "",
			wantLine: 0,
		},
		{
			name:     "only blank lines",
			input:    "\n\n",
			wantLine: 0,
		},
		{
			name:     "non-hex character",
			input:    "1g",
			wantLine: 1,
		},
		{
			name:     "non-hex character on later line",
			input:    "1a_\n2b_\nzz",
			wantLine: 3,
		},
		{
			name:     "punctuation",
			input:    "12-34",
			wantLine: 1,
		},
		{
			name:     "stray carriage return mid-line",
			input:    "1a\r2b\n",
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ParseReader() accepted malformed input")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error is %T, want *ParseError", err)
			}
			if parseErr.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", parseErr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := Parse("testdata/does-not-exist.txt"); err == nil {
		t.Error("Parse() succeeded on a missing file")
	}
}
