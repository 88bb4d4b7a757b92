// Package bitfile provides parsing for SMIMS FPGA bitstream text files.
//
// # Bitstream File Format
//
// A bitstream file is plain ASCII, processed line by line. Within a line:
//
//   - hexadecimal digits accumulate, high nibble first, into the current
//     16-bit word
//   - an underscore terminates the current word and starts a new one
//   - a space or tab terminates processing of the remainder of the line
//   - any other byte is a fatal parse error
//
// A line that ends with nibbles accumulated but no trailing underscore still
// flushes the accumulator as a final word for that line.
//
// Example line:
//
//	1a_2b_ffff_
//	  decodes to the words 0x001A, 0x002B, 0xFFFF
//
// A file that decodes to no words at all is invalid; real bitstreams are
// never empty.
//
// # Usage
//
// Parse a bitstream file from disk:
//
//	bs, err := bitfile.Parse("design.bit.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d words\n", len(bs.Words))
//
// Or from any io.Reader:
//
//	bs, err := bitfile.ParseReader(strings.NewReader(content))
//
// Parse failures carry the offending line number in a *ParseError.
package bitfile
