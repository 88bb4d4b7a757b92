package protocol

import "encoding/binary"

// The bulk endpoints carry bytes while the protocol speaks 16-bit words.
// Words travel little-endian on the wire; that order is part of the protocol
// contract and is fixed here rather than inherited from the host.

// WordsToBytes encodes words into a freshly allocated little-endian byte
// buffer of twice the length.
func WordsToBytes(words []uint16) []byte {
	buf := make([]byte, len(words)*WordBytes)
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[i*WordBytes:], w)
	}
	return buf
}

// BytesToWords decodes a little-endian byte buffer into a freshly allocated
// word slice. The buffer length must be even.
func BytesToWords(buf []byte) []uint16 {
	if len(buf)%WordBytes != 0 {
		panic("protocol: byte buffer length must be a multiple of the word size")
	}
	words := make([]uint16, len(buf)/WordBytes)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(buf[i*WordBytes:])
	}
	return words
}
