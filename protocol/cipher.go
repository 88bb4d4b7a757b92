package protocol

import "fmt"

// Cipher is the per-session stream cipher applied to every word crossing the
// FIFO boundary. It holds the decoded 32-word key table and two independent
// rolling cursors, one for each transfer direction. Words written to the
// device are XORed against the upper 16-word half of the table, words read
// from it against the lower half; both cursors wrap modulo 16 and persist
// across calls, forming one continuous keystream per session.
//
// Cipher is not safe for concurrent use; it is owned exclusively by a
// session.
type Cipher struct {
	table     [CipherTableWords]uint16
	encCursor int
	decCursor int
}

// LoadTable installs the raw table as read from the device and decodes it in
// place: word 0 is complemented, then every following word is XORed with its
// already-decoded predecessor, left to right. Both cursors reset to zero.
//
// The raw table must be loaded exactly once per session, before the first
// Encrypt or Decrypt call.
func (c *Cipher) LoadTable(raw []uint16) error {
	if len(raw) != CipherTableWords {
		return fmt.Errorf("encryption table must be %d words, got %d", CipherTableWords, len(raw))
	}
	copy(c.table[:], raw)

	c.table[0] = ^c.table[0]
	for i := 1; i < len(c.table); i++ {
		c.table[i] ^= c.table[i-1]
	}
	c.encCursor = 0
	c.decCursor = 0
	return nil
}

// Encrypt XORs words in place against the upper keystream half, advancing
// the encode cursor once per word. An empty slice is a no-op and leaves the
// cursor untouched.
func (c *Cipher) Encrypt(words []uint16) {
	for i := range words {
		words[i] ^= c.table[CipherKeyWords+c.encCursor]
		c.encCursor = (c.encCursor + 1) & 0x0f
	}
}

// Decrypt XORs words in place against the lower keystream half, advancing
// the decode cursor once per word. An empty slice is a no-op and leaves the
// cursor untouched.
func (c *Cipher) Decrypt(words []uint16) {
	for i := range words {
		words[i] ^= c.table[c.decCursor]
		c.decCursor = (c.decCursor + 1) & 0x0f
	}
}
