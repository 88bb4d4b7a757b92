// Package protocol implements the SMIMS VLFD command protocol primitives.
//
// This package is pure: it models the device's configuration register bank,
// the per-session stream cipher, the licence-key derivation, the command
// codes, and the on-wire word encoding. It performs no I/O; the usb and vlfd
// packages layer transport and session handling on top of it.
//
// # Configuration Register
//
// The device exposes a bank of 64 16-bit words whose meaning is positional.
// The host keeps a mirrored copy in a Config value and exchanges the whole
// bank with the device in a single read or write:
//
//	Word 0      VeriComm clock high delay (device clock units)
//	Word 1      VeriComm clock low delay
//	Word 2      ISV nibble (bits 4-7) + clock-check enable (bit 0)
//	Word 3      VeriSDK channel selector (low byte) + mode selector (high byte)
//	Words 4-7   Flash address range (begin block/cluster, end block/cluster)
//	Word 31     Licence/security key
//	Word 32     Firmware version (major byte, sub/patch nibbles)
//	Word 33     FIFO depth in words
//	Words 34-36 Flash geometry (total blocks, block size, cluster size)
//	Word 37     Capability bitmask (see Ability* constants)
//	Word 48     Status bits (see Status* constants)
//	Word 49     Bit 0 set means the VeriComm clock does not continue
//
// Field setters mask-preserve unrelated bits in shared words; reserved words
// round-trip untouched.
//
// # Stream Cipher
//
// Every word crossing the FIFO boundary is XORed with a keystream derived
// from a 32-word table the device hands out at session start. The raw table
// is decoded once per session (see Cipher.LoadTable) and then keys two
// independent rolling 16-word halves, one per transfer direction.
//
// # Command Codes
//
// Commands are written to the Command endpoint as two bytes, CmdPrefix
// followed by one of the Cmd* codes. The only exception is the single-byte
// CmdResetEngine. Use Command to build the two-byte form:
//
//	frame := protocol.Command(protocol.CmdActivateVeriComm) // [0x01 0x03]
//
// # Wire Encoding
//
// The endpoints carry bytes while the protocol speaks 16-bit words. The byte
// order is little-endian and is a protocol contract, not a host property;
// WordsToBytes and BytesToWords implement it explicitly.
package protocol
