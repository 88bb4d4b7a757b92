package protocol

// USB identity of the SMIMS VLFD board.
const (
	// VendorID is the SMIMS USB vendor identifier
	VendorID = 0x2200

	// ProductID is the VLFD board product identifier
	ProductID = 0x2008
)

// RequiredVersion is the minimum firmware version (word 32 of the
// configuration bank, raw packed form) accepted by the session layer.
const RequiredVersion = 0x0205

// Sizes of the fixed protocol structures.
const (
	// ConfigWords is the length of the configuration register bank
	ConfigWords = 64

	// CipherTableWords is the length of the raw encryption table
	CipherTableWords = 32

	// CipherKeyWords is the length of each keystream half
	CipherKeyWords = 16

	// WordBytes is the wire size of one protocol word
	WordBytes = 2
)

// Command codes written to the Command endpoint. Every command is two bytes,
// CmdPrefix followed by one of the codes below, except CmdResetEngine which
// is a bare single byte.
const (
	// CmdPrefix is the first byte of every two-byte command
	CmdPrefix = 0x01

	// CmdResetEngine resets the protocol engine (single byte, no prefix)
	CmdResetEngine = 0x02

	// CmdActive returns the device to the idle/ready state; it must follow
	// almost every other command
	CmdActive = 0x00

	// CmdReadConfig requests the 64-word configuration bank on the
	// FIFO-read endpoint
	CmdReadConfig = 0x01

	// CmdWriteConfig announces a 64-word configuration bank write on the
	// FIFO-write endpoint
	CmdWriteConfig = 0x11

	// CmdActivateProgrammer enters FPGA-programmer mode
	CmdActivateProgrammer = 0x02

	// CmdActivateVeriComm enters VeriComm I/O mode
	CmdActivateVeriComm = 0x03

	// CmdActivateVeriSDK enters VeriSDK mode
	CmdActivateVeriSDK = 0x04

	// CmdActivateFlashRead enters flash-read mode
	CmdActivateFlashRead = 0x05

	// CmdActivateVeriInstrument enters VeriInstrument mode
	CmdActivateVeriInstrument = 0x08

	// CmdActivateVeriLink enters VeriLink mode
	CmdActivateVeriLink = 0x09

	// CmdActivateVeriSoC enters VeriSoC mode
	CmdActivateVeriSoC = 0x0a

	// CmdActivateVeriCommPro enters VeriComm-Pro mode
	CmdActivateVeriCommPro = 0x0b

	// CmdReadEncryptTable requests the raw 32-word encryption table on the
	// FIFO-read endpoint
	CmdReadEncryptTable = 0x0f

	// CmdActivateFlashWrite enters flash-write mode
	CmdActivateFlashWrite = 0x15
)

// Capability bits of configuration word 37.
const (
	// AbilityVeriComm marks VeriComm mode support
	AbilityVeriComm = 0x0001

	// AbilityVeriInstrument marks VeriInstrument mode support
	AbilityVeriInstrument = 0x0002

	// AbilityVeriLink marks VeriLink mode support
	AbilityVeriLink = 0x0004

	// AbilityVeriSoC marks VeriSoC mode support
	AbilityVeriSoC = 0x0008

	// AbilityVeriCommPro marks VeriComm-Pro mode support
	AbilityVeriCommPro = 0x0010

	// AbilityVeriSDK marks VeriSDK mode support
	AbilityVeriSDK = 0x0100
)

// Status bits of configuration word 48.
const (
	// StatusProgrammed is set once the FPGA holds a valid bitstream
	StatusProgrammed = 0x0001

	// StatusPCBDisconnected is set while the daughter PCB is detached
	// (inverted sense: zero means connected)
	StatusPCBDisconnected = 0x0100
)

// Command builds the two-byte wire form of a command code.
func Command(code byte) []byte {
	return []byte{CmdPrefix, code}
}
