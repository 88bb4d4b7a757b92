package bitfile

// Bitstream is a decoded FPGA bitstream: the 16-bit word sequence uploaded
// to the device's programming FIFO.
type Bitstream struct {
	// Words is the decoded word sequence in file order
	Words []uint16
}

// DefaultWordCapacity is the initial capacity of the decoded word slice.
const DefaultWordCapacity = 4096
