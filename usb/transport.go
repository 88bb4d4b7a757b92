package usb

import "context"

// Endpoint is the address of one of the board's four bulk endpoints.
type Endpoint uint8

// The board's endpoint layout. Addresses with bit 7 set are IN endpoints.
const (
	// EndpointFifoWrite carries bulk word data to the device
	EndpointFifoWrite Endpoint = 0x02

	// EndpointCommand carries command frames to the device
	EndpointCommand Endpoint = 0x04

	// EndpointFifoRead carries bulk word data from the device
	EndpointFifoRead Endpoint = 0x86

	// EndpointSync carries sync-handshake responses from the device
	EndpointSync Endpoint = 0x88
)

// Number returns the endpoint number without the direction bit, as used by
// the host stack's endpoint lookup.
func (e Endpoint) Number() int {
	return int(e & 0x0f)
}

// IsIn reports whether the endpoint carries data from the device to the
// host.
func (e Endpoint) IsIn() bool {
	return e&0x80 != 0
}

func (e Endpoint) String() string {
	switch e {
	case EndpointFifoWrite:
		return "fifo-write"
	case EndpointCommand:
		return "command"
	case EndpointFifoRead:
		return "fifo-read"
	case EndpointSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Transport is one open session against the board's USB function.
//
// BulkRead and BulkWrite transfer the whole buffer: implementations retry
// short transfers until the buffer is complete or an error occurs, and
// report a zero-length transfer as an error rather than spinning on it.
type Transport interface {
	// Open acquires the device with the given identity. Opening an
	// already-open transport is a no-op. A missing device is reported
	// with an error wrapping ErrNotFound.
	Open(vid, pid uint16) error

	// Close releases the device. Closing a closed transport is a no-op;
	// a device that has already detached is not an error.
	Close() error

	// IsOpen reports whether the transport holds the device.
	IsOpen() bool

	// BulkRead fills buf from an IN endpoint.
	BulkRead(ctx context.Context, ep Endpoint, buf []byte) error

	// BulkWrite drains buf into an OUT endpoint.
	BulkWrite(ctx context.Context, ep Endpoint, buf []byte) error
}
