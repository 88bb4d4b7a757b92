package usb

import (
	"errors"
	"fmt"
)

// Sentinel transport conditions.
var (
	// ErrNotFound reports that no device with the requested identity is
	// attached
	ErrNotFound = errors.New("device not found")

	// ErrNotOpen reports a transfer attempted on a closed transport
	ErrNotOpen = errors.New("transport is not open")

	// ErrZeroLengthTransfer reports a bulk transfer that moved no data;
	// the device never legitimately completes an empty transfer
	ErrZeroLengthTransfer = errors.New("bulk transfer moved zero bytes")
)

// TransportError wraps a failure of a single transport operation with
// enough context to diagnose it without a stack trace.
type TransportError struct {
	// Op is the transport operation that failed ("open", "bulk read", ...)
	Op string

	// Endpoint is the endpoint involved, if any
	Endpoint Endpoint

	// Err is the underlying cause
	Err error
}

func (e *TransportError) Error() string {
	if e.Endpoint != 0 {
		return fmt.Sprintf("usb %s on %s endpoint: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("usb %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
