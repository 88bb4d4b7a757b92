package vlfd

import (
	"errors"
	"fmt"
)

// Sentinel session conditions.
var (
	// ErrDeviceNotOpen reports an operation on a closed session
	ErrDeviceNotOpen = errors.New("device is not open")

	// ErrNotProgrammed reports that the FPGA holds no valid bitstream
	ErrNotProgrammed = errors.New("FPGA is not programmed")
)

// DeviceNotFoundError indicates that no board with the expected USB identity
// is attached.
type DeviceNotFoundError struct {
	VendorID  uint16
	ProductID uint16
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %04x:%04x not found", e.VendorID, e.ProductID)
}

// FeatureUnavailableError indicates that the board's capability mask does
// not include the requested operating mode.
type FeatureUnavailableError struct {
	Feature string
}

func (e *FeatureUnavailableError) Error() string {
	return fmt.Sprintf("feature %q is unavailable on this board", e.Feature)
}

// TimeoutError indicates that an operation missed its wall-clock deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out", e.Op)
}

// VersionMismatchError indicates that the board firmware is older than the
// minimum this driver supports.
type VersionMismatchError struct {
	Expected uint16
	Actual   uint16
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("firmware version mismatch: need at least 0x%04X, found 0x%04X",
		e.Expected, e.Actual)
}
