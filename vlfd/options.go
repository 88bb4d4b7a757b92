package vlfd

import (
	"time"

	"github.com/smims/go-vlfd/protocol"
)

// DefaultSyncTimeout is the wall-clock budget of the sync handshake retry
// loop.
const DefaultSyncTimeout = 1 * time.Second

// Config holds the session configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// ProgressCallback is called during programming to report progress
	// (optional)
	ProgressCallback ProgressCallback

	// SyncTimeout bounds the sync handshake retry loop
	SyncTimeout time.Duration

	// VendorID and ProductID identify the board on the bus
	VendorID  uint16
	ProductID uint16
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		SyncTimeout: DefaultSyncTimeout,
		VendorID:    protocol.VendorID,
		ProductID:   protocol.ProductID,
	}
}

// Option is a functional option for configuring a Device.
type Option func(*Config)

// WithLogger sets a logger for session operations.
//
// Example:
//
//	device := vlfd.New(transport, vlfd.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithProgressCallback sets a callback to track bitstream upload progress.
//
// Example:
//
//	device := vlfd.New(transport,
//	    vlfd.WithProgressCallback(func(p vlfd.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithSyncTimeout overrides the sync handshake budget. The handshake is a
// hard deadline: exceeding it fails the surrounding operation.
func WithSyncTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.SyncTimeout = timeout
		}
	}
}

// WithVendorProduct overrides the USB identity the session opens. Intended
// for boards re-enumerated under a custom identity.
func WithVendorProduct(vid, pid uint16) Option {
	return func(c *Config) {
		c.VendorID = vid
		c.ProductID = pid
	}
}
