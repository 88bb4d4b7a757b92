// Package usb provides the bulk USB transport for the VLFD board.
//
// # Transport
//
// The board exposes four logical channels, each a single bulk endpoint:
// FIFO-write, Command, FIFO-read and Sync. The Transport interface is the
// seam between the session layer and the wire: implementations must transfer
// complete buffers (retrying short transfers internally) and treat a
// zero-length transfer as an error.
//
// Device is the production implementation on top of github.com/google/gousb.
// The session layer in package vlfd only consumes the interface, so tests
// substitute an in-memory transport.
//
// # Hotplug
//
// Watcher delivers attach/detach notifications for a VID/PID pair through a
// caller-supplied callback. libusb hotplug callbacks are not exposed by
// gousb, so the watcher polls device enumeration at a fixed interval, the
// same way the board's event loop has always been serviced. The watcher is
// a cancellable background task: Close signals the polling goroutine and
// waits for it, guaranteeing no callback runs after Close returns.
package usb
