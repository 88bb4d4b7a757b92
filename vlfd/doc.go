// Package vlfd provides a high-level API for the SMIMS VLFD FPGA board.
//
// # Overview
//
// The package drives the board's command/session protocol over the bulk USB
// transport from package usb:
//   - session establishment (encryption-table fetch, configuration read)
//   - the sync handshake preceding every command
//   - transparent stream-cipher encoding of all FIFO payload words
//   - VeriComm I/O mode entry and word transfers
//   - FPGA bitstream uploads through the Programmer
//
// A Device owns its transport, its configuration mirror and its cipher
// state. It is not safe for concurrent use; callers that share a Device
// across goroutines must serialize access externally.
//
// # Basic Usage
//
// Open the board, enter VeriComm I/O mode and exchange words:
//
//	device, err := vlfd.Connect(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	settings := vlfd.DefaultIoSettings()
//	settings.ClockHighDelay = 8
//	settings.ClockLowDelay = 8
//	if err := device.EnterIOMode(ctx, settings); err != nil {
//	    log.Fatal(err)
//	}
//
//	tx := []uint16{0x1234, 0x5678, 0x9abc, 0xdef0}
//	rx := make([]uint16, 4)
//	if err := device.TransferIO(ctx, tx, rx); err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = device.ExitIOMode(ctx)
//
// # Programming
//
// Upload a bitstream file and verify the programmed status:
//
//	prog, err := vlfd.ConnectProgrammer(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer prog.Close()
//
//	if err := prog.Program(ctx, "design.bit.txt"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Options
//
// Customize behavior with functional options:
//
//	device := vlfd.New(transport,
//	    vlfd.WithLogger(myLogger),
//	    vlfd.WithProgressCallback(progressFunc),
//	    vlfd.WithSyncTimeout(2*time.Second),
//	)
//
// # Error Handling
//
// Failures carry typed errors: compare sentinels with errors.Is
// (ErrDeviceNotOpen, ErrNotProgrammed) and extract detail with errors.As
// (*DeviceNotFoundError, *VersionMismatchError, *FeatureUnavailableError,
// *TimeoutError). Transport failures surface as *usb.TransportError with
// the failing operation and endpoint attached. Composite operations abort
// at the first failing step and never leave a partially-applied
// configuration on the device.
package vlfd
