package vlfd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smims/go-vlfd/protocol"
	"github.com/smims/go-vlfd/usb"
)

// Device is one session against the VLFD board. It owns the transport, the
// host's configuration mirror and the cipher state, and serializes all
// protocol traffic: the command handshake, mode transitions and FIFO
// transfers with transparent encryption.
//
// The device's own configuration memory is the source of truth; the mirror
// is authoritative only immediately after a successful ReadConfig or
// WriteConfig.
//
// Device is not safe for concurrent use.
type Device struct {
	transport usb.Transport
	config    protocol.Config
	cipher    protocol.Cipher
	cfg       Config
}

// New creates a Device on top of an existing transport.
//
// Example:
//
//	device := vlfd.New(usb.NewDevice(), vlfd.WithLogger(myLogger))
func New(transport usb.Transport, opts ...Option) *Device {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Device{
		transport: transport,
		cfg:       cfg,
	}
}

// Connect opens the board over a fresh gousb transport and initializes the
// session: the encryption table is fetched and decoded, then the
// configuration bank is read.
func Connect(ctx context.Context, opts ...Option) (*Device, error) {
	device := New(usb.NewDevice(), opts...)
	if err := device.Open(); err != nil {
		return nil, err
	}
	if err := device.Initialize(ctx); err != nil {
		_ = device.Close()
		return nil, err
	}
	return device, nil
}

// Config exposes the host's configuration mirror. Mutations become visible
// to the device only after WriteConfig.
func (d *Device) Config() *protocol.Config {
	return &d.config
}

// IsOpen reports whether the session holds the device.
func (d *Device) IsOpen() bool {
	return d.transport.IsOpen()
}

// Open acquires the board at the configured USB identity.
func (d *Device) Open() error {
	err := d.transport.Open(d.cfg.VendorID, d.cfg.ProductID)
	if errors.Is(err, usb.ErrNotFound) {
		return &DeviceNotFoundError{VendorID: d.cfg.VendorID, ProductID: d.cfg.ProductID}
	}
	return err
}

// Close releases the board.
func (d *Device) Close() error {
	return d.transport.Close()
}

// Initialize fetches and decodes the encryption table, then reads the
// configuration bank. The order is fixed: configuration words arrive
// encrypted, so the table must be in place first.
func (d *Device) Initialize(ctx context.Context) error {
	raw, err := d.readEncryptTable(ctx)
	if err != nil {
		return fmt.Errorf("read encryption table: %w", err)
	}
	if err := d.cipher.LoadTable(raw); err != nil {
		return err
	}
	if err := d.ReadConfig(ctx); err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	d.logDebug("session initialized",
		"version", fmt.Sprintf("%d.%d.%d", d.config.MajorVersion(), d.config.SubVersion(), d.config.PatchVersion()),
		"fifo_depth", d.config.FIFODepth(),
		"programmed", d.config.IsProgrammed(),
	)
	return nil
}

// EnsureSession opens the board if necessary and (re)initializes the
// session state.
func (d *Device) EnsureSession(ctx context.Context) error {
	if !d.IsOpen() {
		if err := d.Open(); err != nil {
			return err
		}
	}
	return d.Initialize(ctx)
}

// ResetEngine resets the device's protocol engine.
func (d *Device) ResetEngine(ctx context.Context) error {
	return d.transport.BulkWrite(ctx, usb.EndpointCommand, []byte{protocol.CmdResetEngine})
}

// sync performs the ready handshake preceding every command: a one-byte
// probe on the command endpoint answered on the sync endpoint, retried
// until the device reports ready or the sync budget elapses.
func (d *Device) sync(ctx context.Context) error {
	deadline := time.Now().Add(d.cfg.SyncTimeout)
	var probe [1]byte

	for !time.Now().After(deadline) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		if err := d.transport.BulkWrite(ctx, usb.EndpointCommand, probe[:]); err != nil {
			return err
		}
		if err := d.transport.BulkRead(ctx, usb.EndpointSync, probe[:]); err != nil {
			return err
		}
		if probe[0] != 0 {
			return nil
		}
	}

	return &TimeoutError{Op: "sync"}
}

func (d *Device) writeCommand(ctx context.Context, code byte) error {
	return d.transport.BulkWrite(ctx, usb.EndpointCommand, protocol.Command(code))
}

// CommandActive returns the device to its idle/ready state. It must follow
// almost every other command.
func (d *Device) CommandActive(ctx context.Context) error {
	if err := d.sync(ctx); err != nil {
		return err
	}
	return d.writeCommand(ctx, protocol.CmdActive)
}

// ReadConfig replaces the host mirror with the device's configuration bank.
func (d *Device) ReadConfig(ctx context.Context) error {
	if err := d.sync(ctx); err != nil {
		return err
	}
	if err := d.writeCommand(ctx, protocol.CmdReadConfig); err != nil {
		return err
	}

	buf := make([]byte, protocol.ConfigWords*protocol.WordBytes)
	if err := d.transport.BulkRead(ctx, usb.EndpointFifoRead, buf); err != nil {
		return err
	}
	if err := d.CommandActive(ctx); err != nil {
		return err
	}

	words := protocol.BytesToWords(buf)
	d.cipher.Decrypt(words)

	var bank [protocol.ConfigWords]uint16
	copy(bank[:], words)
	d.config.SetWords(bank)
	return nil
}

// WriteConfig pushes the host mirror to the device as a whole bank.
func (d *Device) WriteConfig(ctx context.Context) error {
	if err := d.sync(ctx); err != nil {
		return err
	}

	bank := d.config.Words()
	words := bank[:]
	d.cipher.Encrypt(words)

	if err := d.writeCommand(ctx, protocol.CmdWriteConfig); err != nil {
		return err
	}
	if err := d.transport.BulkWrite(ctx, usb.EndpointFifoWrite, protocol.WordsToBytes(words)); err != nil {
		return err
	}
	return d.CommandActive(ctx)
}

// EnterIOMode places the board into VeriComm I/O mode. The preconditions
// are checked strictly in order against the freshly-read configuration:
// firmware version, programmed status, then VeriComm capability. The first
// failing check aborts before anything is written to the device.
func (d *Device) EnterIOMode(ctx context.Context, settings *IoSettings) error {
	if settings == nil {
		settings = DefaultIoSettings()
	}

	if err := d.EnsureSession(ctx); err != nil {
		return err
	}

	if actual := d.config.VersionRaw(); actual < protocol.RequiredVersion {
		return &VersionMismatchError{Expected: protocol.RequiredVersion, Actual: actual}
	}
	if !d.config.IsProgrammed() {
		return ErrNotProgrammed
	}
	if !d.config.HasVeriComm() {
		return &FeatureUnavailableError{Feature: "vericomm"}
	}

	if settings.LicenceKey != nil {
		d.config.SetLicenceKey(*settings.LicenceKey)
	}
	d.config.SetVeriCommClockHighDelay(settings.ClockHighDelay)
	d.config.SetVeriCommClockLowDelay(settings.ClockLowDelay)
	d.config.SetVeriCommISV(settings.ISV)
	d.config.SetVeriCommClockCheckEnabled(settings.ClockCheckEnabled)
	d.config.SetModeSelector(settings.ModeSelector)

	if err := d.WriteConfig(ctx); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := d.ActivateVeriComm(ctx); err != nil {
		return fmt.Errorf("activate vericomm: %w", err)
	}

	d.logInfo("entered io mode",
		"clock_high", settings.ClockHighDelay,
		"clock_low", settings.ClockLowDelay,
		"isv", settings.ISV,
	)
	return nil
}

// TransferIO performs one FIFO transaction: tx is encrypted in place and
// written, then rx is filled and decrypted in place. The buffer lengths are
// independent; there is no framing beyond the raw word counts.
func (d *Device) TransferIO(ctx context.Context, tx, rx []uint16) error {
	if !d.IsOpen() {
		return ErrDeviceNotOpen
	}

	d.cipher.Encrypt(tx)
	if err := d.FifoWrite(ctx, tx); err != nil {
		return err
	}
	if err := d.FifoRead(ctx, rx); err != nil {
		return err
	}
	d.cipher.Decrypt(rx)
	return nil
}

// ExitIOMode returns the device to its idle state and closes the session.
// On a closed session it is a no-op.
func (d *Device) ExitIOMode(ctx context.Context) error {
	if !d.IsOpen() {
		return nil
	}
	if err := d.CommandActive(ctx); err != nil {
		return err
	}
	return d.Close()
}

// FifoWrite writes raw words to the FIFO-write endpoint. Most callers want
// TransferIO, which also applies the cipher.
func (d *Device) FifoWrite(ctx context.Context, words []uint16) error {
	return d.transport.BulkWrite(ctx, usb.EndpointFifoWrite, protocol.WordsToBytes(words))
}

// FifoRead fills words from the FIFO-read endpoint. Most callers want
// TransferIO, which also applies the cipher.
func (d *Device) FifoRead(ctx context.Context, words []uint16) error {
	buf := make([]byte, len(words)*protocol.WordBytes)
	if err := d.transport.BulkRead(ctx, usb.EndpointFifoRead, buf); err != nil {
		return err
	}
	copy(words, protocol.BytesToWords(buf))
	return nil
}

// LicenceFor derives the licence key for a customer identifier from the
// security key the board reported in its configuration.
func (d *Device) LicenceFor(customerID uint16) uint16 {
	return protocol.LicenceGen(d.config.SecurityKey(), customerID)
}

// ActivateProgrammer enters FPGA-programmer mode.
func (d *Device) ActivateProgrammer(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateProgrammer, "programmer")
}

// ActivateVeriComm enters VeriComm mode.
func (d *Device) ActivateVeriComm(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriComm, "vericomm")
}

// ActivateVeriInstrument enters VeriInstrument mode.
func (d *Device) ActivateVeriInstrument(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriInstrument, "veriinstrument")
}

// ActivateVeriLink enters VeriLink mode.
func (d *Device) ActivateVeriLink(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriLink, "verilink")
}

// ActivateVeriSoC enters VeriSoC mode.
func (d *Device) ActivateVeriSoC(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriSoC, "verisoc")
}

// ActivateVeriCommPro enters VeriComm-Pro mode.
func (d *Device) ActivateVeriCommPro(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriCommPro, "vericomm-pro")
}

// ActivateVeriSDK enters VeriSDK mode.
func (d *Device) ActivateVeriSDK(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateVeriSDK, "verisdk")
}

// ActivateFlashRead enters flash-read mode for the address range configured
// in words 4-7.
func (d *Device) ActivateFlashRead(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateFlashRead, "flash-read")
}

// ActivateFlashWrite enters flash-write mode for the address range
// configured in words 4-7.
func (d *Device) ActivateFlashWrite(ctx context.Context) error {
	return d.activate(ctx, protocol.CmdActivateFlashWrite, "flash-write")
}

// activate issues a mode-activation command. There is no response payload;
// success is the absence of a transport error.
func (d *Device) activate(ctx context.Context, code byte, mode string) error {
	if err := d.sync(ctx); err != nil {
		return err
	}
	if err := d.writeCommand(ctx, code); err != nil {
		return err
	}
	d.logDebug("mode activated", "mode", mode)
	return nil
}

// readEncryptTable fetches the raw 32-word table. No command-active
// follows; the device stays ready for the configuration read.
func (d *Device) readEncryptTable(ctx context.Context) ([]uint16, error) {
	if err := d.sync(ctx); err != nil {
		return nil, err
	}
	if err := d.writeCommand(ctx, protocol.CmdReadEncryptTable); err != nil {
		return nil, err
	}

	buf := make([]byte, protocol.CipherTableWords*protocol.WordBytes)
	if err := d.transport.BulkRead(ctx, usb.EndpointFifoRead, buf); err != nil {
		return nil, err
	}
	return protocol.BytesToWords(buf), nil
}

func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, keysAndValues...)
	}
}

func (d *Device) logInfo(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Info(msg, keysAndValues...)
	}
}

func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Error(msg, keysAndValues...)
	}
}
