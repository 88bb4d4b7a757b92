package vlfd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smims/go-vlfd/protocol"
	"github.com/smims/go-vlfd/usb"
)

// mockTransport simulates the board's four bulk endpoints for testing.
// Sync reads answer with a fixed ready byte, FIFO reads serve queued
// payloads, and every write is recorded.
type mockTransport struct {
	open      bool
	openErr   error
	syncByte  byte
	fifoReads [][]byte
	writes    []endpointWrite
	closes    int
}

type endpointWrite struct {
	ep   usb.Endpoint
	data []byte
}

func newMockTransport() *mockTransport {
	return &mockTransport{syncByte: 1}
}

func (m *mockTransport) Open(vid, pid uint16) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	return nil
}

func (m *mockTransport) Close() error {
	m.open = false
	m.closes++
	return nil
}

func (m *mockTransport) IsOpen() bool {
	return m.open
}

func (m *mockTransport) BulkRead(_ context.Context, ep usb.Endpoint, buf []byte) error {
	switch ep {
	case usb.EndpointSync:
		buf[0] = m.syncByte
	case usb.EndpointFifoRead:
		if len(m.fifoReads) == 0 {
			return &usb.TransportError{Op: "bulk read", Endpoint: ep, Err: usb.ErrZeroLengthTransfer}
		}
		copy(buf, m.fifoReads[0])
		m.fifoReads = m.fifoReads[1:]
	}
	return nil
}

func (m *mockTransport) BulkWrite(_ context.Context, ep usb.Endpoint, buf []byte) error {
	m.writes = append(m.writes, endpointWrite{ep: ep, data: append([]byte(nil), buf...)})
	return nil
}

func (m *mockTransport) queueFifoRead(data []byte) {
	m.fifoReads = append(m.fifoReads, data)
}

// commandFrames returns the recorded two-byte command writes, skipping the
// one-byte sync probes.
func (m *mockTransport) commandFrames() [][]byte {
	var frames [][]byte
	for _, w := range m.writes {
		if w.ep == usb.EndpointCommand && len(w.data) == 2 {
			frames = append(frames, w.data)
		}
	}
	return frames
}

func (m *mockTransport) fifoWrites() [][]byte {
	var writes [][]byte
	for _, w := range m.writes {
		if w.ep == usb.EndpointFifoWrite {
			writes = append(writes, w.data)
		}
	}
	return writes
}

// mockLogger records messages by level.
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *mockLogger) Debug(msg string, kv ...interface{}) { l.debugMsgs = append(l.debugMsgs, msg) }
func (l *mockLogger) Info(msg string, kv ...interface{})  { l.infoMsgs = append(l.infoMsgs, msg) }
func (l *mockLogger) Error(msg string, kv ...interface{}) { l.errorMsgs = append(l.errorMsgs, msg) }

// testRawTable is the raw encryption table the mock device hands out.
func testRawTable() []uint16 {
	raw := make([]uint16, protocol.CipherTableWords)
	for i := range raw {
		raw[i] = uint16(0x1000 + i*7)
	}
	return raw
}

// goodConfigWords is a configuration bank that passes every EnterIOMode
// precondition.
func goodConfigWords() [protocol.ConfigWords]uint16 {
	var words [protocol.ConfigWords]uint16
	words[31] = 0x3210                    // security key
	words[32] = 0x0300                    // firmware version
	words[33] = 16                        // fifo depth
	words[37] = protocol.AbilityVeriComm  // capabilities
	words[48] = protocol.StatusProgrammed // status
	return words
}

// wireConfig encrypts a configuration bank the way the device would, so
// that a freshly-keyed session decrypts it back to words. The session's
// decode cursor is zero whenever a config read starts: the bank is 64 words
// and 64 is a multiple of the keystream cycle.
func wireConfig(t *testing.T, words [protocol.ConfigWords]uint16) []byte {
	t.Helper()
	var c protocol.Cipher
	if err := c.LoadTable(testRawTable()); err != nil {
		t.Fatalf("LoadTable() failed: %v", err)
	}
	wire := make([]uint16, len(words))
	copy(wire, words[:])
	c.Decrypt(wire)
	return protocol.WordsToBytes(wire)
}

// decodeHostWrite recovers the plaintext of words the host encrypted with a
// fresh encode cursor.
func decodeHostWrite(t *testing.T, wire []byte) []uint16 {
	t.Helper()
	var c protocol.Cipher
	if err := c.LoadTable(testRawTable()); err != nil {
		t.Fatalf("LoadTable() failed: %v", err)
	}
	words := protocol.BytesToWords(wire)
	c.Encrypt(words)
	return words
}

// setupSession queues a full session handshake (encryption table plus one
// configuration read) on a fresh mock transport.
func setupSession(words [protocol.ConfigWords]uint16, opts ...Option) func(t *testing.T) (*Device, *mockTransport) {
	return func(t *testing.T) (*Device, *mockTransport) {
		t.Helper()
		mock := newMockTransport()
		mock.queueFifoRead(protocol.WordsToBytes(testRawTable()))
		mock.queueFifoRead(wireConfig(t, words))
		return New(mock, opts...), mock
	}
}

func assertFrames(t *testing.T, got [][]byte, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d command frames % X, want %d % X", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i][0] != want[i][0] || got[i][1] != want[i][1] {
			t.Errorf("command frame %d = % X, want % X", i, got[i], want[i])
		}
	}
}

func TestDeviceInitialize(t *testing.T) {
	d, mock := setupSession(goodConfigWords())(t)
	ctx := context.Background()

	if err := d.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := d.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	cfg := d.Config()
	if got := cfg.VersionRaw(); got != 0x0300 {
		t.Errorf("VersionRaw() = 0x%04X, want 0x0300", got)
	}
	if got := cfg.FIFODepth(); got != 16 {
		t.Errorf("FIFODepth() = %d, want 16", got)
	}
	if !cfg.IsProgrammed() {
		t.Error("IsProgrammed() = false, want true")
	}
	if !cfg.HasVeriComm() {
		t.Error("HasVeriComm() = false, want true")
	}

	assertFrames(t, mock.commandFrames(), [][]byte{
		{0x01, 0x0f}, // read encryption table
		{0x01, 0x01}, // read config
		{0x01, 0x00}, // command active
	})
}

func TestDeviceOpenNotFound(t *testing.T) {
	mock := newMockTransport()
	mock.openErr = fmt.Errorf("device 2200:2008: %w", usb.ErrNotFound)
	d := New(mock)

	err := d.Open()
	var notFound *DeviceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Open() = %v, want *DeviceNotFoundError", err)
	}
	if notFound.VendorID != protocol.VendorID || notFound.ProductID != protocol.ProductID {
		t.Errorf("error identity = %04x:%04x, want %04x:%04x",
			notFound.VendorID, notFound.ProductID, protocol.VendorID, protocol.ProductID)
	}
}

func TestDeviceSyncTimeout(t *testing.T) {
	mock := newMockTransport()
	mock.syncByte = 0 // device never reports ready
	d := New(mock, WithSyncTimeout(10*time.Millisecond))

	if err := d.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	err := d.CommandActive(context.Background())
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("CommandActive() = %v, want *TimeoutError", err)
	}
	if timeout.Op != "sync" {
		t.Errorf("TimeoutError.Op = %q, want %q", timeout.Op, "sync")
	}
}

func TestDeviceSyncHonorsContext(t *testing.T) {
	mock := newMockTransport()
	mock.syncByte = 0
	d := New(mock, WithSyncTimeout(time.Hour))

	if err := d.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.CommandActive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("CommandActive() = %v, want context.Canceled", err)
	}
}

func TestEnterIOModePreconditionOrdering(t *testing.T) {
	badAll := goodConfigWords()
	badAll[32] = 0x0100 // below minimum
	badAll[37] = 0      // no capabilities
	badAll[48] = 0      // not programmed

	notProgrammed := goodConfigWords()
	notProgrammed[37] = 0
	notProgrammed[48] = 0

	noCapability := goodConfigWords()
	noCapability[37] = 0

	tests := []struct {
		name  string
		words [protocol.ConfigWords]uint16
		check func(t *testing.T, err error)
	}{
		{
			name:  "version checked first",
			words: badAll,
			check: func(t *testing.T, err error) {
				var mismatch *VersionMismatchError
				if !errors.As(err, &mismatch) {
					t.Fatalf("EnterIOMode() = %v, want *VersionMismatchError", err)
				}
				if mismatch.Expected != protocol.RequiredVersion || mismatch.Actual != 0x0100 {
					t.Errorf("mismatch = 0x%04X/0x%04X, want 0x%04X/0x0100",
						mismatch.Expected, mismatch.Actual, protocol.RequiredVersion)
				}
			},
		},
		{
			name:  "programmed checked second",
			words: notProgrammed,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotProgrammed) {
					t.Fatalf("EnterIOMode() = %v, want ErrNotProgrammed", err)
				}
			},
		},
		{
			name:  "capability checked last",
			words: noCapability,
			check: func(t *testing.T, err error) {
				var unavailable *FeatureUnavailableError
				if !errors.As(err, &unavailable) {
					t.Fatalf("EnterIOMode() = %v, want *FeatureUnavailableError", err)
				}
				if unavailable.Feature != "vericomm" {
					t.Errorf("Feature = %q, want %q", unavailable.Feature, "vericomm")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := setupSession(tt.words)(t)
			err := d.EnterIOMode(context.Background(), DefaultIoSettings())
			tt.check(t, err)

			// A failed precondition must leave no device-side state
			// change: nothing may reach the FIFO-write endpoint.
			if writes := mock.fifoWrites(); len(writes) != 0 {
				t.Errorf("%d FIFO writes after failed precondition, want 0", len(writes))
			}
		})
	}
}

func TestEnterIOModeWritesSettings(t *testing.T) {
	logger := &mockLogger{}
	d, mock := setupSession(goodConfigWords(), WithLogger(logger))(t)

	key := uint16(0x1234)
	settings := &IoSettings{
		ClockHighDelay:    8,
		ClockLowDelay:     9,
		ISV:               3,
		ClockCheckEnabled: true,
		ModeSelector:      2,
		LicenceKey:        &key,
	}

	if err := d.EnterIOMode(context.Background(), settings); err != nil {
		t.Fatalf("EnterIOMode() failed: %v", err)
	}

	writes := mock.fifoWrites()
	if len(writes) != 1 {
		t.Fatalf("got %d FIFO writes, want 1 (config bank)", len(writes))
	}
	bank := decodeHostWrite(t, writes[0])
	if len(bank) != protocol.ConfigWords {
		t.Fatalf("config write is %d words, want %d", len(bank), protocol.ConfigWords)
	}
	if bank[0] != 8 || bank[1] != 9 {
		t.Errorf("clock delays on wire = %d/%d, want 8/9", bank[0], bank[1])
	}
	if bank[2] != (3<<4)|1 {
		t.Errorf("word 2 on wire = 0x%04X, want 0x0031", bank[2])
	}
	if bank[3] != 0x0200 {
		t.Errorf("word 3 on wire = 0x%04X, want 0x0200", bank[3])
	}
	if bank[31] != 0x1234 {
		t.Errorf("licence key on wire = 0x%04X, want 0x1234", bank[31])
	}

	assertFrames(t, mock.commandFrames(), [][]byte{
		{0x01, 0x0f}, // read encryption table
		{0x01, 0x01}, // read config
		{0x01, 0x00}, // command active
		{0x01, 0x11}, // write config
		{0x01, 0x00}, // command active
		{0x01, 0x03}, // activate vericomm
	})

	if len(logger.infoMsgs) == 0 {
		t.Error("EnterIOMode logged no info message")
	}
}

func TestTransferIO(t *testing.T) {
	d, mock := setupSession(goodConfigWords())(t)
	ctx := context.Background()
	if err := d.EnsureSession(ctx); err != nil {
		t.Fatalf("EnsureSession() failed: %v", err)
	}

	want := []uint16{0xAAAA, 0x5555, 0x0F0F}
	{
		var c protocol.Cipher
		if err := c.LoadTable(testRawTable()); err != nil {
			t.Fatal(err)
		}
		wire := append([]uint16(nil), want...)
		c.Decrypt(wire)
		mock.queueFifoRead(protocol.WordsToBytes(wire))
	}

	tx := []uint16{0x1111, 0x2222}
	rx := make([]uint16, 3)
	if err := d.TransferIO(ctx, tx, rx); err != nil {
		t.Fatalf("TransferIO() failed: %v", err)
	}

	for i := range want {
		if rx[i] != want[i] {
			t.Errorf("rx[%d] = 0x%04X, want 0x%04X", i, rx[i], want[i])
		}
	}

	writes := mock.fifoWrites()
	if len(writes) != 1 {
		t.Fatalf("got %d FIFO writes, want 1", len(writes))
	}
	plain := decodeHostWrite(t, writes[0])
	if plain[0] != 0x1111 || plain[1] != 0x2222 {
		t.Errorf("decoded tx = %04X, want [1111 2222]", plain)
	}
}

func TestTransferIONotOpen(t *testing.T) {
	d := New(newMockTransport())
	err := d.TransferIO(context.Background(), []uint16{1}, []uint16{0})
	if !errors.Is(err, ErrDeviceNotOpen) {
		t.Errorf("TransferIO() = %v, want ErrDeviceNotOpen", err)
	}
}

func TestExitIOMode(t *testing.T) {
	t.Run("closed session is a no-op", func(t *testing.T) {
		mock := newMockTransport()
		d := New(mock)
		if err := d.ExitIOMode(context.Background()); err != nil {
			t.Fatalf("ExitIOMode() = %v, want nil", err)
		}
		if len(mock.writes) != 0 {
			t.Errorf("%d writes on closed session, want 0", len(mock.writes))
		}
	})

	t.Run("open session goes idle and closes", func(t *testing.T) {
		d, mock := setupSession(goodConfigWords())(t)
		ctx := context.Background()
		if err := d.EnsureSession(ctx); err != nil {
			t.Fatalf("EnsureSession() failed: %v", err)
		}
		if err := d.ExitIOMode(ctx); err != nil {
			t.Fatalf("ExitIOMode() failed: %v", err)
		}

		frames := mock.commandFrames()
		last := frames[len(frames)-1]
		if last[0] != 0x01 || last[1] != 0x00 {
			t.Errorf("last command frame = % X, want 01 00", last)
		}
		if mock.closes != 1 {
			t.Errorf("transport closed %d times, want 1", mock.closes)
		}
		if d.IsOpen() {
			t.Error("device still open after ExitIOMode")
		}
	})
}

func TestActivateCommands(t *testing.T) {
	tests := []struct {
		name     string
		activate func(*Device, context.Context) error
		want     byte
	}{
		{"programmer", (*Device).ActivateProgrammer, 0x02},
		{"vericomm", (*Device).ActivateVeriComm, 0x03},
		{"verisdk", (*Device).ActivateVeriSDK, 0x04},
		{"flash read", (*Device).ActivateFlashRead, 0x05},
		{"veriinstrument", (*Device).ActivateVeriInstrument, 0x08},
		{"verilink", (*Device).ActivateVeriLink, 0x09},
		{"verisoc", (*Device).ActivateVeriSoC, 0x0a},
		{"vericomm pro", (*Device).ActivateVeriCommPro, 0x0b},
		{"flash write", (*Device).ActivateFlashWrite, 0x15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockTransport()
			d := New(mock)
			if err := d.Open(); err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			if err := tt.activate(d, context.Background()); err != nil {
				t.Fatalf("activation failed: %v", err)
			}
			assertFrames(t, mock.commandFrames(), [][]byte{{0x01, tt.want}})
		})
	}
}

func TestResetEngine(t *testing.T) {
	mock := newMockTransport()
	d := New(mock)
	if err := d.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := d.ResetEngine(context.Background()); err != nil {
		t.Fatalf("ResetEngine() failed: %v", err)
	}

	if len(mock.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(mock.writes))
	}
	w := mock.writes[0]
	if w.ep != usb.EndpointCommand || len(w.data) != 1 || w.data[0] != 0x02 {
		t.Errorf("reset wrote % X to %s, want 02 to command", w.data, w.ep)
	}
}

func TestLicenceFor(t *testing.T) {
	d, _ := setupSession(goodConfigWords())(t)
	if err := d.EnsureSession(context.Background()); err != nil {
		t.Fatalf("EnsureSession() failed: %v", err)
	}

	got := d.LicenceFor(0x8421)
	want := protocol.LicenceGen(0x3210, 0x8421)
	if got != want {
		t.Errorf("LicenceFor(0x8421) = 0x%04X, want 0x%04X", got, want)
	}
}

func TestNewPanicsOnNilTransport(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}
