package usb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// DefaultTransferTimeout bounds a single bulk transfer attempt.
const DefaultTransferTimeout = 1 * time.Second

// interfaceNumber is the board's only USB interface.
const interfaceNumber = 0

// allEndpoints lists the board's endpoints in protocol order.
var allEndpoints = [...]Endpoint{
	EndpointFifoWrite,
	EndpointCommand,
	EndpointFifoRead,
	EndpointSync,
}

// Device is the gousb-backed Transport implementation. The zero value is
// not usable; construct with NewDevice. Device is single-owner: it must not
// be shared between goroutines without external serialization.
type Device struct {
	ctx      *gousb.Context
	dev      *gousb.Device
	intf     *gousb.Interface
	intfDone func()
	out      map[Endpoint]*gousb.OutEndpoint
	in       map[Endpoint]*gousb.InEndpoint
	timeout  time.Duration
}

// NewDevice creates a closed transport with the default transfer timeout.
func NewDevice() *Device {
	return &Device{timeout: DefaultTransferTimeout}
}

// SetTransferTimeout overrides the per-transfer deadline. It only affects
// transfers started afterwards.
func (d *Device) SetTransferTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.timeout = timeout
	}
}

// IsOpen reports whether the transport holds the device.
func (d *Device) IsOpen() bool {
	return d.dev != nil
}

// Open claims the device with the given identity, resets it, claims
// interface 0 and clears any halted endpoints. Opening an open transport is
// a no-op.
func (d *Device) Open(vid, pid uint16) error {
	if d.IsOpen() {
		return nil
	}
	if d.ctx == nil {
		d.ctx = gousb.NewContext()
	}

	dev, err := d.ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		return &TransportError{Op: "open", Err: err}
	}
	if dev == nil {
		return fmt.Errorf("device %04x:%04x: %w", vid, pid, ErrNotFound)
	}

	if err := dev.Reset(); err != nil {
		_ = dev.Close()
		return &TransportError{Op: "reset", Err: err}
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		_ = dev.Close()
		return &TransportError{Op: "claim interface", Err: err}
	}

	d.dev = dev
	d.intf = intf
	d.intfDone = done
	d.out = make(map[Endpoint]*gousb.OutEndpoint)
	d.in = make(map[Endpoint]*gousb.InEndpoint)

	for _, ep := range allEndpoints {
		if err := d.clearHalt(ep); err != nil {
			_ = d.Close()
			return err
		}
		if ep.IsIn() {
			in, err := intf.InEndpoint(ep.Number())
			if err != nil {
				_ = d.Close()
				return &TransportError{Op: "open endpoint", Endpoint: ep, Err: err}
			}
			d.in[ep] = in
		} else {
			out, err := intf.OutEndpoint(ep.Number())
			if err != nil {
				_ = d.Close()
				return &TransportError{Op: "open endpoint", Endpoint: ep, Err: err}
			}
			d.out[ep] = out
		}
	}

	return nil
}

// Close releases the interface and the device handle. A device that already
// detached is benign; other release failures are surfaced. The enumeration
// context is kept so the transport can be reopened.
func (d *Device) Close() error {
	if !d.IsOpen() {
		return nil
	}

	if d.intf != nil {
		d.intf.Close()
	}
	if d.intfDone != nil {
		d.intfDone()
	}

	err := d.dev.Close()
	d.dev = nil
	d.intf = nil
	d.intfDone = nil
	d.out = nil
	d.in = nil

	if err != nil && !errors.Is(err, gousb.ErrorNoDevice) {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// BulkRead fills buf from an IN endpoint, retrying short reads until the
// buffer is complete. Each transfer attempt is bounded by the transfer
// timeout on top of ctx.
func (d *Device) BulkRead(ctx context.Context, ep Endpoint, buf []byte) error {
	in, ok := d.in[ep]
	if !ok {
		return &TransportError{Op: "bulk read", Endpoint: ep, Err: ErrNotOpen}
	}

	for off := 0; off < len(buf); {
		n, err := d.readChunk(ctx, in, buf[off:])
		if err != nil {
			return &TransportError{Op: "bulk read", Endpoint: ep, Err: err}
		}
		if n == 0 {
			return &TransportError{Op: "bulk read", Endpoint: ep, Err: ErrZeroLengthTransfer}
		}
		off += n
	}
	return nil
}

// BulkWrite drains buf into an OUT endpoint, retrying short writes until the
// buffer is complete. Each transfer attempt is bounded by the transfer
// timeout on top of ctx.
func (d *Device) BulkWrite(ctx context.Context, ep Endpoint, buf []byte) error {
	out, ok := d.out[ep]
	if !ok {
		return &TransportError{Op: "bulk write", Endpoint: ep, Err: ErrNotOpen}
	}

	for off := 0; off < len(buf); {
		n, err := d.writeChunk(ctx, out, buf[off:])
		if err != nil {
			return &TransportError{Op: "bulk write", Endpoint: ep, Err: err}
		}
		if n == 0 {
			return &TransportError{Op: "bulk write", Endpoint: ep, Err: ErrZeroLengthTransfer}
		}
		off += n
	}
	return nil
}

func (d *Device) readChunk(ctx context.Context, in *gousb.InEndpoint, buf []byte) (int, error) {
	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return in.ReadContext(tctx, buf)
}

func (d *Device) writeChunk(ctx context.Context, out *gousb.OutEndpoint, buf []byte) (int, error) {
	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return out.WriteContext(tctx, buf)
}

// clearHalt issues the standard CLEAR_FEATURE(ENDPOINT_HALT) request for an
// endpoint. gousb exposes no clear-halt helper, so the request goes through
// the control endpoint directly.
func (d *Device) clearHalt(ep Endpoint) error {
	const (
		reqTypeEndpointOut = 0x02 // standard request, endpoint recipient
		reqClearFeature    = 0x01
		featureHalt        = 0x00
	)
	if _, err := d.dev.Control(reqTypeEndpointOut, reqClearFeature, featureHalt, uint16(ep), nil); err != nil {
		return &TransportError{Op: "clear halt", Endpoint: ep, Err: err}
	}
	return nil
}
