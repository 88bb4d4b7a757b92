package usb

import (
	"sync"
	"time"

	"github.com/google/gousb"
)

// DefaultPollInterval is the hotplug enumeration poll cadence.
const DefaultPollInterval = 100 * time.Millisecond

// EventKind classifies a hotplug notification.
type EventKind int

const (
	// DeviceAttached reports that the watched device appeared
	DeviceAttached EventKind = iota

	// DeviceDetached reports that the watched device disappeared
	DeviceDetached
)

func (k EventKind) String() string {
	switch k {
	case DeviceAttached:
		return "attached"
	case DeviceDetached:
		return "detached"
	}
	return "unknown"
}

// Event is a hotplug notification for the watched identity.
type Event struct {
	Kind      EventKind
	VendorID  uint16
	ProductID uint16
}

// EventFunc receives hotplug events. It is called from the watcher's
// background goroutine and should return quickly.
type EventFunc func(Event)

// Watcher is a cancellable background task that polls device enumeration
// for a VID/PID pair and reports presence changes. Close stops the polling
// goroutine and waits for it; no event is delivered after Close returns.
type Watcher struct {
	vid, pid uint16
	interval time.Duration
	fn       EventFunc
	poll     func() (bool, error)
	release  func()

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching for the given identity, delivering presence
// changes to fn. An interval of zero or less selects DefaultPollInterval.
func NewWatcher(vid, pid uint16, interval time.Duration, fn EventFunc) (*Watcher, error) {
	ctx := gousb.NewContext()
	poll := func() (bool, error) {
		return enumerate(ctx, vid, pid)
	}
	release := func() {
		_ = ctx.Close()
	}
	return newWatcher(vid, pid, interval, fn, poll, release), nil
}

// newWatcher wires a watcher around an injectable enumeration function.
func newWatcher(vid, pid uint16, interval time.Duration, fn EventFunc, poll func() (bool, error), release func()) *Watcher {
	if fn == nil {
		panic("event callback cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	w := &Watcher{
		vid:      vid,
		pid:      pid,
		interval: interval,
		fn:       fn,
		poll:     poll,
		release:  release,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// Close cancels the watcher and blocks until the polling goroutine has
// exited. It is safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
		if w.release != nil {
			w.release()
		}
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()

	present, _ := w.poll()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			now, err := w.poll()
			if err != nil {
				// Transient enumeration failures keep the last
				// known state.
				continue
			}
			if now == present {
				continue
			}
			present = now

			select {
			case <-w.done:
				return
			default:
			}

			kind := DeviceDetached
			if now {
				kind = DeviceAttached
			}
			w.fn(Event{Kind: kind, VendorID: w.vid, ProductID: w.pid})
		}
	}
}

// enumerate reports whether a device with the identity is currently
// attached. The opener callback always declines, so no device is opened.
func enumerate(ctx *gousb.Context, vid, pid uint16) (bool, error) {
	found := false
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor == gousb.ID(vid) && desc.Product == gousb.ID(pid) {
			found = true
		}
		return false
	})
	for _, dev := range devs {
		_ = dev.Close()
	}
	if err != nil {
		return false, err
	}
	return found, nil
}
