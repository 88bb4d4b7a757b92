package vlfd

// Defaults applied by DefaultIoSettings.
const (
	// DefaultClockDelay is the default VeriComm clock high/low delay
	DefaultClockDelay = 11

	// DefaultLicenceKey is the licence key installed when the caller does
	// not supply one
	DefaultLicenceKey = 0xff40
)

// IoSettings are the tuning parameters applied when entering VeriComm I/O
// mode. The value is consumed once per EnterIOMode call.
type IoSettings struct {
	// ClockHighDelay and ClockLowDelay set the VeriComm clock timing in
	// device clock units
	ClockHighDelay uint16
	ClockLowDelay  uint16

	// ISV is the device timing/voltage selector nibble
	ISV uint8

	// ClockCheckEnabled enables the VeriComm clock check
	ClockCheckEnabled bool

	// ModeSelector selects the VeriComm sub-mode
	ModeSelector uint8

	// LicenceKey, if non-nil, is installed into the configuration register
	// before entering I/O mode
	LicenceKey *uint16
}

// DefaultIoSettings returns the settings the board is normally driven with:
// 11/11 clock delays and the default licence key.
func DefaultIoSettings() *IoSettings {
	key := uint16(DefaultLicenceKey)
	return &IoSettings{
		ClockHighDelay: DefaultClockDelay,
		ClockLowDelay:  DefaultClockDelay,
		LicenceKey:     &key,
	}
}
