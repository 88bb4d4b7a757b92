package protocol

// Config is the host's mirror of the device configuration register bank:
// 64 positionally-defined 16-bit words. The zero value mirrors a bank of all
// zeroes. The mirror is replaced wholesale by SetWords after a device read
// and snapshotted by Words for a device write; it is never partially
// exchanged.
//
// Setters preserve unrelated bits within shared words, so a read-modify-write
// cycle round-trips reserved positions untouched.
type Config struct {
	words [ConfigWords]uint16
}

// ConfigFromWords builds a Config from a full register snapshot.
func ConfigFromWords(words [ConfigWords]uint16) Config {
	return Config{words: words}
}

// Words returns a snapshot of the full register bank.
func (c *Config) Words() [ConfigWords]uint16 {
	return c.words
}

// SetWords replaces the full register bank.
func (c *Config) SetWords(words [ConfigWords]uint16) {
	c.words = words
}

// VeriCommClockHighDelay returns the VeriComm clock high delay (word 0).
func (c *Config) VeriCommClockHighDelay() uint16 {
	return c.words[0]
}

// SetVeriCommClockHighDelay sets the VeriComm clock high delay.
func (c *Config) SetVeriCommClockHighDelay(delay uint16) {
	c.words[0] = delay
}

// VeriCommClockLowDelay returns the VeriComm clock low delay (word 1).
func (c *Config) VeriCommClockLowDelay() uint16 {
	return c.words[1]
}

// SetVeriCommClockLowDelay sets the VeriComm clock low delay.
func (c *Config) SetVeriCommClockLowDelay(delay uint16) {
	c.words[1] = delay
}

// VeriCommISV returns the ISV nibble (word 2, bits 4-7).
func (c *Config) VeriCommISV() uint8 {
	return uint8((c.words[2] >> 4) & 0x000f)
}

// SetVeriCommISV sets the ISV nibble without disturbing the clock-check
// enable bit that shares word 2.
func (c *Config) SetVeriCommISV(value uint8) {
	isv := uint16(value&0x0f) << 4
	c.words[2] = isv | (c.words[2] & 0x0001)
}

// VeriCommClockCheckEnabled reports the clock-check enable bit (word 2,
// bit 0).
func (c *Config) VeriCommClockCheckEnabled() bool {
	return c.words[2]&0x0001 != 0
}

// SetVeriCommClockCheckEnabled sets the clock-check enable bit.
func (c *Config) SetVeriCommClockCheckEnabled(enabled bool) {
	if enabled {
		c.words[2] |= 0x0001
	} else {
		c.words[2] &^= 0x0001
	}
}

// VeriSDKChannelSelector returns the VeriSDK channel selector (word 3, low
// byte).
func (c *Config) VeriSDKChannelSelector() uint8 {
	return uint8(c.words[3] & 0x00ff)
}

// SetVeriSDKChannelSelector sets the VeriSDK channel selector.
func (c *Config) SetVeriSDKChannelSelector(channel uint8) {
	c.words[3] = (c.words[3] & 0xff00) | uint16(channel)
}

// ModeSelector returns the mode selector (word 3, high byte).
func (c *Config) ModeSelector() uint8 {
	return uint8(c.words[3] >> 8)
}

// SetModeSelector sets the mode selector.
func (c *Config) SetModeSelector(mode uint8) {
	c.words[3] = (c.words[3] & 0x00ff) | (uint16(mode) << 8)
}

// FlashBeginBlockAddr returns the flash range begin block address (word 4).
func (c *Config) FlashBeginBlockAddr() uint16 {
	return c.words[4]
}

// SetFlashBeginBlockAddr sets the flash range begin block address.
func (c *Config) SetFlashBeginBlockAddr(addr uint16) {
	c.words[4] = addr
}

// FlashBeginClusterAddr returns the flash range begin cluster address
// (word 5).
func (c *Config) FlashBeginClusterAddr() uint16 {
	return c.words[5]
}

// SetFlashBeginClusterAddr sets the flash range begin cluster address.
func (c *Config) SetFlashBeginClusterAddr(addr uint16) {
	c.words[5] = addr
}

// FlashEndBlockAddr returns the flash range end block address (word 6).
func (c *Config) FlashEndBlockAddr() uint16 {
	return c.words[6]
}

// SetFlashEndBlockAddr sets the flash range end block address.
func (c *Config) SetFlashEndBlockAddr(addr uint16) {
	c.words[6] = addr
}

// FlashEndClusterAddr returns the flash range end cluster address (word 7).
func (c *Config) FlashEndClusterAddr() uint16 {
	return c.words[7]
}

// SetFlashEndClusterAddr sets the flash range end cluster address.
func (c *Config) SetFlashEndClusterAddr(addr uint16) {
	c.words[7] = addr
}

// LicenceKey returns the licence key (word 31).
func (c *Config) LicenceKey() uint16 {
	return c.words[31]
}

// SecurityKey returns the security key. It shares word 31 with the licence
// key: the device reports its security key there, and the host installs the
// derived licence key in the same position.
func (c *Config) SecurityKey() uint16 {
	return c.words[31]
}

// SetLicenceKey installs a licence key.
func (c *Config) SetLicenceKey(key uint16) {
	c.words[31] = key
}

// VersionRaw returns the packed firmware version (word 32).
func (c *Config) VersionRaw() uint16 {
	return c.words[32]
}

// MajorVersion returns the firmware major version byte.
func (c *Config) MajorVersion() uint8 {
	return uint8(c.words[32] >> 8)
}

// SubVersion returns the firmware sub-version nibble.
func (c *Config) SubVersion() uint8 {
	return uint8((c.words[32] >> 4) & 0x000f)
}

// PatchVersion returns the firmware patch-version nibble.
func (c *Config) PatchVersion() uint8 {
	return uint8(c.words[32] & 0x000f)
}

// FIFODepth returns the device FIFO depth in words (word 33).
func (c *Config) FIFODepth() uint16 {
	return c.words[33]
}

// FlashTotalBlocks returns the flash block count (word 34).
func (c *Config) FlashTotalBlocks() uint16 {
	return c.words[34]
}

// FlashBlockSize returns the flash block size (word 35).
func (c *Config) FlashBlockSize() uint16 {
	return c.words[35]
}

// FlashClusterSize returns the flash cluster size (word 36).
func (c *Config) FlashClusterSize() uint16 {
	return c.words[36]
}

// HasVeriComm reports VeriComm mode support.
func (c *Config) HasVeriComm() bool {
	return c.hasAbility(AbilityVeriComm)
}

// HasVeriInstrument reports VeriInstrument mode support.
func (c *Config) HasVeriInstrument() bool {
	return c.hasAbility(AbilityVeriInstrument)
}

// HasVeriLink reports VeriLink mode support.
func (c *Config) HasVeriLink() bool {
	return c.hasAbility(AbilityVeriLink)
}

// HasVeriSoC reports VeriSoC mode support.
func (c *Config) HasVeriSoC() bool {
	return c.hasAbility(AbilityVeriSoC)
}

// HasVeriCommPro reports VeriComm-Pro mode support.
func (c *Config) HasVeriCommPro() bool {
	return c.hasAbility(AbilityVeriCommPro)
}

// HasVeriSDK reports VeriSDK mode support.
func (c *Config) HasVeriSDK() bool {
	return c.hasAbility(AbilityVeriSDK)
}

// IsProgrammed reports whether the FPGA holds a valid bitstream (word 48,
// bit 0).
func (c *Config) IsProgrammed() bool {
	return c.words[48]&StatusProgrammed != 0
}

// IsPCBConnected reports whether the daughter PCB is attached (word 48,
// bit 8, inverted sense).
func (c *Config) IsPCBConnected() bool {
	return c.words[48]&StatusPCBDisconnected == 0
}

// VeriCommClockContinues reports whether the VeriComm clock keeps running
// (word 49, bit 0, inverted sense).
func (c *Config) VeriCommClockContinues() bool {
	return c.words[49]&0x0001 == 0
}

func (c *Config) hasAbility(mask uint16) bool {
	return c.words[37]&mask != 0
}
