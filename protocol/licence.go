package protocol

// LicenceGen derives the 16-bit licence value for a customer identifier from
// the security key the device reports in configuration word 31.
//
// Four 2-bit groups of the security key (bits 0-1, 4-5, 8-9, 12-13) select
// shift amounts for four 4-bit groups of the customer identifier. Each
// shifted group is folded to a nibble via (x>>4)|(x&0xf) and placed at bit
// 16, 20, 24 and 28 of a 32-bit accumulator; the accumulator is shifted
// right by 11, its halves ORed together, and the low 16 bits complemented.
// The bit layout is fixed by the device firmware.
func LicenceGen(securityKey, customerID uint16) uint16 {
	var acc uint32

	shift := securityKey & 0x0003
	group := (customerID & 0x000f) << 4
	group >>= shift
	group = (group >> 4) | (group & 0x000f)
	acc |= uint32(group) << 16

	shift = (securityKey & 0x0030) >> 4
	group = customerID & 0x00f0
	group >>= shift
	group = (group >> 4) | (group & 0x000f)
	acc |= uint32(group) << 20

	shift = (securityKey & 0x0300) >> 8
	group = (customerID & 0x0f00) >> 4
	group >>= shift
	group = (group >> 4) | (group & 0x000f)
	acc |= uint32(group) << 24

	shift = (securityKey & 0x3000) >> 12
	group = (customerID & 0xf000) >> 8
	group >>= shift
	group = (group >> 4) | (group & 0x000f)
	acc |= uint32(group) << 28

	acc >>= 11
	return ^uint16((acc >> 16) | (acc & 0x0000ffff))
}
