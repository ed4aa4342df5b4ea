// Package binex implements a decoder/encoder for the BINEX binary exchange
// format: a length-prefixed framing layer carrying geodetic-marker,
// ephemeris and solution records. No example repository in the retrieval
// pack ships a BINEX codec, so this package follows the fixed-column
// RINEX decoder family's shape (a small struct wrapping an io.Reader, one
// step method advancing a state machine) rather than adapting existing
// code, per spec.md section 4.5.
package binex

import "fmt"

// Endianness is the byte order a sync byte declares for the rest of the
// message (BNXI assembly order, and multi-byte fields inside records).
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Direction is the stream direction a sync byte declares. Reverse streams
// are recognised, and Decoder skips their sync bytes while hunting.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

// CrcVariant is the CRC scheme a sync byte declares. Enhanced CRC is
// recognised, and Decoder skips its sync bytes while hunting; only
// Standard is implemented.
type CrcVariant uint8

const (
	StandardCrc CrcVariant = iota
	EnhancedCrc
)

// SyncByte decomposes one of the eight legal BINEX sync byte values.
type SyncByte struct {
	Direction Direction
	Endian    Endianness
	Crc       CrcVariant
}

// The eight legal sync byte values, named as the BINEX conventions
// document names them (forward/reverse, little/big endian, standard/
// enhanced CRC).
const (
	SyncFwdLEStandard  byte = 0xC2
	SyncFwdBEStandard  byte = 0xE2
	SyncFwdLEEnhanced  byte = 0xC8
	SyncFwdBEEnhanced  byte = 0xE8
	SyncRevLEStandard  byte = 0xD2
	SyncRevBEStandard  byte = 0xF2
	SyncRevLEEnhanced  byte = 0xD8
	SyncRevBEEnhanced  byte = 0xF8
)

// ParseSyncByte decomposes a raw sync byte into its taxonomy, or reports
// that the byte is not a legal sync value at all (caller stays in Hunt).
func ParseSyncByte(b byte) (SyncByte, bool) {
	switch b {
	case SyncFwdLEStandard:
		return SyncByte{Forward, LittleEndian, StandardCrc}, true
	case SyncFwdBEStandard:
		return SyncByte{Forward, BigEndian, StandardCrc}, true
	case SyncFwdLEEnhanced:
		return SyncByte{Forward, LittleEndian, EnhancedCrc}, true
	case SyncFwdBEEnhanced:
		return SyncByte{Forward, BigEndian, EnhancedCrc}, true
	case SyncRevLEStandard:
		return SyncByte{Reverse, LittleEndian, StandardCrc}, true
	case SyncRevBEStandard:
		return SyncByte{Reverse, BigEndian, StandardCrc}, true
	case SyncRevLEEnhanced:
		return SyncByte{Reverse, LittleEndian, EnhancedCrc}, true
	case SyncRevBEEnhanced:
		return SyncByte{Reverse, BigEndian, EnhancedCrc}, true
	default:
		return SyncByte{}, false
	}
}

// Byte re-assembles the raw sync byte value for this taxonomy.
func (s SyncByte) Byte() byte {
	switch {
	case s.Direction == Forward && s.Endian == LittleEndian && s.Crc == StandardCrc:
		return SyncFwdLEStandard
	case s.Direction == Forward && s.Endian == BigEndian && s.Crc == StandardCrc:
		return SyncFwdBEStandard
	case s.Direction == Forward && s.Endian == LittleEndian && s.Crc == EnhancedCrc:
		return SyncFwdLEEnhanced
	case s.Direction == Forward && s.Endian == BigEndian && s.Crc == EnhancedCrc:
		return SyncFwdBEEnhanced
	case s.Direction == Reverse && s.Endian == LittleEndian && s.Crc == StandardCrc:
		return SyncRevLEStandard
	case s.Direction == Reverse && s.Endian == BigEndian && s.Crc == StandardCrc:
		return SyncRevBEStandard
	case s.Direction == Reverse && s.Endian == LittleEndian && s.Crc == EnhancedCrc:
		return SyncRevLEEnhanced
	default:
		return SyncRevBEEnhanced
	}
}

// Supported reports whether this package implements the taxonomy fully.
// Only forward, standard-CRC streams (either endianness) are supported;
// reverse streams and enhanced CRC are recognised, and Decoder.Next skips
// their sync bytes (counting them in Discarded) rather than decoding them.
func (s SyncByte) Supported() bool {
	return s.Direction == Forward && s.Crc == StandardCrc
}

func (s SyncByte) String() string {
	dir := "fwd"
	if s.Direction == Reverse {
		dir = "rev"
	}
	end := "le"
	if s.Endian == BigEndian {
		end = "be"
	}
	crc := "std"
	if s.Crc == EnhancedCrc {
		crc = "enh"
	}
	return fmt.Sprintf("binex-sync(%s,%s,%s)", dir, end, crc)
}

// Record IDs for the payload kinds this package implements.
const (
	RecordGeodeticMarker uint32 = 0x00
	RecordEphemeris      uint32 = 0x01
	RecordSolutions      uint32 = 0x7f
)
