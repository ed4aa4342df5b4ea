package binex

import (
	"encoding/binary"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/de-bkg/gognss/pkg/rinex"
)

// GPSRawEphemeris is the BINEX 0x01 GPS raw ephemeris payload: a 77-byte
// fixed-size frame (1 PRN byte + 4-byte time-of-week + 72 bytes of
// subframe words), per spec.md section 4.5. Each constellation variant
// "declares a fixed encoded size used to validate the message length
// before decoding"; GPSRawEphemerisEncodedLen is that size for this one.
type GPSRawEphemeris struct {
	PRN      uint8
	TOW      uint32
	Subframe [72]byte
}

// GPSRawEphemerisEncodedLen is the fixed wire size of GPSRawEphemeris.
const GPSRawEphemerisEncodedLen = 1 + 4 + 72

// Encode serialises the raw GPS ephemeris frame, big-endian, per the
// byte layout spec.md section 4.5 names (1+4 time-of-week plus 72 bytes
// of subframe).
func (e GPSRawEphemeris) Encode() []byte {
	out := make([]byte, GPSRawEphemerisEncodedLen)
	out[0] = e.PRN
	binary.BigEndian.PutUint32(out[1:5], e.TOW)
	copy(out[5:], e.Subframe[:])
	return out
}

// DecodeGPSRawEphemeris parses a 77-byte raw GPS ephemeris payload. A
// payload of any other length is rejected with a ProtocolError before any
// field is decoded.
func DecodeGPSRawEphemeris(buf []byte) (GPSRawEphemeris, error) {
	if len(buf) != GPSRawEphemerisEncodedLen {
		return GPSRawEphemeris{}, &ProtocolError{Reason: "gps-raw-ephemeris: wrong length"}
	}
	var e GPSRawEphemeris
	e.PRN = buf[0]
	e.TOW = binary.BigEndian.Uint32(buf[1:5])
	copy(e.Subframe[:], buf[5:])
	return e, nil
}

// DecodedEphemeris wraps the constellation-specific decoded (Keplerian)
// ephemeris types pkg/rinex already defines, per spec.md section 4.5's
// "GPS decoded (structured Keplerian fields), and equivalents for
// GLO/GAL/BDS/QZSS". BINEX and RINEX share one in-memory ephemeris
// representation rather than duplicating the field tables.
type DecodedEphemeris struct {
	System gnss.System
	GPS    *rinex.EphGPS
	GLO    *rinex.EphGLO
	GAL    *rinex.EphGAL
	BDS    *rinex.EphBDS
	QZSS   *rinex.EphQZSS
}
