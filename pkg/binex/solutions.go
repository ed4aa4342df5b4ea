package binex

import "encoding/binary"

// Solution sub-field IDs, per spec.md section 4.5: "position/velocity/
// clock tagged sub-fields selected by field ID".
const (
	FieldECEFPosition     uint8 = 1
	FieldGeodeticPosition uint8 = 2
	FieldECEFVelocity     uint8 = 3
	FieldGeodeticVelocity uint8 = 4
	FieldReceiverTimeSys  uint8 = 5
	FieldClockOffset      uint8 = 6
	FieldClockOffsetDrift uint8 = 7
	FieldExtraString      uint8 = 127
)

// SolutionField is one tagged sub-field of a 0x7f solutions record.
type SolutionField struct {
	FieldID uint8
	// Values holds the float64 payload for numeric fields (1-7); String
	// holds the payload for FieldExtraString (127).
	Values []float64
	String string
}

// SolutionRecord is the BINEX 0x7f processed-solutions record: a list of
// tagged position/velocity/clock/extra sub-fields.
type SolutionRecord struct {
	Fields []SolutionField
}

func fieldWidth(id uint8) int {
	switch id {
	case FieldECEFPosition, FieldGeodeticPosition, FieldECEFVelocity, FieldGeodeticVelocity:
		return 3
	case FieldReceiverTimeSys, FieldClockOffset:
		return 1
	case FieldClockOffsetDrift:
		return 2
	default:
		return 0
	}
}

// Encode serialises the solution record as a sequence of
// {fieldID(1) | values...} frames, each numeric value an 8-byte
// big-endian IEEE-754 float, and the extra-string field length-prefixed
// by 1 byte.
func (r SolutionRecord) Encode() []byte {
	out := []byte{}
	for _, f := range r.Fields {
		out = append(out, f.FieldID)
		if f.FieldID == FieldExtraString {
			out = append(out, byte(len(f.String)))
			out = append(out, []byte(f.String)...)
			continue
		}
		for _, v := range f.Values {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], floatBits(v))
			out = append(out, b[:]...)
		}
	}
	return out
}

// DecodeSolutionRecord parses a 0x7f payload previously produced by
// Encode.
func DecodeSolutionRecord(buf []byte) (SolutionRecord, error) {
	var r SolutionRecord
	pos := 0
	for pos < len(buf) {
		id := buf[pos]
		pos++
		if id == FieldExtraString {
			if pos >= len(buf) {
				return SolutionRecord{}, &DecodeError{Reason: "solutions-truncated-string-length"}
			}
			n := int(buf[pos])
			pos++
			if pos+n > len(buf) {
				return SolutionRecord{}, &DecodeError{Reason: "solutions-truncated-string"}
			}
			r.Fields = append(r.Fields, SolutionField{FieldID: id, String: string(buf[pos : pos+n])})
			pos += n
			continue
		}

		width := fieldWidth(id)
		if width == 0 {
			return SolutionRecord{}, &DecodeError{Reason: "solutions-unknown-field"}
		}
		if pos+width*8 > len(buf) {
			return SolutionRecord{}, &DecodeError{Reason: "solutions-truncated-values"}
		}
		vals := make([]float64, width)
		for i := 0; i < width; i++ {
			vals[i] = bitsFloat(binary.BigEndian.Uint64(buf[pos : pos+8]))
			pos += 8
		}
		r.Fields = append(r.Fields, SolutionField{FieldID: id, Values: vals})
	}
	return r, nil
}
