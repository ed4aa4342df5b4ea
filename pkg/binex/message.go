package binex

import (
	"bufio"
	"io"
)

// Message is one framed BINEX message: sync byte, record ID, and raw
// payload bytes. Record-specific types (MonumentGeoRecord, ...) are
// encoded to/decoded from Payload by the caller or by the convenience
// wrappers below.
type Message struct {
	Sync     SyncByte
	RecordID uint32
	Payload  []byte
}

// Encode serialises the message: sync | bnxi(record-id) | bnxi(length) |
// payload | crc, per spec.md section 4.5.
func (m Message) Encode() []byte {
	endian := m.Sync.Endian
	recID := EncodeBNXI(m.RecordID, endian)
	length := EncodeBNXI(uint32(len(m.Payload)), endian)

	framed := make([]byte, 0, len(recID)+len(length)+len(m.Payload))
	framed = append(framed, recID...)
	framed = append(framed, length...)
	framed = append(framed, m.Payload...)

	crc := ComputeCRC(len(m.Payload), framed)
	crcLen := CRCByteLen(len(m.Payload))

	out := make([]byte, 0, 1+len(framed)+crcLen)
	out = append(out, m.Sync.Byte())
	out = append(out, framed...)
	for i := 0; i < crcLen; i++ {
		var shift uint
		if endian == BigEndian {
			shift = 8 * uint(crcLen-1-i)
		} else {
			shift = 8 * uint(i)
		}
		out = append(out, byte(crc>>shift))
	}
	return out
}

// NewMonumentMessage wraps a MonumentGeoRecord as a Message with record ID
// 0x00.
func NewMonumentMessage(sync SyncByte, rec MonumentGeoRecord) Message {
	return Message{Sync: sync, RecordID: RecordGeodeticMarker, Payload: rec.Encode()}
}

// Decoder implements the Hunt -> Sync -> RecordId -> Length -> Payload ->
// Crc -> Emit state machine spec.md section 4.5 describes, reading from a
// buffered byte source. It mirrors the shape of the RINEX *Decoder family
// (a struct wrapping a reader, one step method), generalised here from
// line-oriented to byte-oriented framing.
type Decoder struct {
	r *bufio.Reader

	// Discarded counts bytes skipped while hunting for a sync byte: bytes
	// that are not a legal sync value, and sync bytes of a stream variant
	// this package does not support (see SyncByte.Supported).
	Discarded int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next decodes the next message from the stream. It returns io.EOF when
// the stream is exhausted cleanly at a message boundary. A malformed or
// corrupt message is returned as its DecodeError, IntegrityError or
// ProtocolError; the following call resumes hunting for a sync byte after
// the bytes that message consumed.
func (d *Decoder) Next() (Message, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Message{}, err
		}
		sync, ok := ParseSyncByte(b)
		if !ok {
			d.Discarded++
			continue
		}
		if !sync.Supported() {
			d.Discarded++
			continue
		}

		msg, err := d.readAfterSync(sync)
		if err != nil {
			return Message{}, err
		}
		return msg, nil
	}
}

func (d *Decoder) resynchronisable(err error) bool {
	switch err.(type) {
	case *DecodeError, *IntegrityError, *ProtocolError:
		return true
	default:
		return false
	}
}

func (d *Decoder) readAfterSync(sync SyncByte) (Message, error) {
	endian := sync.Endian

	recID, recIDBytes, err := d.readBNXI(endian)
	if err != nil {
		return Message{}, err
	}
	length, lengthBytes, err := d.readBNXI(endian)
	if err != nil {
		return Message{}, err
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return Message{}, &ProtocolError{Reason: "payload-truncated"}
	}

	crcLen := CRCByteLen(int(length))
	crcBytes := make([]byte, crcLen)
	if _, err := io.ReadFull(d.r, crcBytes); err != nil {
		return Message{}, &ProtocolError{Reason: "crc-truncated"}
	}

	var wantCRC uint32
	for i := 0; i < crcLen; i++ {
		var shift uint
		if endian == BigEndian {
			shift = 8 * uint(crcLen-1-i)
		} else {
			shift = 8 * uint(i)
		}
		wantCRC |= uint32(crcBytes[i]) << shift
	}

	framed := make([]byte, 0, recIDBytes+lengthBytes+int(length))
	framed = append(framed, EncodeBNXI(recID, endian)...)
	framed = append(framed, EncodeBNXI(length, endian)...)
	framed = append(framed, payload...)

	gotCRC := ComputeCRC(int(length), framed)
	if gotCRC != wantCRC {
		return Message{}, &IntegrityError{Want: wantCRC, Got: gotCRC}
	}

	return Message{Sync: sync, RecordID: recID, Payload: payload}, nil
}

// readBNXI reads one byte at a time, stopping as soon as a byte with the
// continuation bit clear is seen (or after 4 bytes, which DecodeBNXI
// reports as DecodeError{bnxi-overlong}), so it never over-reads past the
// varint's own boundary.
func (d *Decoder) readBNXI(endian Endianness) (uint32, int, error) {
	var buf [4]byte
	n := 0
	for n < 4 {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, 0, &ProtocolError{Reason: "bnxi-truncated"}
		}
		buf[n] = b
		n++
		if b&bnxiContinue == 0 {
			break
		}
	}
	return DecodeBNXI(buf[:n], endian)
}
