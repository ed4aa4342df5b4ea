package binex

import "fmt"

// DecodeError reports a malformed BNXI varint or record payload.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("binex: decode error: %s", e.Reason)
}

// IntegrityError reports a CRC mismatch.
type IntegrityError struct {
	Want, Got uint32
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("binex: crc mismatch: want %#x got %#x", e.Want, e.Got)
}

// Unsupported reports a recognised but unimplemented feature, e.g. a
// reverse stream or enhanced-CRC sync byte.
type Unsupported struct {
	Feature string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("binex: unsupported: %s", e.Feature)
}

// ProtocolError reports a codec state violation, e.g. a record claiming a
// length inconsistent with its declared type.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("binex: protocol error: %s", e.Reason)
}
