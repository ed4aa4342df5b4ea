package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBNXI_BigEndian(t *testing.T) {
	v, n, err := DecodeBNXI([]byte{0x7f, 0x81, 0x7f}, BigEndian)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x7f), v)
	assert.Equal(t, 1, n)
}

func TestEncodeDecodeBNXI_Roundtrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 0x1fffff, 0x200000, 0x0fffffff} {
		for _, endian := range []Endianness{BigEndian, LittleEndian} {
			enc := EncodeBNXI(v, endian)
			got, n, err := DecodeBNXI(enc, endian)
			assert.NoError(t, err)
			assert.Equal(t, v, got)
			assert.Equal(t, len(enc), n)
		}
	}
}

func TestEncodeBNXI_MinimumLength(t *testing.T) {
	assert.Len(t, EncodeBNXI(0, BigEndian), 1)
	assert.Len(t, EncodeBNXI(0x7f, BigEndian), 1)
	assert.Len(t, EncodeBNXI(0x80, BigEndian), 2)
	assert.Len(t, EncodeBNXI(0x3fff, BigEndian), 2)
	assert.Len(t, EncodeBNXI(0x4000, BigEndian), 3)
}

func TestDecodeBNXI_Overlong(t *testing.T) {
	_, _, err := DecodeBNXI([]byte{0x81, 0x81, 0x81, 0x81}, BigEndian)
	assert.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, "bnxi-overlong", de.Reason)
}

func TestDecodeBNXI_Truncated(t *testing.T) {
	_, _, err := DecodeBNXI([]byte{0x81, 0x81}, BigEndian)
	assert.Error(t, err)
}
