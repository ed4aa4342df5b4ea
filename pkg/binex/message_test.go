package binex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_EncodeDecodeRoundtrip(t *testing.T) {
	rec := NewMonumentGeoRecord(gpsEpoch, MetadataIGS).WithComment("Hello")
	msg := NewMonumentMessage(SyncByte{Forward, LittleEndian, StandardCrc}, rec)

	encoded := msg.Encode()

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, msg.Sync, got.Sync)
	assert.Equal(t, msg.RecordID, got.RecordID)
	assert.Equal(t, msg.Payload, got.Payload)
	assert.Equal(t, 0, dec.Discarded)

	gotRec, err := DecodeMonumentGeoRecord(got.Payload)
	require.NoError(t, err)
	assert.Equal(t, rec.Frames, gotRec.Frames)
}

func TestMessage_BigEndianSync(t *testing.T) {
	rec := NewMonumentGeoRecord(gpsEpoch, MetadataIGS).WithClimaticInfo("Clim")
	msg := NewMonumentMessage(SyncByte{Forward, BigEndian, StandardCrc}, rec)
	encoded := msg.Encode()
	assert.Equal(t, byte(SyncFwdBEStandard), encoded[0])

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, msg.Payload, got.Payload)
}

func TestDecoder_ResynchronisesPastGarbage(t *testing.T) {
	rec := NewMonumentGeoRecord(gpsEpoch, MetadataIGS).WithComment("Hi")
	msg := NewMonumentMessage(SyncByte{Forward, LittleEndian, StandardCrc}, rec)
	encoded := msg.Encode()

	garbage := append([]byte{0x00, 0x01, 0xAA, 0xFF}, encoded...)
	dec := NewDecoder(bytes.NewReader(garbage))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, msg.Payload, got.Payload)
	assert.Equal(t, 4, dec.Discarded)
}

func TestDecoder_CRCMismatch(t *testing.T) {
	rec := NewMonumentGeoRecord(gpsEpoch, MetadataIGS).WithComment("Hi")
	msg := NewMonumentMessage(SyncByte{Forward, LittleEndian, StandardCrc}, rec)
	encoded := msg.Encode()
	encoded[len(encoded)-1] ^= 0xFF // corrupt the CRC byte

	dec := NewDecoder(bytes.NewReader(encoded))
	_, err := dec.Next()
	require.Error(t, err)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
}

func TestDecoder_UnsupportedSyncIsSkipped(t *testing.T) {
	rec := NewMonumentGeoRecord(gpsEpoch, MetadataIGS).WithComment("Hi")
	msg := NewMonumentMessage(SyncByte{Forward, LittleEndian, StandardCrc}, rec)
	encoded := msg.Encode()

	stream := append([]byte{SyncRevBEEnhanced}, encoded...)
	dec := NewDecoder(bytes.NewReader(stream))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, msg.Payload, got.Payload)
	assert.Equal(t, 1, dec.Discarded)
}
