package rinex

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/stretchr/testify/assert"
)

const crinexTestHeader = `     3.03           OBSERVATION DATA    M                   RINEX VERSION / TYPE
rnxgo                                                       PGM / RUN BY / DATE
TEST                                                        MARKER NAME
G    2 C1C L1C                                              SYS / # / OBS TYPES
                                                            END OF HEADER
`

const crinexTestEpoch1 = "> 2021 01 01 00 00  0.0000000  0  1       0.000000000000"
const crinexTestData1 = "G01  20000000.000 7 105000000.12318"
const crinexTestEpoch2 = "> 2021 01 01 00 00 30.0000000  0  1       0.000000000000"
const crinexTestData2 = "G01  20000001.500 7                "

func crinexTestPlain() string {
	var b strings.Builder
	b.WriteString(crinexTestHeader)
	b.WriteString(crinexTestEpoch1 + "\n")
	b.WriteString(crinexTestData1 + "\n")
	b.WriteString(crinexTestEpoch2 + "\n")
	b.WriteString(crinexTestData2 + "\n")
	return b.String()
}

// TestCompressObs_ClockRoundTrip exercises review fix #3: the receiver
// clock offset field must survive a compress/decompress round trip, which
// requires HatanakaEngine.CompressClock/DecompressClock to actually be
// called rather than silently dropping the field.
func TestCompressObs_ClockRoundTrip(t *testing.T) {
	plain := crinexTestPlain()

	crx, err := CompressObs(strings.NewReader(plain))
	assert.NoError(t, err)
	crxBytes, err := io.ReadAll(crx)
	assert.NoError(t, err)
	assert.Contains(t, string(crxBytes), "CRINEX VERS")

	back, err := DecompressObs(bytes.NewReader(crxBytes))
	assert.NoError(t, err)
	backBytes, err := io.ReadAll(back)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(backBytes), "\n"), "\n")
	assert.Contains(t, lines, crinexTestEpoch1, "clock offset field must round-trip on the epoch line")
	assert.Contains(t, lines, crinexTestEpoch2, "clock offset field must round-trip on the epoch line")
}

// TestObsDecoder_CRINEX_Dispatch exercises review fix #4: NewObsDecoder
// must transparently decompress a Hatanaka-compressed stream rather than
// parsing compressed lines as plain fixed-column text.
func TestObsDecoder_CRINEX_Dispatch(t *testing.T) {
	plain := crinexTestPlain()

	crx, err := CompressObs(strings.NewReader(plain))
	assert.NoError(t, err)
	crxBytes, err := io.ReadAll(crx)
	assert.NoError(t, err)

	dec, err := NewObsDecoder(bytes.NewReader(crxBytes))
	assert.NoError(t, err)
	assert.True(t, dec.Header.IsCrinex())

	g01 := gnss.PRN{Sys: gnss.SysGPS, Num: 1}

	assert.True(t, dec.NextEpoch())
	assert.NoError(t, dec.Err())
	epo1 := dec.Epoch()
	assert.Len(t, epo1.ObsList, 1)
	assert.Equal(t, g01, epo1.ObsList[0].Prn)
	assert.InDelta(t, 20000000.000, epo1.ObsList[0].Obss["C1C"].Val, 1e-6)
	assert.Equal(t, int8(7), epo1.ObsList[0].Obss["C1C"].SNR)
	assert.InDelta(t, 105000000.123, epo1.ObsList[0].Obss["L1C"].Val, 1e-6)
	assert.Equal(t, int8(1), epo1.ObsList[0].Obss["L1C"].LLI)
	assert.Equal(t, int8(8), epo1.ObsList[0].Obss["L1C"].SNR)

	// second epoch's L1C column is blank: review fix #2 (strings.Fields
	// desyncing the blank-flag group) must not drop or misalign it.
	assert.True(t, dec.NextEpoch())
	assert.NoError(t, dec.Err())
	epo2 := dec.Epoch()
	assert.Len(t, epo2.ObsList, 1)
	assert.InDelta(t, 20000001.500, epo2.ObsList[0].Obss["C1C"].Val, 1e-6)
	assert.Equal(t, int8(7), epo2.ObsList[0].Obss["C1C"].SNR, "unchanged flag on a present observation must carry forward")
	assert.Equal(t, Obs{}, epo2.ObsList[0].Obss["L1C"], "blank observation must decode as a zero Obs, not desync later columns")

	assert.False(t, dec.NextEpoch())
	assert.NoError(t, dec.Err())
}

// TestCompressObs_MultiEpochReinit exercises review fix #1: a
// satellite/observable slot's NumDiff is never Init'd until its first use,
// so CompressValue must reinitialise on that first use even though the
// call site always passes reinit=false.
func TestCompressObs_MultiEpochReinit(t *testing.T) {
	plain := crinexTestPlain()

	crx, err := CompressObs(strings.NewReader(plain))
	assert.NoError(t, err)
	crxBytes, err := io.ReadAll(crx)
	assert.NoError(t, err)

	back, err := DecompressObs(bytes.NewReader(crxBytes))
	assert.NoError(t, err)
	backBytes, err := io.ReadAll(back)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(backBytes), "\n"), "\n")
	assert.Contains(t, lines, crinexTestData1)
	assert.Contains(t, lines, crinexTestData2)
}
