package rinex

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavDecoder_decodeSTO(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	prn := PRN{Sys: gnss.SysGPS, Num: 1}
	toc := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("> STO G01 LNAV\n")
	b.WriteString(prn.String() + " " + toc.Format(TimeOfClockFormat) +
		formatNavFloat(1.5e-09) + formatNavFloat(2.5e-12) + formatNavFloat(0) + "\n")
	b.WriteString("    " + formatNavFloat(345600) + "\n")

	dec := &NavDecoder{Header: NavHeader{RINEXVersion: 4.00}, sc: bufio.NewScanner(strings.NewReader(b.String()))}
	require.True(dec.NextEphemeris())
	require.NoError(dec.Err())

	frame := dec.Frame()
	assert.Equal(NavRecordTypeSTO, frame.Type)
	require.NotNil(frame.Sto)
	assert.Equal(prn, frame.Sto.PRN)
	assert.Equal("LNAV", frame.Sto.MessageType)
	assert.InDelta(1.5e-09, frame.Sto.A0, 1e-15)
	assert.InDelta(345600.0, frame.Sto.T0, 1e-3)
}

func TestNavDecoder_decodeION_Klobuchar(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	prn := PRN{Sys: gnss.SysGAL, Num: 1}
	toc := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("> ION E01 CNVX\n")
	b.WriteString(prn.String() + " " + toc.Format(TimeOfClockFormat) +
		formatNavFloat(1) + formatNavFloat(2) + formatNavFloat(3) + "\n")
	b.WriteString("    " + formatNavFloat(4) + formatNavFloat(5) + formatNavFloat(6) + formatNavFloat(7) + "\n")
	b.WriteString("    " + formatNavFloat(8) + "\n")

	dec := &NavDecoder{Header: NavHeader{RINEXVersion: 4.00}, sc: bufio.NewScanner(strings.NewReader(b.String()))}
	require.True(dec.NextEphemeris())
	require.NoError(dec.Err())

	frame := dec.Frame()
	assert.Equal(NavRecordTypeION, frame.Type)
	require.NotNil(frame.Ion)
	assert.Equal(IonoModelKlobuchar, frame.Ion.Model)
	assert.InDelta(1, frame.Ion.KlobucharAlpha[0], 1e-9)
	assert.InDelta(4, frame.Ion.KlobucharAlpha[3], 1e-9)
	assert.InDelta(8, frame.Ion.KlobucharBeta[3], 1e-9)
}
