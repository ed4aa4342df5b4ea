package rinex

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// Eph is the interface that wraps some methods for all types of ephemeris
// and navigation messages.
type Eph interface {
	// Validate checks the ephemeris.
	Validate() error

	// Sv returns the satellite the ephemeris belongs to.
	Sv() gnss.PRN

	// Epoch returns the ephemeris' time of clock / reference epoch.
	Epoch() time.Time

	unmarshal(data []byte) error
}

// NavRecordType is the RINEX-4 navigation record type tag that follows the
// "> " epoch marker, e.g. "EPH" for an ephemeris.
type NavRecordType string

// Navigation record types defined by RINEX-4.
const (
	NavRecordTypeEPH NavRecordType = "EPH" // ephemeris
	NavRecordTypeSTO NavRecordType = "STO" // system time offset
	NavRecordTypeEOP NavRecordType = "EOP" // earth orientation parameters
	NavRecordTypeION NavRecordType = "ION" // ionosphere model parameters
)

// SystemTimeOffset is a RINEX-4 STO navigation frame: an offset of one GNSS
// time system against another (or UTC), broadcast by a single satellite.
type SystemTimeOffset struct {
	PRN         gnss.PRN
	MessageType string    // e.g. "LNAV", "CNVX"
	Epoch       time.Time // time of message

	SystemTime string // source time system, e.g. "GPS", "GAL"
	UTCID      string // target time system / UTC provider ID, e.g. "UTC", "GLUT"

	T0         float64 // message transmission time, seconds of week
	A0, A1, A2 float64 // bias [s], drift [s/s], drift-rate [s/s2]
}

// Sv returns the satellite that broadcast the message.
func (s *SystemTimeOffset) Sv() gnss.PRN { return s.PRN }

// Epo returns the message's time of transmission.
func (s *SystemTimeOffset) Epo() time.Time { return s.Epoch }

// EarthOrientation is a RINEX-4 EOP navigation frame: earth rotation pole
// coordinates and UT1-UTC, broadcast by a single satellite.
type EarthOrientation struct {
	PRN         gnss.PRN
	MessageType string
	Epoch       time.Time

	XPole, XPoleRate, XPoleAccel float64 // arc-sec, arc-sec/day, arc-sec/day2
	YPole, YPoleRate, YPoleAccel float64 // arc-sec, arc-sec/day, arc-sec/day2

	T0 float64 // message transmission time, seconds of week

	DeltaUT1, DeltaUT1Rate, DeltaUT1Accel float64 // sec, sec/day, sec/day2
}

// Sv returns the satellite that broadcast the message.
func (e *EarthOrientation) Sv() gnss.PRN { return e.PRN }

// Epo returns the message's time of transmission.
func (e *EarthOrientation) Epo() time.Time { return e.Epoch }

// IonoModelType distinguishes the three ionosphere correction models RINEX-4
// can carry in an ION frame.
type IonoModelType string

// Ionosphere model variants carried by an IonosphereModel frame.
const (
	IonoModelKlobuchar IonoModelType = "Klobuchar"
	IonoModelNequickG  IonoModelType = "NequickG"
	IonoModelBDGIM     IonoModelType = "BDGIM"
)

// IonosphereModel is a RINEX-4 ION navigation frame, carrying one of the
// Klobuchar, Nequick-G, or BDGIM ionosphere correction models.
type IonosphereModel struct {
	PRN         gnss.PRN
	MessageType string
	Epoch       time.Time
	Model       IonoModelType

	KlobucharAlpha [4]float64 // alpha0..alpha3
	KlobucharBeta  [4]float64 // beta0..beta3

	NequickGAi    [3]float64 // ai0..ai2
	NequickGFlags uint8      // region flags

	BDGIMAlpha [9]float64 // alpha0..alpha8, TEC units
}

// Sv returns the satellite that broadcast the message.
func (i *IonosphereModel) Sv() gnss.PRN { return i.PRN }

// Epo returns the message's time of transmission.
func (i *IonosphereModel) Epo() time.Time { return i.Epoch }

// NavFrame is the RINEX-4 tagged union of navigation record kinds: a frame
// carries exactly one of Eph, Sto, Eop, or Ion, selected by Type.
type NavFrame struct {
	Type NavRecordType
	Eph  Eph
	Sto  *SystemTimeOffset
	Eop  *EarthOrientation
	Ion  *IonosphereModel
}

// NewEph returns a new ephemeris having the concrete type for sys.
func NewEph(sys gnss.System) Eph {
	var eph Eph
	switch sys {
	case gnss.SysGPS:
		eph = &EphGPS{}
	case gnss.SysGLO:
		eph = &EphGLO{}
	case gnss.SysGAL:
		eph = &EphGAL{}
	case gnss.SysQZSS:
		eph = &EphQZSS{}
	case gnss.SysBDS:
		eph = &EphBDS{}
	case gnss.SysIRNSS:
		eph = &EphNavIC{}
	case gnss.SysSBAS:
		eph = &EphSBAS{}
	default:
		log.Fatalf("rinex: unknown satellite system: %v", sys)
	}

	return eph
}

// UnmarshalEph parses the RINEX-3 ephemeris record given in data (one
// satellite's full line block, newline separated) and stores the result in
// the value pointed to by eph.
func UnmarshalEph(data []byte, eph Eph) error {
	return eph.unmarshal(data)
}

// EphGPS describes a GPS ephemeris.
type EphGPS struct {
	PRN         PRN
	MessageType string // RINEX-4 only, e.g. "LNAV", "CNAV"

	// Clock
	TOC            time.Time // Time of Clock, clock reference epoch
	ClockBias      float64   // sc clock bias in seconds
	ClockDrift     float64   // sec/sec
	ClockDriftRate float64   // sec/sec2

	IODE   float64 // Issue of Data, Ephemeris
	Crs    float64 // meters
	DeltaN float64 // radians/sec
	M0     float64 // radians

	Cuc   float64 // radians
	Ecc   float64 // Eccentricity
	Cus   float64 // radians
	SqrtA float64 // sqrt(m)

	Toe    float64 // time of ephemeris (sec of GPS week)
	Cic    float64 // radians
	Omega0 float64 // radians
	Cis    float64 // radians

	I0       float64 // radians
	Crc      float64 // meters
	Omega    float64 // radians
	OmegaDot float64 // radians/sec

	IDOT    float64 // radians/sec
	L2Codes float64
	ToeWeek float64 // GPS week (to go with TOE) Continuous
	L2PFlag float64

	URA    float64 // SV accuracy in meters
	Health float64 // SV health (bits 17-22 w 3 sf 1)
	TGD    float64 // seconds
	IODC   float64 // Issue of Data, clock

	Tom         float64 // transmission time of message, seconds of GPS week
	FitInterval float64 // Fit interval in hours
}

func (eph *EphGPS) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphGPS) Epoch() time.Time { return eph.TOC }
func (EphGPS) Validate() error       { return nil }

func (eph *EphGPS) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysGPS, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}

	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}

	eph.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IODE, eph.Crs, eph.DeltaN, eph.M0, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Cuc, eph.Ecc, eph.Cus, eph.SqrtA, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Toe, eph.Cic, eph.Omega0, eph.Cis, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.I0, eph.Crc, eph.Omega, eph.OmegaDot, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IDOT, eph.L2Codes, eph.ToeWeek, eph.L2PFlag, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.URA, eph.Health, eph.TGD, eph.IODC, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Tom, eph.FitInterval, _, _, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	return nil
}

// EphGLO describes a GLONASS ephemeris.
type EphGLO struct {
	PRN         PRN
	MessageType string
	TOC         time.Time

	ClockBias     float64 // -TauN, seconds
	RelFreqBias   float64 // +GammaN
	MsgFrameTime  float64 // message frame time, seconds of UTC week

	PosX, VelX, AccX float64 // km, km/s, km/s2
	PosY, VelY, AccY float64
	PosZ, VelZ, AccZ float64

	Health        float64
	FreqNum       float64 // frequency number (-7..+13, or slot+100)
	AgeOfOperInfo float64 // E, days
}

func (eph *EphGLO) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphGLO) Epoch() time.Time { return eph.TOC }
func (EphGLO) Validate() error       { return nil }

func (eph *EphGLO) unmarshal(data []byte) error {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return err
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysGLO, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return err
	}
	eph.RelFreqBias, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return err
	}
	eph.MsgFrameTime, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return err
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return err
	}
	eph.PosX, eph.VelX, eph.AccX, _, err = parseFloatsNavLine(line)
	if err != nil {
		return err
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return err
	}
	eph.PosY, eph.VelY, eph.AccY, _, err = parseFloatsNavLine(line)
	if err != nil {
		return err
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return err
	}
	eph.PosZ, eph.VelZ, eph.AccZ, eph.Health, err = parseFloatsNavLine(line)
	return err
}

// EphGAL describes a Galileo ephemeris.
type EphGAL struct {
	PRN         PRN
	MessageType string
	TOC         time.Time

	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	IODNav float64
	Crs    float64
	DeltaN float64
	M0     float64

	Cuc   float64
	Ecc   float64
	Cus   float64
	SqrtA float64

	Toe    float64
	Cic    float64
	Omega0 float64
	Cis    float64

	I0       float64
	Crc      float64
	Omega    float64
	OmegaDot float64

	IDOT      float64
	DataSrc   float64
	ToeWeek   float64

	SISA   float64
	Health float64
	BGDE5a float64
	BGDE5b float64

	Tom float64
}

func (eph *EphGAL) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphGAL) Epoch() time.Time { return eph.TOC }
func (EphGAL) Validate() error       { return nil }

func (eph *EphGAL) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysGAL, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}
	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}
	eph.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IODNav, eph.Crs, eph.DeltaN, eph.M0, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Cuc, eph.Ecc, eph.Cus, eph.SqrtA, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Toe, eph.Cic, eph.Omega0, eph.Cis, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.I0, eph.Crc, eph.Omega, eph.OmegaDot, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IDOT, eph.DataSrc, eph.ToeWeek, _, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.SISA, eph.Health, eph.BGDE5a, eph.BGDE5b, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Tom, _, _, _, err = parseFloatsNavLine(line)
	return
}

// EphQZSS describes a QZSS ephemeris. QZSS broadcasts a GPS-compatible
// LNAV message, so the record layout mirrors EphGPS.
type EphQZSS struct {
	PRN         PRN
	MessageType string

	TOC            time.Time
	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	IODE   float64
	Crs    float64
	DeltaN float64
	M0     float64

	Cuc   float64
	Ecc   float64
	Cus   float64
	SqrtA float64

	Toe    float64
	Cic    float64
	Omega0 float64
	Cis    float64

	I0       float64
	Crc      float64
	Omega    float64
	OmegaDot float64

	IDOT    float64
	L2Codes float64
	ToeWeek float64
	L2PFlag float64

	URA    float64
	Health float64
	TGD    float64
	IODC   float64

	Tom         float64
	FitInterval float64
}

func (eph *EphQZSS) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphQZSS) Epoch() time.Time { return eph.TOC }
func (EphQZSS) Validate() error       { return nil }

func (eph *EphQZSS) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysQZSS, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}
	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}
	eph.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	rows := []*[4]*float64{
		{&eph.IODE, &eph.Crs, &eph.DeltaN, &eph.M0},
		{&eph.Cuc, &eph.Ecc, &eph.Cus, &eph.SqrtA},
		{&eph.Toe, &eph.Cic, &eph.Omega0, &eph.Cis},
		{&eph.I0, &eph.Crc, &eph.Omega, &eph.OmegaDot},
		{&eph.IDOT, &eph.L2Codes, &eph.ToeWeek, &eph.L2PFlag},
		{&eph.URA, &eph.Health, &eph.TGD, &eph.IODC},
	}
	for _, row := range rows {
		line, err = r.ReadString('\n')
		if err != nil {
			return
		}
		var f1, f2, f3, f4 float64
		f1, f2, f3, f4, err = parseFloatsNavLine(line)
		if err != nil {
			return
		}
		*row[0], *row[1], *row[2], *row[3] = f1, f2, f3, f4
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Tom, eph.FitInterval, _, _, err = parseFloatsNavLine(line)
	return
}

// EphBDS describes a chinese BDS (BeiDou) ephemeris.
type EphBDS struct {
	PRN         PRN
	MessageType string

	TOC            time.Time
	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	AODE   float64
	Crs    float64
	DeltaN float64
	M0     float64

	Cuc   float64
	Ecc   float64
	Cus   float64
	SqrtA float64

	Toe    float64
	Cic    float64
	Omega0 float64
	Cis    float64

	I0       float64
	Crc      float64
	Omega    float64
	OmegaDot float64

	IDOT    float64
	ToeWeek float64

	SVAccuracy float64
	SatH1      float64
	TGD1       float64
	TGD2       float64

	Tom  float64
	AODC float64
}

func (eph *EphBDS) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphBDS) Epoch() time.Time { return eph.TOC }
func (EphBDS) Validate() error       { return nil }

func (eph *EphBDS) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysBDS, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}
	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}
	eph.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.AODE, eph.Crs, eph.DeltaN, eph.M0, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Cuc, eph.Ecc, eph.Cus, eph.SqrtA, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Toe, eph.Cic, eph.Omega0, eph.Cis, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.I0, eph.Crc, eph.Omega, eph.OmegaDot, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IDOT, _, eph.ToeWeek, _, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.SVAccuracy, eph.SatH1, eph.TGD1, eph.TGD2, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Tom, eph.AODC, _, _, err = parseFloatsNavLine(line)
	return
}

// EphNavIC describes an indian IRNSS/NavIC ephemeris.
type EphNavIC struct {
	PRN         PRN
	MessageType string

	TOC            time.Time
	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	IODEC  float64
	Crs    float64
	DeltaN float64
	M0     float64

	Cuc   float64
	Ecc   float64
	Cus   float64
	SqrtA float64

	Toe    float64
	Cic    float64
	Omega0 float64
	Cis    float64

	I0       float64
	Crc      float64
	Omega    float64
	OmegaDot float64

	IDOT    float64
	ToeWeek float64

	URA    float64
	Health float64
	TGD    float64

	Tom float64
}

func (eph *EphNavIC) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphNavIC) Epoch() time.Time { return eph.TOC }
func (EphNavIC) Validate() error       { return nil }

func (eph *EphNavIC) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysIRNSS, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}
	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}
	eph.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IODEC, eph.Crs, eph.DeltaN, eph.M0, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Cuc, eph.Ecc, eph.Cus, eph.SqrtA, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Toe, eph.Cic, eph.Omega0, eph.Cis, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.I0, eph.Crc, eph.Omega, eph.OmegaDot, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.IDOT, _, eph.ToeWeek, _, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.URA, eph.Health, eph.TGD, _, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.Tom, _, _, _, err = parseFloatsNavLine(line)
	return
}

// EphSBAS describes a SBAS geostationary navigation payload.
type EphSBAS struct {
	PRN         PRN
	MessageType string
	TOC         time.Time

	ClockBias    float64 // SV clock bias, seconds
	ClockDrift   float64 // SV relative frequency bias, sec/sec
	Tom          float64 // transmission time of message, seconds of GPS week

	PosX, VelX, AccX float64 // km, km/s, km/s2
	Health           float64

	PosY, VelY, AccY float64
	URA              float64 // accuracy code

	PosZ, VelZ, AccZ float64
	IODN             float64
}

func (eph *EphSBAS) Sv() gnss.PRN     { return eph.PRN }
func (eph *EphSBAS) Epoch() time.Time { return eph.TOC }
func (EphSBAS) Validate() error       { return nil }

func (eph *EphSBAS) unmarshal(data []byte) (err error) {
	r := bufio.NewReader(bytes.NewReader(data))
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}

	snum, err := strconv.Atoi(strings.TrimSpace(line[1:3]))
	if err != nil {
		return fmt.Errorf("parse sat num: %q: %v", line, err)
	}
	eph.PRN = gnss.PRN{Sys: gnss.SysSBAS, Num: uint8(snum)}

	eph.TOC, err = time.Parse(TimeOfClockFormat, line[4:23])
	if err != nil {
		return fmt.Errorf("parse TOC: %q: %v", line, err)
	}

	eph.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return
	}
	eph.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return
	}
	eph.Tom, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.PosX, eph.VelX, eph.AccX, eph.Health, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.PosY, eph.VelY, eph.AccY, eph.URA, err = parseFloatsNavLine(line)
	if err != nil {
		return
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return
	}
	eph.PosZ, eph.VelZ, eph.AccZ, eph.IODN, err = parseFloatsNavLine(line)
	return
}

// A NavHeader contains the RINEX Navigation Header information.
// All header parameters are optional and may comprise different types of
// ionospheric model parameters and time conversion parameters.
type NavHeader struct {
	RINEXVersion float32     // RINEX Format version
	RINEXType    string      // RINEX File type. N for Nav
	SatSystem    gnss.System // Satellite System. System is "Mixed" if more than one.

	Pgm   string // name of program creating this file
	RunBy string // name of agency creating this file
	Date  time.Time // date and time of file creation

	Comments    []string // * comment lines
	MergedFiles int      // number of merged files, if any
	DOI         string
	Licenses    []string

	Labels   []string // all Header Labels found
	Warnings []string
}

// A headerLabel is a RINEX Header Label.
type headerLabel struct {
	label    string
	official bool
	optional bool
}

// A NavFile contains fields and methods for RINEX navigation files and
// includes common methods for handling RINEX Nav files.
// It is useful e.g. for operations on the RINEX filename.
// If you do not need these file-related features, use the NavDecoder instead.
type NavFile struct {
	*RnxFil
	Header NavHeader
}

// NewNavFile returns a new Navigation File object.
func NewNavFile(filepath string) (*NavFile, error) {
	navFil := &NavFile{RnxFil: &RnxFil{Path: filepath}}
	err := navFil.parseFilename()
	return navFil, err
}

// Validate validates the RINEX Nav file. It is valid if no error is returned.
func (f *NavFile) Validate() error {
	r, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open nav file: %v", err)
	}
	defer r.Close()

	dec, err := NewNavDecoder(r)
	if err != nil {
		return err
	}
	f.Header = dec.Header

	return dec.Header.Validate()
}

// NavStats holds basic counts and bounds gathered from a pass over a
// navigation file's ephemerides.
type NavStats struct {
	NumEphemeris    int
	SatSystems      []gnss.System
	Satellites      []gnss.PRN
	EarliestEphTime time.Time
	LatestEphTime   time.Time
}

// GetStats reads the whole navigation file and returns summary statistics
// about its ephemerides.
func (f *NavFile) GetStats() (NavStats, error) {
	var stats NavStats

	r, err := os.Open(f.Path)
	if err != nil {
		return stats, fmt.Errorf("open nav file: %v", err)
	}
	defer r.Close()

	dec, err := NewNavDecoder(r)
	if err != nil {
		return stats, err
	}

	sysSeen := map[gnss.System]struct{}{}
	satSeen := map[gnss.PRN]struct{}{}

	for dec.NextEphemeris() {
		eph := dec.Ephemeris()
		stats.NumEphemeris++

		prn := eph.Sv()
		if _, ok := satSeen[prn]; !ok {
			satSeen[prn] = struct{}{}
			stats.Satellites = append(stats.Satellites, prn)
		}
		if _, ok := sysSeen[prn.Sys]; !ok {
			sysSeen[prn.Sys] = struct{}{}
			stats.SatSystems = append(stats.SatSystems, prn.Sys)
		}

		t := eph.Epoch()
		if stats.EarliestEphTime.IsZero() || t.Before(stats.EarliestEphTime) {
			stats.EarliestEphTime = t
		}
		if t.After(stats.LatestEphTime) {
			stats.LatestEphTime = t
		}
	}
	if err := dec.Err(); err != nil {
		return stats, err
	}

	return stats, nil
}

var rnx3HeaderLables = []headerLabel{
	// mandatory
	{label: "RINEX VERSION / TYPE", official: true, optional: false},
	{label: "PGM / RUN BY / DATE", official: true, optional: false},
	{label: "END OF HEADER", official: true, optional: false},
	// optional
	{label: "COMMENT", official: true, optional: true},
	{label: "IONOSPHERIC CORR", official: true, optional: true},
	{label: "TIME SYSTEM CORR", official: true, optional: true},
	{label: "LEAP SECONDS", official: true, optional: true},
	{label: "MERGED FILE", official: true, optional: true},
	{label: "DOI", official: true, optional: true},
	{label: "LICENSE OF USE", official: true, optional: true},
}

var navHeaderLables = map[float32][]headerLabel{
	2: {
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
	},
	2.01: {
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	2.10: {
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	2.11: {
		// The "CORR TO SYSTEM TIME" header record (in 2.10 for GLONASS Nav) has been replaced by the more general record "D-UTC A0,A1,T,W,S,U" in Version 2.11.
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	3.00: rnx3HeaderLables,
	3.01: rnx3HeaderLables,
	3.02: rnx3HeaderLables,
	3.03: rnx3HeaderLables,
	3.04: rnx3HeaderLables,
	3.05: rnx3HeaderLables,
	4: {
		{label: "RINEX VERSION / TYPE", optional: false},
		{label: "PGM / RUN BY / DATE", optional: false},
		{label: "END OF HEADER", optional: false},
		{label: "COMMENT", optional: true},
		{label: "IONOSPHERIC CORR", optional: true},
		{label: "TIME SYSTEM CORR", optional: true},
		{label: "LEAP SECONDS", optional: true},
		{label: "MERGED FILE", optional: true},
		{label: "DOI", optional: true},
		{label: "LICENSE OF USE", optional: true},
	},
}

// Validate validates the RINEX Nav header. It is valid if no error is returned.
func (hdr *NavHeader) Validate() error {
	if hdr.RINEXVersion >= 3 {
		if hdr.RINEXType != "N" {
			return fmt.Errorf("invalid RINEX TYPE: %q", hdr.RINEXType)
		}
	}

	// unofficial RINEX 2.12
	if hdr.RINEXVersion == 2.12 {
		return fmt.Errorf("invalid RINEX VERSION: %.2f", 2.12)
	}

	hLablesMust, ok := navHeaderLables[hdr.RINEXVersion]
	if !ok {
		return fmt.Errorf("invalid RINEX VERSION: %.2f", hdr.RINEXVersion)
	}

	// Check existence of mandatory header lines.
	have := make(map[string]struct{}, len(hdr.Labels))
	for _, l := range hdr.Labels {
		have[l] = struct{}{}
	}
	for _, f := range hLablesMust {
		if !f.optional {
			if _, ok := have[f.label]; !ok {
				hdr.Warnings = append(hdr.Warnings, fmt.Sprintf("mandatory header label does not exist: %s", f.label))
			}
		}
	}

	// Vice versa, flag any unexpected header lines.
	want := make(map[string]struct{}, len(hLablesMust))
	for _, h := range hLablesMust {
		want[h.label] = struct{}{}
	}
	for _, l := range hdr.Labels {
		if _, ok := want[l]; !ok {
			hdr.Warnings = append(hdr.Warnings, fmt.Sprintf("invalid RINEX %.2f header label: %s", hdr.RINEXVersion, l))
		}
	}

	return nil
}

// parseFloatsNavLine parses a common data line of a nav file, having four floats 4X,4D19.12.
func parseFloatsNavLine(s string) (f1, f2, f3, f4 float64, err error) {
	f1, err = parseFloat(s[4 : 4+19])
	if err != nil {
		return
	}

	f2, err = parseFloat(s[23 : 23+19])
	if err != nil {
		return
	}

	if len(s) < 45 {
		return
	}
	f3, err = parseFloat(s[42 : 42+19])
	if err != nil {
		return
	}

	if len(s) < 64 {
		return
	}
	f4, err = parseFloat(s[61 : 61+19])
	return
}
