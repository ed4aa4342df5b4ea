package rinex

import (
	"testing"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPRN(t *testing.T, s string) PRN {
	t.Helper()
	prn, err := gnss.NewPRN(s)
	require.NoError(t, err)
	return prn
}

func TestMergeEpochs_disjointSatellites(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(30 * time.Second)

	g01 := mustPRN(t, "G01")
	g02 := mustPRN(t, "G02")

	a := []Epoch{
		{Time: t0, ObsList: []SatObs{{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 123.456}}}}},
	}
	b := []Epoch{
		{Time: t0, ObsList: []SatObs{{Prn: g02, Obss: map[ObsCode]Obs{"C1C": {Val: 789.012}}}}},
		{Time: t1, ObsList: []SatObs{{Prn: g02, Obss: map[ObsCode]Obs{"C1C": {Val: 1.0}}}}},
	}

	merged, err := MergeEpochs(a, b)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	assert.Equal(t, t0, merged[0].Time)
	assert.Len(t, merged[0].ObsList, 2)
	assert.Equal(t, g01, merged[0].ObsList[0].Prn)
	assert.Equal(t, g02, merged[0].ObsList[1].Prn)
	assert.Equal(t, uint8(2), merged[0].NumSat)

	assert.Equal(t, t1, merged[1].Time)
	assert.Len(t, merged[1].ObsList, 1)
}

func TestMergeEpochs_selfMergeIsIdempotent(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	g01 := mustPRN(t, "G01")
	epochs := []Epoch{
		{Time: t0, ObsList: []SatObs{{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 123.456}}}}},
	}

	merged, err := MergeEpochs(epochs, epochs)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, epochs[0].ObsList, merged[0].ObsList)
}

func TestMergeEpochs_conflictingValueFails(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	g01 := mustPRN(t, "G01")
	a := []Epoch{{Time: t0, ObsList: []SatObs{{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 1}}}}}}
	b := []Epoch{{Time: t0, ObsList: []SatObs{{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 2}}}}}}

	_, err := MergeEpochs(a, b)
	require.Error(t, err)
	var mergeErr *MergeError
	assert.ErrorAs(t, err, &mergeErr)
}

func TestFilterEpochs_bySystemAndCode(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	g01 := mustPRN(t, "G01")
	r01 := mustPRN(t, "R01")

	epochs := []Epoch{
		{Time: t0, ObsList: []SatObs{
			{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 1}, "L1C": {Val: 2}}},
			{Prn: r01, Obss: map[ObsCode]Obs{"C1C": {Val: 3}}},
		}},
	}

	filtered := FilterEpochs(epochs, ObsFilterSpec{Systems: []gnss.System{gnss.SysGPS}, Codes: []ObsCode{"C1C"}})
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].ObsList, 1)
	assert.Equal(t, g01, filtered[0].ObsList[0].Prn)
	_, hasL1C := filtered[0].ObsList[0].Obss["L1C"]
	assert.False(t, hasL1C)
}

func TestFilterEpochs_timeRangeDropsOutliers(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	epochs := []Epoch{
		{Time: t0, NumSat: 0},
		{Time: t0.Add(time.Hour), NumSat: 0},
	}
	filtered := FilterEpochs(epochs, ObsFilterSpec{})
	assert.Empty(t, filtered) // zero-satellite epochs carry nothing for the filter to keep

	epochs[0].ObsList = []SatObs{{Prn: mustPRN(t, "G01"), Obss: map[ObsCode]Obs{"C1C": {Val: 1}}}}
	epochs[1].ObsList = []SatObs{{Prn: mustPRN(t, "G01"), Obss: map[ObsCode]Obs{"C1C": {Val: 1}}}}
	filtered = FilterEpochs(epochs, ObsFilterSpec{To: t0.Add(30 * time.Minute)})
	require.Len(t, filtered, 1)
	assert.Equal(t, t0, filtered[0].Time)
}

func TestDecimateEpochs(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	epochs := make([]Epoch, 0, 10)
	for i := 0; i < 10; i++ {
		epochs = append(epochs, Epoch{Time: t0.Add(time.Duration(i) * 30 * time.Second)})
	}

	decimated, err := DecimateEpochs(epochs, 60*time.Second)
	require.NoError(t, err)
	assert.Len(t, decimated, 5)

	_, err = DecimateEpochs(epochs, 45*time.Second)
	require.Error(t, err)
	var decErr *DecimationError
	assert.ErrorAs(t, err, &decErr)

	_, err = DecimateEpochs(epochs, 0)
	require.Error(t, err)
}

func TestRepairEpochs_sortsRosterAndFixesNumSat(t *testing.T) {
	t0 := time.Date(2020, 6, 25, 0, 0, 0, 0, time.UTC)
	g02 := mustPRN(t, "G02")
	g01 := mustPRN(t, "G01")
	epochs := []Epoch{
		{Time: t0, NumSat: 9, ObsList: []SatObs{
			{Prn: g02, Obss: map[ObsCode]Obs{"C1C": {Val: 1}}},
			{Prn: g01, Obss: map[ObsCode]Obs{"C1C": {Val: 2}}},
		}},
	}

	repaired := RepairEpochs(epochs)
	require.Len(t, repaired[0].ObsList, 2)
	assert.Equal(t, g01, repaired[0].ObsList[0].Prn)
	assert.Equal(t, g02, repaired[0].ObsList[1].Prn)
	assert.Equal(t, uint8(2), repaired[0].NumSat)
}
