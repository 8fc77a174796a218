package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumbstock/stockeval/pkg/stockeval/metric"
)

func TestDefaultTotals100(t *testing.T) {
	d := Default().Open()
	assert.Equal(t, 100.0, d.Total())
	require.NoError(t, d.Commit())
}

func TestCommitRejectsBadTotal(t *testing.T) {
	w := Default()
	d := w.Open()
	// Bump grossMargin from 10 to 40 without compensating: total 130.
	d.SetWeight(metric.GrossMargin, 40)
	assert.Equal(t, 130.0, d.Total())

	err := d.Commit()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 130.0, verr.Total)

	// Committed weights unchanged.
	assert.Equal(t, 10.0, w.Get(metric.GrossMargin))
	assert.Equal(t, 30.0, w.Get(metric.ROCE))

	// Draft preserved for correction.
	d.SetWeight(metric.ROCE, 0)
	assert.Equal(t, 100.0, d.Total())
	require.NoError(t, d.Commit())
	assert.Equal(t, 40.0, w.Get(metric.GrossMargin))
	assert.Equal(t, 0.0, w.Get(metric.ROCE))
}

func TestSetWeightClampsNegative(t *testing.T) {
	d := Default().Open()
	d.SetWeight(metric.CCR, -7)
	assert.Equal(t, 0.0, d.Get(metric.CCR))
}

func TestToggleExcludeRestoresLastActive(t *testing.T) {
	w := Default()
	d := w.Open()

	d.ToggleExclude(metric.InterestCov)
	assert.True(t, d.IsExcluded(metric.InterestCov))
	assert.Equal(t, 0.0, d.Get(metric.InterestCov))
	assert.Equal(t, 70.0, d.Total())

	// Edits to an excluded metric are ignored.
	d.SetWeight(metric.InterestCov, 50)
	assert.Equal(t, 0.0, d.Get(metric.InterestCov))

	d.ToggleExclude(metric.InterestCov)
	assert.False(t, d.IsExcluded(metric.InterestCov))
	assert.Equal(t, 30.0, d.Get(metric.InterestCov))
	assert.Equal(t, 100.0, d.Total())
}

func TestToggleExcludeNeverActiveDefaultsToZero(t *testing.T) {
	w := New(map[metric.Metric]float64{metric.ROCE: 100}, []metric.Metric{metric.PERatio}, nil)
	d := w.Open()
	d.ToggleExclude(metric.PERatio)
	assert.Equal(t, 0.0, d.Get(metric.PERatio))
}

func TestCommitCarriesExclusions(t *testing.T) {
	w := Default()
	d := w.Open()
	d.ToggleExclude(metric.DividendYield)
	d.SetWeight(metric.ROCE, 35)
	require.NoError(t, d.Commit())

	assert.True(t, w.IsExcluded(metric.DividendYield))
	assert.Equal(t, 0.0, w.Active(metric.DividendYield))
	assert.Equal(t, []metric.Metric{metric.DividendYield}, w.Excluded())
	assert.Equal(t, 5.0, w.LastActive()[metric.DividendYield])

	// Re-include in a later transaction restores the prior weight exactly.
	d2 := w.Open()
	d2.ToggleExclude(metric.DividendYield)
	assert.Equal(t, 5.0, d2.Get(metric.DividendYield))
}

func TestDiscardLeavesCommittedAlone(t *testing.T) {
	w := Default()
	d := w.Open()
	d.SetWeight(metric.ROCE, 99)
	d.ToggleExclude(metric.CCR)
	d.Discard()
	assert.Equal(t, 30.0, w.Get(metric.ROCE))
	assert.False(t, w.IsExcluded(metric.CCR))
}

func TestApplyBypassesGate(t *testing.T) {
	w := Default()
	w.Apply(metric.ROCE, 45)
	assert.Equal(t, 45.0, w.Get(metric.ROCE))
	// Total is now 115; imports are intentionally not validated.
	var total float64
	for _, m := range metric.All {
		total += w.Active(m)
	}
	assert.Equal(t, 115.0, total)
}

func TestApplyPositiveClearsExclusion(t *testing.T) {
	w := New(metric.DefaultWeights(), []metric.Metric{metric.ROCE}, nil)
	require.True(t, w.IsExcluded(metric.ROCE))

	w.Apply(metric.ROCE, 45)
	assert.False(t, w.IsExcluded(metric.ROCE))
	assert.Equal(t, 45.0, w.Active(metric.ROCE))

	// A zero import leaves exclusion state alone.
	w2 := New(metric.DefaultWeights(), []metric.Metric{metric.CCR}, nil)
	w2.Apply(metric.CCR, 0)
	assert.True(t, w2.IsExcluded(metric.CCR))
}

func TestNewForcesExcludedToZero(t *testing.T) {
	w := New(map[metric.Metric]float64{metric.NetMargin: 25}, []metric.Metric{metric.NetMargin}, nil)
	assert.Equal(t, 0.0, w.Get(metric.NetMargin))
	assert.Equal(t, 25.0, w.LastActive()[metric.NetMargin])
}
