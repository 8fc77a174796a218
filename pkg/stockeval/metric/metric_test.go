package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind Kind
		want float64
	}{
		{"percent", "15%", Percent, 0.15},
		{"multiple", "10x", Ratio, 10},
		{"dollar", "$184.92", Ratio, 184.92},
		{"thousands", "1,234.5", Ratio, 1234.5},
		{"plain decimal", "0.42", Ratio, 0.42},
		{"negative percent", "-12%", Percent, -0.12},
		{"empty", "", Ratio, 0},
		{"n/a", "N/A", Ratio, 0},
		{"garbage", "??!", Percent, 0},
		{"spaces", "  42  ", Ratio, 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ParseValue(tc.raw, tc.kind), 1e-9)
		})
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for _, m := range All {
		got, ok := FromLabel(Label(m))
		assert.True(t, ok, "label for %s should resolve", m)
		assert.Equal(t, m, got)
	}
}

func TestFromLabelUnknown(t *testing.T) {
	_, ok := FromLabel("Quick Ratio")
	assert.False(t, ok)

	// Lookup is exact, not case-insensitive.
	_, ok = FromLabel("roce")
	assert.False(t, ok)
}

func TestDefaultWeightsSumTo100(t *testing.T) {
	var total float64
	for _, w := range DefaultWeights() {
		total += w
	}
	assert.Equal(t, 100.0, total)
}

func TestDefsCoverAllMetrics(t *testing.T) {
	for _, m := range All {
		d := Get(m)
		assert.Equal(t, m, d.Key)
		assert.NotEmpty(t, d.Label)
		assert.Greater(t, d.Target, 0.0)
	}
}
