package sweep

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRatio(t *testing.T) {
	assert.True(t, math.IsNaN(float64(NewRatio(0, 0))))
	assert.True(t, math.IsInf(float64(NewRatio(3, 0)), 1))
	assert.Equal(t, Ratio(2), NewRatio(6, 3))
	assert.Equal(t, Ratio(1.5), NewRatio(27, 18))
}

func TestRatio_String(t *testing.T) {
	tests := []struct {
		ratio Ratio
		want  string
	}{
		{Ratio(math.NaN()), "nan"},
		{Ratio(math.Inf(1)), "inf"},
		{Ratio(math.Inf(-1)), "-inf"},
		{Ratio(2), "2.00000"},
		{Ratio(1.0 / 3.0), "0.33333"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ratio.String())
		})
	}
}

func TestRatio_JSON(t *testing.T) {
	tests := []struct {
		name  string
		ratio Ratio
		want  string
	}{
		{"finite", Ratio(1.5), `1.5`},
		{"nan", Ratio(math.NaN()), `"nan"`},
		{"inf", Ratio(math.Inf(1)), `"inf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Ratio
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.ratio.String(), back.String())
		})
	}
}

func TestRatio_UnmarshalJSONInvalid(t *testing.T) {
	var r Ratio
	assert.Error(t, json.Unmarshal([]byte(`"huge"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))
}

func TestNewRow(t *testing.T) {
	row := NewRow(4, 18, 9)
	assert.Equal(t, uint64(4), row.Budget)
	assert.Equal(t, uint64(18), row.Count)
	assert.Equal(t, int64(9), row.Delta)
	assert.Equal(t, Ratio(2), row.Ratio)

	shrink := NewRow(7, 5, 9)
	assert.Equal(t, int64(-4), shrink.Delta)
}

func TestSeries_Row(t *testing.T) {
	s := Series{Rows: []Row{NewRow(4, 18, 0), NewRow(5, 27, 18)}}

	row, ok := s.Row(5)
	require.True(t, ok)
	assert.Equal(t, uint64(27), row.Count)

	_, ok = s.Row(3)
	assert.False(t, ok)
	_, ok = s.Row(6)
	assert.False(t, ok)

	_, ok = Series{}.Row(0)
	assert.False(t, ok)
}

func TestReport_SeriesFor(t *testing.T) {
	report := &Report{Series: []Series{
		{Policy: budget.PolicyLegacy},
		{Policy: budget.PolicySeverity},
	}}

	s, ok := report.SeriesFor(budget.PolicySeverity)
	require.True(t, ok)
	assert.Equal(t, budget.PolicySeverity, s.Policy)

	_, ok = (&Report{}).SeriesFor(budget.PolicyLegacy)
	assert.False(t, ok)
}
