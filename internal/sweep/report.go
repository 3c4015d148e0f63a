package sweep

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/fyrsmithlabs/depthbudget/internal/budget"
)

// Ratio is count / previous count. It is +Inf when the previous count is
// zero and the current one is not, and NaN when both are zero.
type Ratio float64

// NewRatio computes count / prev with the conventions above.
func NewRatio(count, prev uint64) Ratio {
	if prev == 0 {
		if count == 0 {
			return Ratio(math.NaN())
		}
		return Ratio(math.Inf(1))
	}
	return Ratio(float64(count) / float64(prev))
}

// String formats the ratio with five decimals, or as "inf" / "nan".
func (r Ratio) String() string {
	f := float64(r)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', 5, 64)
}

// MarshalJSON encodes finite ratios as numbers and the rest as strings,
// since JSON has no representation for infinities or NaN.
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(r.String())
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "nan":
			*r = Ratio(math.NaN())
		case "inf":
			*r = Ratio(math.Inf(1))
		case "-inf":
			*r = Ratio(math.Inf(-1))
		default:
			return fmt.Errorf("invalid ratio %q", s)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid ratio: %w", err)
	}
	*r = Ratio(f)
	return nil
}

// Row is the result for one budget in a series.
type Row struct {
	Budget uint64 `json:"budget" yaml:"budget" toml:"budget"`
	Count  uint64 `json:"count" yaml:"count" toml:"count"`
	// Delta is Count minus the previous row's count.
	Delta int64 `json:"delta" yaml:"delta" toml:"delta"`
	Ratio Ratio `json:"ratio" yaml:"ratio" toml:"ratio"`
}

// NewRow builds the row for count given the previous row's count.
func NewRow(d, count, prev uint64) Row {
	return Row{
		Budget: d,
		Count:  count,
		Delta:  int64(count) - int64(prev),
		Ratio:  NewRatio(count, prev),
	}
}

// Series holds the rows of one policy.
type Series struct {
	Policy budget.Policy `json:"policy" yaml:"policy" toml:"policy"`
	Rows   []Row         `json:"rows" yaml:"rows" toml:"rows"`
	// Nodes is the sum of all row counts.
	Nodes    uint64        `json:"nodes" yaml:"nodes" toml:"nodes"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns" toml:"duration_ns"`
}

// Row returns the row for budget d, if present.
func (s Series) Row(d uint64) (Row, bool) {
	if len(s.Rows) == 0 || d < s.Rows[0].Budget {
		return Row{}, false
	}
	i := d - s.Rows[0].Budget
	if i >= uint64(len(s.Rows)) {
		return Row{}, false
	}
	return s.Rows[i], true
}

// Report is the outcome of a sweep.
type Report struct {
	ID        string   `json:"id" yaml:"id" toml:"id"`
	Branching uint64   `json:"branching" yaml:"branching" toml:"branching"`
	From      uint64   `json:"from" yaml:"from" toml:"from"`
	To        uint64   `json:"to" yaml:"to" toml:"to"`
	Series    []Series `json:"series" yaml:"series" toml:"series"`
}

// SeriesFor returns the series of policy p, if present.
func (r *Report) SeriesFor(p budget.Policy) (Series, bool) {
	for _, s := range r.Series {
		if s.Policy == p {
			return s, true
		}
	}
	return Series{}, false
}
