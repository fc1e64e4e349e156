package workspace

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"go.uber.org/multierr"
)

// Summary describes the distribution of the populated values of one metric column.
type Summary struct {
	Metric  string
	Count   int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	Median  float64
	P5      float64
	P95     float64
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: n=%d mean=%.4g sd=%.4g min=%.4g median=%.4g max=%.4g",
		s.Metric, s.Count, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
}

// Summarize computes descriptive statistics of the populated rows of metric.
func Summarize(store *SampleStore, metric string) (Summary, error) {
	values, err := store.PopulatedColumn(metric)
	if err != nil {
		return Summary{}, err
	}
	if len(values) == 0 {
		return Summary{}, &EmptyColumnError{Name: metric}
	}
	summary := Summary{Metric: metric, Count: len(values), Missing: store.RowCount() - len(values)}

	var errs, e error
	summary.Mean, e = stats.Mean(values)
	errs = multierr.Append(errs, e)
	summary.StdDev, e = stats.StandardDeviation(values)
	errs = multierr.Append(errs, e)
	summary.Min, e = stats.Min(values)
	errs = multierr.Append(errs, e)
	summary.Max, e = stats.Max(values)
	errs = multierr.Append(errs, e)
	summary.Median, e = stats.Median(values)
	errs = multierr.Append(errs, e)
	summary.P5, e = stats.PercentileNearestRank(values, 5)
	errs = multierr.Append(errs, e)
	summary.P95, e = stats.PercentileNearestRank(values, 95)
	errs = multierr.Append(errs, e)
	if errs != nil {
		return Summary{}, errs
	}
	return summary, nil
}
