package workspace

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ComputeGlobalIndex reduces the metric column of store to a scalar.
//
// Without normalization it is the mean over populated rows. With normalization it is
// sum / (RowCount * max), where RowCount counts every row of the store; if max is 0 the
// division by max is skipped and the result is sum / RowCount. Rows that only hold other
// metrics still count, so a store shared between metrics pulls the normalized value below 1.
func ComputeGlobalIndex(store *SampleStore, metric string, normalized bool) (float64, error) {
	values, err := store.PopulatedColumn(metric)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, &EmptyColumnError{Name: metric}
	}
	if !normalized {
		return stat.Mean(values, nil), nil
	}
	sum := floats.Sum(values)
	rows := float64(store.RowCount())
	maxValue := floats.Max(values)
	if maxValue == 0 {
		return sum / rows, nil
	}
	return sum / (rows * maxValue), nil
}
