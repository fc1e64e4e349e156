package workspace

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/dexterity/utils"
)

// SampleStore is an append-only table of Cartesian points with one column per metric.
// Cells that were never computed hold NaN, which is distinct from a computed zero.
// A SampleStore is not safe for concurrent use.
type SampleStore struct {
	points  []r3.Vector
	columns map[string][]float64
}

// A Row is one sampled point together with every metric value recorded for it.
type Row struct {
	Point  r3.Vector
	Values map[string]float64
}

// NewSampleStore returns an empty store.
func NewSampleStore() *SampleStore {
	return &SampleStore{columns: map[string][]float64{}}
}

// Append adds one row per point, with metric set to the matching value and every other column missing.
func (s *SampleStore) Append(points []r3.Vector, values []float64, metric string) error {
	if metric == "" {
		return errors.New("metric name cannot be empty")
	}
	return s.AppendRows(points, map[string][]float64{metric: values})
}

// AppendRows adds one row per point with several metric columns filled at once. Columns not in
// values are missing for the new rows; columns new to the store are missing for the old rows.
func (s *SampleStore) AppendRows(points []r3.Vector, values map[string][]float64) error {
	for name, col := range values {
		if len(col) != len(points) {
			return &LengthMismatchError{What: "values for " + name, Got: len(col), Expected: len(points)}
		}
	}
	for name := range values {
		s.AddColumn(name)
	}
	for name, col := range s.columns {
		if newValues, ok := values[name]; ok {
			s.columns[name] = append(col, newValues...)
		} else {
			s.columns[name] = append(col, missingColumn(len(points))...)
		}
	}
	s.points = append(s.points, points...)
	return nil
}

// AddColumn registers metric as an all-missing column. It is a no-op if the column exists.
func (s *SampleStore) AddColumn(metric string) {
	if _, ok := s.columns[metric]; ok {
		return
	}
	s.columns[metric] = missingColumn(len(s.points))
}

// HasColumn reports whether metric has been added to the store.
func (s *SampleStore) HasColumn(metric string) bool {
	_, ok := s.columns[metric]
	return ok
}

// RowCount returns the number of rows.
func (s *SampleStore) RowCount() int {
	return len(s.points)
}

// Column returns a copy of the values recorded for metric, NaN where missing.
func (s *SampleStore) Column(metric string) ([]float64, error) {
	col, ok := s.columns[metric]
	if !ok {
		return nil, &ColumnNotFoundError{Name: metric}
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// PopulatedColumn returns the non-missing values recorded for metric, in row order.
func (s *SampleStore) PopulatedColumn(metric string) ([]float64, error) {
	col, ok := s.columns[metric]
	if !ok {
		return nil, &ColumnNotFoundError{Name: metric}
	}
	return lo.Reject(col, func(v float64, _ int) bool { return utils.IsMissing(v) }), nil
}

// ColumnNames returns the sorted metric names in the store.
func (s *SampleStore) ColumnNames() []string {
	names := lo.Keys(s.columns)
	sort.Strings(names)
	return names
}

// Points returns a copy of all sampled points in row order.
func (s *SampleStore) Points() []r3.Vector {
	out := make([]r3.Vector, len(s.points))
	copy(out, s.points)
	return out
}

// Point returns the point of row i.
func (s *SampleStore) Point(i int) (r3.Vector, error) {
	if i < 0 || i >= len(s.points) {
		return r3.Vector{}, errors.Errorf("row %d out of range [0, %d)", i, len(s.points))
	}
	return s.points[i], nil
}

// Row returns the point and all metric values of row i.
func (s *SampleStore) Row(i int) (Row, error) {
	pt, err := s.Point(i)
	if err != nil {
		return Row{}, err
	}
	values := make(map[string]float64, len(s.columns))
	for name, col := range s.columns {
		values[name] = col[i]
	}
	return Row{Point: pt, Values: values}, nil
}

// MaxDistance returns the distance from origin to the farthest finite point, or 0 for an empty store.
func (s *SampleStore) MaxDistance(origin r3.Vector) float64 {
	maxDist := 0.
	for _, pt := range s.points {
		if !finitePoint(pt) {
			continue
		}
		maxDist = math.Max(maxDist, pt.Sub(origin).Norm())
	}
	return maxDist
}

// Bounds returns the axis-aligned bounding box of the finite points. ok is false when there are none.
func (s *SampleStore) Bounds() (minPt, maxPt r3.Vector, ok bool) {
	for _, pt := range s.points {
		if !finitePoint(pt) {
			continue
		}
		if !ok {
			minPt, maxPt, ok = pt, pt, true
			continue
		}
		minPt = r3.Vector{X: math.Min(minPt.X, pt.X), Y: math.Min(minPt.Y, pt.Y), Z: math.Min(minPt.Z, pt.Z)}
		maxPt = r3.Vector{X: math.Max(maxPt.X, pt.X), Y: math.Max(maxPt.Y, pt.Y), Z: math.Max(maxPt.Z, pt.Z)}
	}
	return minPt, maxPt, ok
}

// Volume returns the volume of the bounding box of the finite points.
func (s *SampleStore) Volume() float64 {
	minPt, maxPt, ok := s.Bounds()
	if !ok {
		return 0
	}
	d := maxPt.Sub(minPt)
	return d.X * d.Y * d.Z
}

func finitePoint(pt r3.Vector) bool {
	for _, v := range []float64{pt.X, pt.Y, pt.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func missingColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = utils.Missing()
	}
	return col
}
