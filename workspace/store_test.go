package workspace

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestStoreAppend(t *testing.T) {
	s := NewSampleStore()
	test.That(t, s.RowCount(), test.ShouldEqual, 0)
	test.That(t, s.ColumnNames(), test.ShouldBeEmpty)

	err := s.Append([]r3.Vector{{X: 1}, {X: 2}}, []float64{0.1, 0.2}, "yoshikawa")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.RowCount(), test.ShouldEqual, 2)

	// a second metric back-fills the first rows and leaves the new rows of the first column missing
	err = s.Append([]r3.Vector{{Y: 1}}, []float64{0.9}, "asada")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.RowCount(), test.ShouldEqual, 3)
	test.That(t, s.ColumnNames(), test.ShouldResemble, []string{"asada", "yoshikawa"})

	yosh, err := s.Column("yoshikawa")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, yosh[:2], test.ShouldResemble, []float64{0.1, 0.2})
	test.That(t, math.IsNaN(yosh[2]), test.ShouldBeTrue)

	asada, err := s.Column("asada")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(asada[0]) && math.IsNaN(asada[1]), test.ShouldBeTrue)
	test.That(t, asada[2], test.ShouldEqual, 0.9)

	populated, err := s.PopulatedColumn("yoshikawa")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, populated, test.ShouldResemble, []float64{0.1, 0.2})

	// copies do not alias the store
	yosh[0] = 100
	again, err := s.Column("yoshikawa")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again[0], test.ShouldEqual, 0.1)
	pts := s.Points()
	pts[0] = r3.Vector{Z: 5}
	pt, err := s.Point(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt, test.ShouldResemble, r3.Vector{X: 1})
}

func TestStoreAppendErrors(t *testing.T) {
	s := NewSampleStore()
	err := s.Append([]r3.Vector{{X: 1}, {X: 2}}, []float64{0.1}, "yoshikawa")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, s.RowCount(), test.ShouldEqual, 0)
	test.That(t, s.HasColumn("yoshikawa"), test.ShouldBeFalse)

	test.That(t, s.Append(nil, nil, ""), test.ShouldNotBeNil)

	_, err = s.Column("nope")
	test.That(t, IsColumnNotFoundError(err), test.ShouldBeTrue)
	_, err = s.PopulatedColumn("nope")
	test.That(t, IsColumnNotFoundError(err), test.ShouldBeTrue)
	_, err = s.Point(0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = s.Row(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStoreMonotonicRows(t *testing.T) {
	s := NewSampleStore()
	prev := 0
	for i := 1; i <= 10; i++ {
		points := make([]r3.Vector, i)
		values := make([]float64, i)
		test.That(t, s.Append(points, values, "m"), test.ShouldBeNil)
		test.That(t, s.RowCount(), test.ShouldBeGreaterThan, prev)
		prev = s.RowCount()
	}
	test.That(t, prev, test.ShouldEqual, 55)
}

func TestStoreAddColumn(t *testing.T) {
	s := NewSampleStore()
	test.That(t, s.Append([]r3.Vector{{}, {}}, []float64{1, 2}, "a"), test.ShouldBeNil)
	s.AddColumn("b")
	b, err := s.Column("b")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(b), test.ShouldEqual, 2)
	test.That(t, math.IsNaN(b[0]) && math.IsNaN(b[1]), test.ShouldBeTrue)

	// existing columns are untouched
	s.AddColumn("a")
	a, err := s.Column("a")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldResemble, []float64{1, 2})

	err = s.AppendRows([]r3.Vector{{X: 3}}, map[string][]float64{"a": {3}, "b": {4}})
	test.That(t, err, test.ShouldBeNil)
	row, err := s.Row(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, row.Point, test.ShouldResemble, r3.Vector{X: 3})
	test.That(t, row.Values, test.ShouldResemble, map[string]float64{"a": 3, "b": 4})

	err = s.AppendRows([]r3.Vector{{X: 3}}, map[string][]float64{"a": {3}, "b": {4, 5}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, s.RowCount(), test.ShouldEqual, 3)
}

func TestStoreGeometry(t *testing.T) {
	s := NewSampleStore()
	test.That(t, s.MaxDistance(r3.Vector{}), test.ShouldEqual, 0.)
	_, _, ok := s.Bounds()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, s.Volume(), test.ShouldEqual, 0.)

	points := []r3.Vector{
		{X: 1, Y: 2, Z: 3},
		{X: -1, Y: 0, Z: 1},
		{X: math.NaN(), Y: 100, Z: 100},
		{X: 0, Y: math.Inf(1), Z: 0},
	}
	test.That(t, s.Append(points, []float64{1, 1, 1, 1}, "m"), test.ShouldBeNil)

	test.That(t, s.MaxDistance(r3.Vector{}), test.ShouldAlmostEqual, math.Sqrt(14))
	test.That(t, s.MaxDistance(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldAlmostEqual, math.Sqrt(12))

	minPt, maxPt, ok := s.Bounds()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, minPt, test.ShouldResemble, r3.Vector{X: -1, Y: 0, Z: 1})
	test.That(t, maxPt, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, s.Volume(), test.ShouldAlmostEqual, 8.)
}
