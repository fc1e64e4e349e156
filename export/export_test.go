package export

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"go.viam.com/test"

	"go.viam.com/dexterity/workspace"
)

func mixedStore(t *testing.T) *workspace.SampleStore {
	t.Helper()
	s := workspace.NewSampleStore()
	test.That(t, s.Append([]r3.Vector{{X: 1, Y: 2, Z: 3}, {X: -0.5}}, []float64{0.25, 0}, "yoshikawa"), test.ShouldBeNil)
	test.That(t, s.Append([]r3.Vector{{Z: 7}}, []float64{1e-9}, "asada"), test.ShouldBeNil)
	return s
}

func sameStore(t *testing.T, got, expected *workspace.SampleStore) {
	t.Helper()
	test.That(t, got.RowCount(), test.ShouldEqual, expected.RowCount())
	test.That(t, got.ColumnNames(), test.ShouldResemble, expected.ColumnNames())
	test.That(t, got.Points(), test.ShouldResemble, expected.Points())
	for _, name := range expected.ColumnNames() {
		a, err := got.Column(name)
		test.That(t, err, test.ShouldBeNil)
		b, err := expected.Column(name)
		test.That(t, err, test.ShouldBeNil)
		for i := range b {
			if math.IsNaN(b[i]) {
				test.That(t, math.IsNaN(a[i]), test.ShouldBeTrue)
				continue
			}
			test.That(t, a[i], test.ShouldEqual, b[i])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, WriteCSV(&buf, mixedStore(t)), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldEqual, strings.Join([]string{
		"x,y,z,asada,yoshikawa",
		"1,2,3,,0.25",
		"-0.5,0,0,,0",
		"0,0,7,1e-09,",
		"",
	}, "\n"))

	test.That(t, WriteCSV(&buf, nil), test.ShouldNotBeNil)
}

func TestReadCSV(t *testing.T) {
	original := mixedStore(t)
	var buf bytes.Buffer
	test.That(t, WriteCSV(&buf, original), test.ShouldBeNil)
	read, err := ReadCSV(&buf)
	test.That(t, err, test.ShouldBeNil)
	sameStore(t, read, original)

	// header only keeps the empty columns
	read, err = ReadCSV(strings.NewReader("x,y,z,m\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.RowCount(), test.ShouldEqual, 0)
	test.That(t, read.HasColumn("m"), test.ShouldBeTrue)
}

func TestReadCSVErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"x,y\n",
		"a,b,c,m\n1,2,3,4\n",
		"x,y,z,\n1,2,3,4\n",
		"x,y,z,m\n1,2,3,four\n",
		"x,y,z,m\n1,2,3\n",
	} {
		_, err := ReadCSV(strings.NewReader(in))
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	original := mixedStore(t)
	test.That(t, WriteCSVFile(path, original), test.ShouldBeNil)
	read, err := ReadCSVFile(path)
	test.That(t, err, test.ShouldBeNil)
	sameStore(t, read, original)

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(filepath.Join(t.TempDir(), "runs.db"))
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, db.Close(), test.ShouldBeNil)
	}()

	original := mixedStore(t)
	first, err := db.SaveStore(ctx, "arm", original)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first, test.ShouldNotEqual, uuid.Nil)

	loaded, err := db.LoadStore(ctx, first)
	test.That(t, err, test.ShouldBeNil)
	sameStore(t, loaded, original)

	// a store without columns still keeps its points
	bare := workspace.NewSampleStore()
	test.That(t, bare.AppendRows([]r3.Vector{{X: 4}, {Y: 5}}, nil), test.ShouldBeNil)
	second, err := db.SaveStore(ctx, "bare", bare)
	test.That(t, err, test.ShouldBeNil)
	loaded, err = db.LoadStore(ctx, second)
	test.That(t, err, test.ShouldBeNil)
	sameStore(t, loaded, bare)

	runs, err := db.Runs(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(runs), test.ShouldEqual, 2)
	test.That(t, runs[0].ID, test.ShouldEqual, first)
	test.That(t, runs[0].Robot, test.ShouldEqual, "arm")
	test.That(t, runs[0].RowCount, test.ShouldEqual, 3)
	test.That(t, runs[1].ID, test.ShouldEqual, second)

	_, err = db.LoadStore(ctx, uuid.New())
	test.That(t, err, test.ShouldNotBeNil)
	_, err = db.SaveStore(ctx, "nil", nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSQLiteInMemory(t *testing.T) {
	db, err := OpenDB(":memory:")
	test.That(t, err, test.ShouldBeNil)
	defer db.Close()
	id, err := db.SaveStore(context.Background(), "arm", mixedStore(t))
	test.That(t, err, test.ShouldBeNil)
	loaded, err := db.LoadStore(context.Background(), id)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.RowCount(), test.ShouldEqual, 3)
}
