// Package export writes sample stores to CSV files and SQLite databases and reads them back.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dexterity/workspace"
)

var pointHeader = []string{"x", "y", "z"}

// WriteCSV writes one line per row: the point followed by every metric column in name order.
// Missing values are written as empty cells.
func WriteCSV(w io.Writer, store *workspace.SampleStore) error {
	if store == nil {
		return errors.New("nil sample store")
	}
	names := store.ColumnNames()
	columns := make([][]float64, len(names))
	for i, name := range names {
		col, err := store.Column(name)
		if err != nil {
			return err
		}
		columns[i] = col
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, pointHeader...), names...)); err != nil {
		return err
	}
	record := make([]string, len(pointHeader)+len(names))
	for i, pt := range store.Points() {
		record[0] = formatFloat(pt.X)
		record[1] = formatFloat(pt.Y)
		record[2] = formatFloat(pt.Z)
		for j, col := range columns {
			record[3+j] = formatFloat(col[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV into a new store.
func ReadCSV(r io.Reader) (*workspace.SampleStore, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv header")
	}
	if len(header) < len(pointHeader) {
		return nil, errors.Errorf("csv header has %d columns, expected at least x,y,z", len(header))
	}
	for i, name := range pointHeader {
		if strings.TrimSpace(header[i]) != name {
			return nil, errors.Errorf("csv column %d is %q, expected %q", i, header[i], name)
		}
	}
	names := header[len(pointHeader):]

	var points []r3.Vector
	values := make(map[string][]float64, len(names))
	for _, name := range names {
		if name == "" {
			return nil, errors.New("csv header has an empty metric name")
		}
		values[name] = nil
	}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading csv line %d", line+1)
		}
		line++
		var parseErr error
		pt := r3.Vector{
			X: parseFloat(record[0], &parseErr),
			Y: parseFloat(record[1], &parseErr),
			Z: parseFloat(record[2], &parseErr),
		}
		for j, name := range names {
			values[name] = append(values[name], parseFloat(record[3+j], &parseErr))
		}
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "csv line %d", line)
		}
		points = append(points, pt)
	}

	store := workspace.NewSampleStore()
	for _, name := range names {
		store.AddColumn(name)
	}
	if err := store.AppendRows(points, values); err != nil {
		return nil, err
	}
	return store, nil
}

// WriteCSVFile writes store to a new file at path.
func WriteCSVFile(path string, store *workspace.SampleStore) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WriteCSV(f, store)
}

// ReadCSVFile reads the store saved at path.
func ReadCSVFile(path string) (*workspace.SampleStore, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string, errp *error) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		multierr.AppendInto(errp, err)
		return math.NaN()
	}
	return v
}
