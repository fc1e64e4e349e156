// Package sweep evaluates an objective over the cartesian product of design variable values.
package sweep

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/dexterity/logging"
)

// A Variable is a named design parameter and the values it takes in a sweep.
type Variable struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Linspace returns a variable taking num evenly spaced values from start to stop inclusive.
func Linspace(name string, start, stop float64, num int) (Variable, error) {
	switch {
	case num < 1:
		return Variable{}, errors.Errorf("variable %q needs at least one step, got %d", name, num)
	case num == 1:
		return Variable{Name: name, Values: []float64{start}}, nil
	default:
		return Variable{Name: name, Values: floats.Span(make([]float64, num), start, stop)}, nil
	}
}

// A Point assigns one value to every swept variable.
type Point map[string]float64

// Grid returns every combination of the variables' values. The last variable varies fastest.
func Grid(vars []Variable) ([]Point, error) {
	if len(vars) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(vars))
	total := 1
	for _, v := range vars {
		if v.Name == "" {
			return nil, errors.New("sweep variable needs a name")
		}
		if seen[v.Name] {
			return nil, errors.Errorf("sweep variable %q listed twice", v.Name)
		}
		seen[v.Name] = true
		if len(v.Values) == 0 {
			return nil, errors.Errorf("sweep variable %q has no values", v.Name)
		}
		total *= len(v.Values)
	}

	points := make([]Point, 0, total)
	idx := make([]int, len(vars))
	for {
		p := make(Point, len(vars))
		for i, v := range vars {
			p[v.Name] = v.Values[idx[i]]
		}
		points = append(points, p)

		i := len(vars) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(vars[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return points, nil
		}
	}
}

// An Objective scores one point of a sweep.
type Objective func(ctx context.Context, p Point) (float64, error)

// Result is the outcome of evaluating one point. Failed evaluations have a NaN objective.
type Result struct {
	Point     Point
	Objective float64
	Success   bool
	Err       error
}

// Results holds a sweep's outcomes in grid order.
type Results struct {
	Variables []string
	Results   []Result
}

// Options tunes Run.
type Options struct {
	// Parallelism bounds concurrent evaluations. Zero or less runs one at a time.
	Parallelism int
	Logger      logging.Logger
}

// Run evaluates objective at every grid point of vars. An objective error marks that point
// as failed without stopping the sweep; only context cancellation aborts it.
func Run(ctx context.Context, vars []Variable, objective Objective, opts Options) (*Results, error) {
	if objective == nil {
		return nil, errors.New("sweep needs an objective")
	}
	points, err := Grid(vars)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("sweep")
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	results := &Results{Variables: names, Results: make([]Result, len(points))}
	logger.Infow("running sweep", "points", len(points), "parallelism", parallelism)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := objective(gctx, p)
			if err == nil && math.IsNaN(value) {
				err = errors.New("objective is NaN")
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warnw("sweep point failed", "point", p, "error", err)
				results.Results[i] = Result{Point: p, Objective: math.NaN(), Err: err}
				return nil
			}
			results.Results[i] = Result{Point: p, Objective: value, Success: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Best returns the successful result with the lowest objective, or the highest when minimize
// is false. ok is false if no point succeeded.
func (r *Results) Best(minimize bool) (best Result, ok bool) {
	for _, res := range r.Results {
		if !res.Success || math.IsNaN(res.Objective) {
			continue
		}
		if !ok || (minimize && res.Objective < best.Objective) || (!minimize && res.Objective > best.Objective) {
			best, ok = res, true
		}
	}
	return best, ok
}

// Failed counts the points whose evaluation failed.
func (r *Results) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success {
			n++
		}
	}
	return n
}

// WriteCSV writes one line per point: the variable values, the objective and whether it succeeded.
func (r *Results) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, r.Variables...), "objective", "success", "error")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, res := range r.Results {
		record := make([]string, 0, len(header))
		for _, name := range r.Variables {
			record = append(record, strconv.FormatFloat(res.Point[name], 'g', -1, 64))
		}
		objective := ""
		if !math.IsNaN(res.Objective) {
			objective = strconv.FormatFloat(res.Objective, 'g', -1, 64)
		}
		errText := ""
		if res.Err != nil {
			errText = res.Err.Error()
		}
		record = append(record, objective, strconv.FormatBool(res.Success), errText)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Table renders the results for a terminal, best first by the given sense.
func (r *Results) Table(minimize bool) string {
	sorted := append([]Result(nil), r.Results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Success != b.Success {
			return a.Success
		}
		if minimize {
			return a.Objective < b.Objective
		}
		return a.Objective > b.Objective
	})

	t := table.NewWriter()
	header := table.Row{"#"}
	for _, name := range r.Variables {
		header = append(header, name)
	}
	t.AppendHeader(append(header, "Objective", "Status"))
	for i, res := range sorted {
		row := table.Row{fmt.Sprintf("%d", i+1)}
		for _, name := range r.Variables {
			row = append(row, fmt.Sprintf("%.4g", res.Point[name]))
		}
		status := "ok"
		if !res.Success {
			status = "failed"
			if res.Err != nil {
				status = "failed: " + res.Err.Error()
			}
		}
		t.AppendRow(append(row, fmt.Sprintf("%.6g", res.Objective), status))
	}
	return t.Render()
}
