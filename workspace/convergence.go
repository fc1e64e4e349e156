package workspace

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/utils"
)

// Params controls a global index estimation.
type Params struct {
	// InitialSamples is the size of the first batch.
	InitialSamples int `json:"initial_samples"`
	// BatchRatio scales the row count into the size of each following batch.
	BatchRatio float64 `json:"batch_ratio"`
	// ErrorTolerance is the relative change between two estimates under which the loop stops.
	ErrorTolerance float64 `json:"error_tolerance"`
	// Metric is the registry name of the local metric to integrate.
	Metric string `json:"method"`
	// Axes selects the Jacobian rows passed to the metric.
	Axes kinematics.Axes `json:"axes"`
	// MaxSamples stops the loop once the store holds at least this many rows.
	MaxSamples int `json:"max_samples"`
	// Normalized divides each value by the column maximum before averaging.
	Normalized bool `json:"is_normalized"`
}

// DefaultParams returns the parameters used when a caller does not override them.
func DefaultParams() Params {
	return Params{
		InitialSamples: 3000,
		BatchRatio:     0.1,
		ErrorTolerance: 1e-2,
		Metric:         string(kinematics.Yoshikawa),
		Axes:           kinematics.AxesAll,
		MaxSamples:     20000,
	}
}

// Validate returns every problem with the parameters at once.
func (p Params) Validate() error {
	var err error
	if p.InitialSamples <= 0 {
		err = multierr.Append(err, errors.Errorf("initial_samples must be positive, got %d", p.InitialSamples))
	}
	if !(p.BatchRatio > 0) || math.IsInf(p.BatchRatio, 0) {
		err = multierr.Append(err, errors.Errorf("batch_ratio must be positive and finite, got %v", p.BatchRatio))
	}
	if !(p.ErrorTolerance >= 0) {
		err = multierr.Append(err, errors.Errorf("error_tolerance must be non-negative, got %v", p.ErrorTolerance))
	}
	if p.MaxSamples <= 0 {
		err = multierr.Append(err, errors.Errorf("max_samples must be positive, got %d", p.MaxSamples))
	}
	if p.Metric == "" {
		err = multierr.Append(err, errors.New("method must be set"))
	}
	if _, axesErr := kinematics.ParseAxes(string(p.Axes)); axesErr != nil {
		err = multierr.Append(err, axesErr)
	}
	return err
}

// Status is how a global index estimation ended.
type Status int

const (
	// StatusConverged means two consecutive estimates agreed within the tolerance.
	StatusConverged Status = iota
	// StatusExhausted means the sample cap was reached first. The value is the last estimate.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Iteration records one pass of the convergence loop.
type Iteration struct {
	Index         int     `json:"iteration"`
	Batch         int     `json:"batch"`
	Rows          int     `json:"rows"`
	Value         float64 `json:"value"`
	RelativeError float64 `json:"relative_error"`
}

// Result is the outcome of a global index estimation.
type Result struct {
	Value         float64
	Status        Status
	Iterations    int
	RowCount      int
	RelativeError float64
	History       []Iteration
	Elapsed       time.Duration
}

// Converged reports whether the estimate met the tolerance.
func (r *Result) Converged() bool {
	return r.Status == StatusConverged
}

// relativeError is |previous - current| / |current|. The denominator is the magnitude so a
// negative estimate cannot pass the tolerance check with a negative error. A zero current value
// gives 0 when previous is also 0 and +Inf otherwise.
func relativeError(previous, current float64) float64 {
	if current == 0 {
		if previous == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(previous-current) / math.Abs(current)
}

// GlobalIndex estimates the global value of a metric over the workspace. Each pass samples a
// batch of joint configurations, appends their points and metric values to the store, and
// recomputes the index. The first batch has InitialSamples rows and each following batch
// floor(rows * BatchRatio) rows, at least one. The first pass never converges. The loop stops
// when the relative change is within ErrorTolerance, or with StatusExhausted once the store
// holds MaxSamples rows. Rows already in the store take part in the estimate, and in normalized
// mode rows holding only other metrics dilute it (see ComputeGlobalIndex). Call Reset first for
// an estimate over this metric alone.
func (ws *WorkSpace) GlobalIndex(ctx context.Context, p Params) (*Result, error) {
	if p.Axes == "" {
		p.Axes = kinematics.AxesAll
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := ws.registry.Get(p.Metric); err != nil {
		return nil, err
	}
	limits := ws.robot.DoF()
	if err := ValidateLimits(limits); err != nil {
		return nil, err
	}

	logger := ws.logger.Sublogger("global")
	start := ws.clock.Now()
	result := &Result{}
	previous := 0.
	batch := p.InitialSamples
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ws.Sample(batch, p.Metric, p.Axes); err != nil {
			return nil, err
		}
		current, err := ComputeGlobalIndex(ws.store, p.Metric, p.Normalized)
		if err != nil {
			return nil, err
		}
		relErr := relativeError(previous, current)
		rows := ws.store.RowCount()

		result.History = append(result.History, Iteration{
			Index: iter, Batch: batch, Rows: rows, Value: current, RelativeError: relErr,
		})
		result.Value = current
		result.Iterations = iter
		result.RowCount = rows
		result.RelativeError = relErr
		logger.Debugw("iteration", "metric", p.Metric, "iteration", iter, "rows", rows,
			"value", current, "relative_error", relErr)

		if iter > 1 && relErr <= p.ErrorTolerance {
			result.Status = StatusConverged
			break
		}
		if rows >= p.MaxSamples {
			result.Status = StatusExhausted
			break
		}
		previous = current
		batch = utils.ScaleByRatio(rows, p.BatchRatio)
		if batch < 1 {
			batch = 1
		}
	}
	result.Elapsed = ws.clock.Since(start)

	logger.Infow("global index done", "robot", ws.robot.Name(), "metric", p.Metric,
		"status", result.Status.String(), "value", result.Value, "rows", result.RowCount,
		"iterations", result.Iterations, "elapsed", result.Elapsed)
	return result, nil
}
