package workspace

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/referenceframe"
	"go.viam.com/dexterity/utils"
)

// A MetricFunc evaluates a local performance metric at each joint configuration and returns
// exactly one value per configuration.
type MetricFunc func(robot Robot, configs [][]referenceframe.Input, axes kinematics.Axes) ([]float64, error)

// A Metric is a named, described MetricFunc.
type Metric struct {
	Name        string
	Description string
	Fn          MetricFunc
}

// Registry is a catalog of metrics. It is safe for concurrent use and is meant to be shared
// by every session of a process. Registering an existing name replaces it; the last writer wins.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

var builtinDescriptions = map[kinematics.Method]string{
	kinematics.Yoshikawa:    "Yoshikawa index (determinant of Jacobian) - measures manipulability",
	kinematics.InvCondition: "Inverse condition number of the Jacobian - measures dexterity",
	kinematics.Asada:        "Asada index (minimum singular value) - measures worst-case performance",
}

// NewRegistry returns a registry holding the built-in manipulability metrics.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, method := range kinematics.Methods() {
		r.metrics[string(method)] = Metric{
			Name:        string(method),
			Description: builtinDescriptions[method],
			Fn:          MethodMetric(method),
		}
	}
	return r
}

// NewEmptyRegistry returns a registry with no metrics.
func NewEmptyRegistry() *Registry {
	return &Registry{metrics: map[string]Metric{}}
}

// Register inserts or replaces the metric called name.
func (r *Registry) Register(name string, fn MetricFunc, description string) error {
	if name == "" {
		return errors.New("metric name cannot be empty")
	}
	if fn == nil {
		return errors.Errorf("cannot register a nil function for metric %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[name] = Metric{Name: name, Description: description, Fn: fn}
	return nil
}

// RegisterMethod registers a metric named after method that evaluates Robot.Manipulability.
func (r *Registry) RegisterMethod(method kinematics.Method, description string) error {
	return r.Register(string(method), MethodMetric(method), description)
}

// MethodMetric returns a MetricFunc evaluating the given manipulability method. Samples are
// split across utils.ParallelFactor goroutines, so Robot.Manipulability must be safe for concurrent use.
func MethodMetric(method kinematics.Method) MetricFunc {
	return func(robot Robot, configs [][]referenceframe.Input, axes kinematics.Axes) ([]float64, error) {
		values := make([]float64, len(configs))
		err := utils.GroupWorkParallel(context.Background(), len(configs), func(_, from, to int) error {
			for i := from; i < to; i++ {
				v, err := robot.Manipulability(configs[i], method, axes)
				if err != nil {
					return errors.Wrapf(err, "%s at sample %d", method, i)
				}
				values[i] = v
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return values, nil
	}
}

// Get returns the metric called name.
func (r *Registry) Get(name string) (Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metrics[name]
	if !ok {
		available := lo.Keys(r.metrics)
		sort.Strings(available)
		return Metric{}, &MetricNotFoundError{Name: name, Available: available}
	}
	return m, nil
}

// Has reports whether a metric called name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.metrics[name]
	return ok
}

// Names returns the sorted names of all registered metrics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.metrics)
	sort.Strings(names)
	return names
}

// Describe returns the description of every registered metric, keyed by name.
func (r *Registry) Describe() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapValues(r.metrics, func(m Metric, _ string) string {
		return m.Description
	})
}

// Calculate evaluates the metric called name at every configuration.
func (r *Registry) Calculate(
	name string,
	robot Robot,
	configs [][]referenceframe.Input,
	axes kinematics.Axes,
) ([]float64, error) {
	m, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	values, err := m.Fn(robot, configs, axes)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating metric %q", name)
	}
	if len(values) != len(configs) {
		return nil, &LengthMismatchError{What: "metric " + name, Got: len(values), Expected: len(configs)}
	}
	return values, nil
}
