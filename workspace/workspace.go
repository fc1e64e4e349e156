package workspace

import (
	"math/rand"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/referenceframe"
)

// A Plotter renders the samples of a store, coloured by one metric, to a file.
type Plotter interface {
	PlotWorkspace(store *SampleStore, metric, path string) error
}

// WorkSpace is an analysis session bound to one robot. It owns its sample store and random
// source and is not safe for concurrent use; run concurrent analyses in separate sessions
// sharing one Registry.
type WorkSpace struct {
	id       uuid.UUID
	robot    Robot
	registry *Registry
	sampler  *Sampler
	store    *SampleStore
	logger   logging.Logger
	clock    clock.Clock
	plotter  Plotter
	rng      *rand.Rand
}

// An Option configures a WorkSpace.
type Option func(*WorkSpace)

// WithRegistry shares registry with the session instead of a private built-in registry.
func WithRegistry(registry *Registry) Option {
	return func(ws *WorkSpace) {
		ws.registry = registry
	}
}

// WithRand sets the random source joint samples are drawn from.
func WithRand(rng *rand.Rand) Option {
	return func(ws *WorkSpace) {
		ws.rng = rng
	}
}

// WithSeed seeds the random source joint samples are drawn from.
func WithSeed(seed int64) Option {
	//nolint:gosec
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger of the session.
func WithLogger(logger logging.Logger) Option {
	return func(ws *WorkSpace) {
		ws.logger = logger
	}
}

// WithClock sets the clock used to time estimations.
func WithClock(c clock.Clock) Option {
	return func(ws *WorkSpace) {
		ws.clock = c
	}
}

// WithPlotter sets the renderer used by Plot.
func WithPlotter(p Plotter) Option {
	return func(ws *WorkSpace) {
		ws.plotter = p
	}
}

// NewWorkSpace returns a session for robot with an empty sample store.
func NewWorkSpace(robot Robot, opts ...Option) (*WorkSpace, error) {
	if robot == nil {
		return nil, errors.New("workspace needs a robot")
	}
	ws := &WorkSpace{
		id:    uuid.New(),
		robot: robot,
		store: NewSampleStore(),
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(ws)
	}
	if ws.registry == nil {
		ws.registry = NewRegistry()
	}
	if ws.logger == nil {
		ws.logger = logging.NewLogger("workspace")
	}
	ws.logger = ws.logger.Sublogger(robot.Name())
	ws.sampler = NewSampler(ws.rng, ws.registry)
	return ws, nil
}

// ID uniquely identifies the session.
func (ws *WorkSpace) ID() uuid.UUID {
	return ws.id
}

// Robot returns the robot the session analyses.
func (ws *WorkSpace) Robot() Robot {
	return ws.robot
}

// Registry returns the metric registry of the session.
func (ws *WorkSpace) Registry() *Registry {
	return ws.registry
}

// Store returns the sample store of the session.
func (ws *WorkSpace) Store() *SampleStore {
	return ws.store
}

// Sampler returns the sampler of the session.
func (ws *WorkSpace) Sampler() *Sampler {
	return ws.sampler
}

// Reset discards every sample.
func (ws *WorkSpace) Reset() {
	ws.store = NewSampleStore()
}

// GenerateJointSamples draws n configurations within the robot's joint limits.
func (ws *WorkSpace) GenerateJointSamples(n int) ([][]referenceframe.Input, error) {
	return ws.sampler.GenerateJointSamples(n, ws.robot.DoF())
}

// Sample draws n configurations, evaluates metric at each one and appends the rows to the store.
// A forward kinematics error is returned as the robot produced it and leaves the store untouched.
func (ws *WorkSpace) Sample(n int, metric string, axes kinematics.Axes) error {
	configs, err := ws.GenerateJointSamples(n)
	if err != nil {
		return err
	}
	points, err := ws.sampler.ToCartesian(configs, ws.robot.ForwardKinematics)
	if err != nil {
		return err
	}
	values, err := ws.sampler.EvaluateMetric(ws.robot, configs, metric, axes)
	if err != nil {
		return err
	}
	return ws.store.Append(points, values, metric)
}

// AddSamples appends externally computed points and metric values to the store.
func (ws *WorkSpace) AddSamples(points []r3.Vector, values []float64, metric string) error {
	return ws.store.Append(points, values, metric)
}

// AddMetricColumn adds an all-missing column for metric to the store.
func (ws *WorkSpace) AddMetricColumn(metric string) {
	ws.store.AddColumn(metric)
}

// Indice evaluates a registered metric at the given configurations without storing the values.
func (ws *WorkSpace) Indice(name string, configs [][]referenceframe.Input, axes kinematics.Axes) ([]float64, error) {
	return ws.registry.Calculate(name, ws.robot, configs, axes)
}

// AddIndice registers a metric in the session's registry, which other sessions may share.
func (ws *WorkSpace) AddIndice(name string, fn MetricFunc, description string) error {
	return ws.registry.Register(name, fn, description)
}

// ListIndices returns the description of every metric available to the session.
func (ws *WorkSpace) ListIndices() map[string]string {
	return ws.registry.Describe()
}

// CalcGlobalIndex reduces the current store without sampling.
func (ws *WorkSpace) CalcGlobalIndex(metric string, normalized bool) (float64, error) {
	return ComputeGlobalIndex(ws.store, metric, normalized)
}

// Summarize describes the distribution of metric over the current store.
func (ws *WorkSpace) Summarize(metric string) (Summary, error) {
	return Summarize(ws.store, metric)
}

// Plot renders the current store coloured by metric to path.
func (ws *WorkSpace) Plot(metric, path string) error {
	if ws.plotter == nil {
		return errors.New("no plotter configured for workspace")
	}
	if !ws.store.HasColumn(metric) {
		return &ColumnNotFoundError{Name: metric}
	}
	return ws.plotter.PlotWorkspace(ws.store, metric, path)
}
