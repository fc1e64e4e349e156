// Package config reads analysis files describing a robot, the global index run and the
// optional sweep and export steps.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/plotting"
	"go.viam.com/dexterity/referenceframe"
	"go.viam.com/dexterity/sweep"
	"go.viam.com/dexterity/utils"
	"go.viam.com/dexterity/workspace"
)

// AnalysisConfig is the top level of an analysis file. Exactly one of Model or Chain
// describes the robot.
type AnalysisConfig struct {
	// Model is a JSON kinematics file, relative to the analysis file.
	Model       string           `json:"model"`
	Chain       *ChainConfig     `json:"chain"`
	GlobalIndex workspace.Params `json:"global_index"`
	Seed        int64            `json:"seed"`
	Sweep       *SweepConfig     `json:"sweep"`
	Export      ExportConfig     `json:"export"`

	dir string
}

// ChainConfig describes a serial chain of revolute joints.
type ChainConfig struct {
	Name  string       `json:"name"`
	Links []LinkConfig `json:"links"`
}

// LinkConfig is one revolute joint about Axis followed by a rigid Offset. Limits are in degrees.
type LinkConfig struct {
	Axis   [3]float64 `json:"axis"`
	Offset [3]float64 `json:"offset"`
	MinDeg float64    `json:"min_deg"`
	MaxDeg float64    `json:"max_deg"`
}

// SweepConfig lists the design variables of a chain sweep.
type SweepConfig struct {
	Variables   []VariableConfig `json:"variables"`
	Parallelism int              `json:"parallelism"`
	Minimize    bool             `json:"minimize"`
	CSV         string           `json:"csv"`
	// Plot is an image of the objective against PlotX, one line per GroupBy value.
	Plot    string `json:"plot"`
	PlotX   string `json:"plot_x"`
	GroupBy string `json:"group_by"`
}

// VariableConfig gives a variable either explicit Values or a Start, Stop and Num span.
type VariableConfig struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
	Start  float64   `json:"start"`
	Stop   float64   `json:"stop"`
	Num    int       `json:"num"`
}

// ExportConfig names the optional outputs of a global index run. Empty paths are skipped.
type ExportConfig struct {
	CSV             string `json:"csv"`
	SQLite          string `json:"sqlite"`
	Plot            string `json:"plot"`
	Projection      string `json:"projection"`
	ConvergencePlot string `json:"convergence_plot"`
}

// Default returns a config with the global index defaults and no robot.
func Default() *AnalysisConfig {
	return &AnalysisConfig{
		GlobalIndex: workspace.DefaultParams(),
		Seed:        1,
		Export:      ExportConfig{Projection: string(plotting.ProjectionXY)},
	}
}

// Read loads the JSON or YAML analysis file at path over the defaults.
func Read(path string) (*AnalysisConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var attrs map[string]interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &attrs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &attrs)
	default:
		return nil, errors.Errorf("unsupported config extension %q, expected .json, .yaml or .yml", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	cfg, err := FromAttributes(attrs)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// FromAttributes decodes an attribute map over the defaults. Unknown keys are errors.
func FromAttributes(attrs map[string]interface{}) (*AnalysisConfig, error) {
	cfg := Default()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   cfg,
		Metadata: &md,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, err
	}
	if len(md.Unused) > 0 {
		return nil, errors.Errorf("unknown config keys: %s", strings.Join(md.Unused, ", "))
	}
	return cfg, nil
}

// Validate reports every problem with the config at once.
func (cfg *AnalysisConfig) Validate() error {
	var err error
	switch {
	case cfg.Model == "" && cfg.Chain == nil:
		multierr.AppendInto(&err, errors.New("one of model or chain is required"))
	case cfg.Model != "" && cfg.Chain != nil:
		multierr.AppendInto(&err, errors.New("model and chain are mutually exclusive"))
	case cfg.Chain != nil:
		multierr.AppendInto(&err, cfg.Chain.Validate())
	}
	if paramErr := cfg.GlobalIndex.Validate(); paramErr != nil {
		multierr.AppendInto(&err, errors.Wrap(paramErr, "global_index"))
	}
	if cfg.Sweep != nil {
		if cfg.Chain == nil {
			multierr.AppendInto(&err, errors.New("sweep requires a chain"))
		}
		vars, varErr := cfg.Sweep.ToVariables()
		if varErr != nil {
			multierr.AppendInto(&err, errors.Wrap(varErr, "sweep"))
		} else if plotErr := cfg.Sweep.validatePlot(vars); plotErr != nil {
			multierr.AppendInto(&err, errors.Wrap(plotErr, "sweep"))
		}
	}
	if _, projErr := plotting.ParseProjection(cfg.Export.Projection); projErr != nil {
		multierr.AppendInto(&err, errors.Wrap(projErr, "export"))
	}
	return err
}

// Validate checks the chain has links with usable axes and limits.
func (c *ChainConfig) Validate() error {
	if len(c.Links) == 0 {
		return errors.New("chain needs at least one link")
	}
	var err error
	for i, link := range c.Links {
		if vec(link.Axis).Norm() == 0 {
			multierr.AppendInto(&err, errors.Errorf("chain link %d has a zero axis", i))
		}
		if limErr := link.limit().Validate(); limErr != nil {
			multierr.AppendInto(&err, errors.Wrapf(limErr, "chain link %d", i))
		}
	}
	return err
}

// ChainLinks converts the links to radians and vectors.
func (c *ChainConfig) ChainLinks() []referenceframe.ChainLink {
	links := make([]referenceframe.ChainLink, len(c.Links))
	for i, link := range c.Links {
		links[i] = referenceframe.ChainLink{Axis: vec(link.Axis), Offset: vec(link.Offset), Limit: link.limit()}
	}
	return links
}

func (l LinkConfig) limit() referenceframe.Limit {
	return referenceframe.Limit{Min: utils.DegToRad(l.MinDeg), Max: utils.DegToRad(l.MaxDeg)}
}

func vec(v [3]float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// ToVariables builds the sweep variables.
func (s *SweepConfig) ToVariables() ([]sweep.Variable, error) {
	if len(s.Variables) == 0 {
		return nil, errors.New("no sweep variables")
	}
	vars := make([]sweep.Variable, 0, len(s.Variables))
	for _, v := range s.Variables {
		if len(v.Values) > 0 {
			vars = append(vars, sweep.Variable{Name: v.Name, Values: v.Values})
			continue
		}
		variable, err := sweep.Linspace(v.Name, v.Start, v.Stop, v.Num)
		if err != nil {
			return nil, err
		}
		vars = append(vars, variable)
	}
	// surfaces duplicate and empty names
	if _, err := sweep.Grid(vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// PlotAxes returns the x and grouping variables of the sweep plot. The x variable defaults to
// the first sweep variable.
func (s *SweepConfig) PlotAxes() (string, string) {
	x := s.PlotX
	if x == "" && len(s.Variables) > 0 {
		x = s.Variables[0].Name
	}
	return x, s.GroupBy
}

func (s *SweepConfig) validatePlot(vars []sweep.Variable) error {
	if s.Plot == "" {
		return nil
	}
	names := make(map[string]bool, len(vars))
	for _, v := range vars {
		names[v.Name] = true
	}
	x, group := s.PlotAxes()
	if !names[x] {
		return errors.Errorf("plot_x %q is not a sweep variable", x)
	}
	if group != "" && (!names[group] || group == x) {
		return errors.Errorf("group_by %q must be a sweep variable other than plot_x", group)
	}
	return nil
}

// ModelPath resolves Model against the directory of the analysis file.
func (cfg *AnalysisConfig) ModelPath() string {
	if cfg.Model == "" || filepath.IsAbs(cfg.Model) || cfg.dir == "" {
		return cfg.Model
	}
	return filepath.Join(cfg.dir, cfg.Model)
}

// Arm builds the configured robot.
func (cfg *AnalysisConfig) Arm() (*kinematics.Arm, error) {
	var (
		model referenceframe.Model
		err   error
	)
	switch {
	case cfg.Chain != nil:
		name := cfg.Chain.Name
		if name == "" {
			name = "chain"
		}
		model, err = referenceframe.NewChainModel(name, cfg.Chain.ChainLinks())
	case cfg.Model != "":
		model, err = referenceframe.ParseModelJSONFile(cfg.ModelPath(), "")
	default:
		return nil, errors.New("no robot configured")
	}
	if err != nil {
		return nil, err
	}
	return kinematics.NewArm(model)
}

// Study returns the chain sweep study for this config.
func (cfg *AnalysisConfig) Study(registry *workspace.Registry, logger logging.Logger) (*sweep.ChainStudy, error) {
	if cfg.Chain == nil {
		return nil, errors.New("sweep requires a chain")
	}
	name := cfg.Chain.Name
	if name == "" {
		name = "chain"
	}
	return &sweep.ChainStudy{
		Name:     name,
		Links:    cfg.Chain.ChainLinks(),
		Params:   cfg.GlobalIndex,
		Registry: registry,
		Seed:     cfg.Seed,
		Logger:   logger,
	}, nil
}
