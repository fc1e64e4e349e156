package sweep

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/referenceframe"
	"go.viam.com/dexterity/workspace"
)

// Variable suffixes understood by ChainStudy. A variable is named "<frame>_<index>.<suffix>",
// e.g. "link_1.length" or "joint_0.range".
const (
	suffixLength = "length"
	suffixRange  = "range"
)

// LinkLength names the variable that sets the length of link i, keeping its direction.
func LinkLength(i int) string {
	return fmt.Sprintf("link_%d.%s", i, suffixLength)
}

// JointRange names the variable that sets joint i's limit to [-v, v] radians.
func JointRange(i int) string {
	return fmt.Sprintf("joint_%d.%s", i, suffixRange)
}

// ChainStudy scores serial chain designs by their global manipulability index. Each point of
// a sweep modifies a copy of Links and runs a fresh session on the result; sessions share Registry.
type ChainStudy struct {
	Name     string
	Links    []referenceframe.ChainLink
	Params   workspace.Params
	Registry *workspace.Registry
	Seed     int64
	Logger   logging.Logger
}

// Apply returns a copy of the study's links with p applied.
func (s *ChainStudy) Apply(p Point) ([]referenceframe.ChainLink, error) {
	links := append([]referenceframe.ChainLink(nil), s.Links...)
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		kind, idx, suffix, err := parseVariable(name)
		if err != nil {
			return nil, err
		}
		if idx >= len(links) {
			return nil, errors.Errorf("variable %q refers to index %d of a %d link chain", name, idx, len(links))
		}
		v := p[name]
		switch {
		case kind == "link" && suffix == suffixLength:
			if v < 0 {
				return nil, errors.Errorf("%s cannot be negative, got %v", name, v)
			}
			dir := links[idx].Offset
			if dir.Norm() == 0 {
				dir = r3.Vector{X: 1}
			}
			links[idx].Offset = dir.Normalize().Mul(v)
		case kind == "joint" && suffix == suffixRange:
			if v < 0 {
				return nil, errors.Errorf("%s cannot be negative, got %v", name, v)
			}
			links[idx].Limit = referenceframe.Limit{Min: -v, Max: v}
		default:
			return nil, errors.Errorf("unsupported sweep variable %q", name)
		}
	}
	return links, nil
}

// Objective returns the sweep objective evaluating the global index of each design.
func (s *ChainStudy) Objective() Objective {
	return func(ctx context.Context, p Point) (float64, error) {
		links, err := s.Apply(p)
		if err != nil {
			return 0, err
		}
		model, err := referenceframe.NewChainModel(s.Name, links)
		if err != nil {
			return 0, err
		}
		arm, err := kinematics.NewArm(model)
		if err != nil {
			return 0, err
		}
		opts := []workspace.Option{workspace.WithRegistry(s.Registry), workspace.WithSeed(s.Seed)}
		if s.Logger != nil {
			opts = append(opts, workspace.WithLogger(s.Logger))
		}
		ws, err := workspace.NewWorkSpace(arm, opts...)
		if err != nil {
			return 0, err
		}
		res, err := ws.GlobalIndex(ctx, s.Params)
		if err != nil {
			return 0, err
		}
		return res.Value, nil
	}
}

func parseVariable(name string) (kind string, idx int, suffix string, err error) {
	frame, suffix, ok := strings.Cut(name, ".")
	if !ok {
		return "", 0, "", errors.Errorf("sweep variable %q must look like link_<i>.length or joint_<i>.range", name)
	}
	kind, num, ok := strings.Cut(frame, "_")
	if !ok {
		return "", 0, "", errors.Errorf("sweep variable %q has no frame index", name)
	}
	idx, err = strconv.Atoi(num)
	if err != nil || idx < 0 {
		return "", 0, "", errors.Errorf("sweep variable %q has a bad frame index", name)
	}
	return kind, idx, suffix, nil
}
