package scenario

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
)

var validate = validator.New()

// File is the YAML form of a scenario. Variables are declared in order, so
// an expression may only reference variables listed above it.
type File struct {
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description"`
	Context     string      `yaml:"context"`
	Variables   []Variable  `yaml:"variables" validate:"min=1,dive"`
	RemoveEdges [][2]string `yaml:"remove_edges"`
}

// Variable is one random or computed node.
type Variable struct {
	Name         string             `yaml:"name" validate:"required"`
	Role         string             `yaml:"role"`
	Distribution string             `yaml:"distribution" validate:"required_without=Expr,excluded_with=Expr"`
	Params       map[string]float64 `yaml:"params"`
	Expr         string             `yaml:"expr" validate:"required_without=Distribution"`
}

// LoadFile reads and builds a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and builds a scenario.
func Parse(data []byte) (*Scenario, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return f.Build()
}

// Build validates the file and turns it into a model.
func (f *File) Build() (*Scenario, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	b := bowtie.NewBuilder(f.Name)
	if f.Context != "" {
		b.Context(f.Context)
	}

	for _, v := range f.Variables {
		if v.Distribution != "" {
			dist, err := sampler.Parse(v.Distribution, v.Params)
			if err != nil {
				return nil, bowtie.NewModelError("Random", v.Name, err)
			}
			b.Random(v.Name, dist)
		} else {
			expr, err := bowtie.ParseExpr(v.Expr)
			if err != nil {
				return nil, bowtie.NewModelError("Deterministic", v.Name, err)
			}
			b.Deterministic(v.Name, expr)
		}

		if v.Role == "" {
			continue
		}
		role, err := bowtie.ParseRole(v.Role)
		if err != nil {
			return nil, bowtie.NewModelError("Tag", v.Name, err)
		}
		b.Tag(role, v.Name)
	}

	bt, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:        f.Name,
		Description: f.Description,
		Model:       bt,
		RemoveEdges: f.RemoveEdges,
	}, nil
}
