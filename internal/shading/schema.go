package shading

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/seedexport/internal/project"
)

//go:embed models.yaml
var modelsYAML []byte

// Widget says how an attribute's host value is translated.
type Widget string

const (
	WidgetEntityPicker Widget = "entity_picker"
	WidgetDropdown     Widget = "dropdown_list"
	WidgetText         Widget = "text"
)

// Attribute is one input of a shading model.
type Attribute struct {
	Name    string   `yaml:"name"`
	Widget  Widget   `yaml:"widget"`
	Default string   `yaml:"default"`
	Options []string `yaml:"options"`
}

// Model describes one renderer shading model.
type Model struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"` // bsdf, edf or surface_shader
	Attributes []Attribute `yaml:"attributes"`
}

// Kind returns the entity kind the model produces.
func (m *Model) Kind() project.Kind {
	switch m.Type {
	case "edf":
		return project.KindEDF
	case "surface_shader":
		return project.KindSurfaceShader
	}
	return project.KindBSDF
}

// Schema is the set of known shading models.
type Schema struct {
	Models []*Model `yaml:"models"`
	byName map[string]*Model
}

// ParseSchema reads a schema document.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("shading schema: %w", err)
	}
	s.byName = make(map[string]*Model, len(s.Models))
	for _, m := range s.Models {
		switch m.Type {
		case "bsdf", "edf", "surface_shader":
		default:
			return nil, fmt.Errorf("shading schema: model %s has type %q", m.Name, m.Type)
		}
		for _, a := range m.Attributes {
			switch a.Widget {
			case WidgetEntityPicker, WidgetDropdown, WidgetText:
			default:
				return nil, fmt.Errorf("shading schema: %s.%s has widget %q", m.Name, a.Name, a.Widget)
			}
		}
		s.byName[m.Name] = m
	}
	return &s, nil
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// DefaultSchema returns the embedded model schema.
func DefaultSchema() (*Schema, error) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = ParseSchema(modelsYAML)
	})
	return defaultSchema, defaultSchemaErr
}

// Lookup returns the model named name.
func (s *Schema) Lookup(name string) (*Model, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// Suggest returns the known model name closest to name, or "" when nothing
// is reasonably close.
func (s *Schema) Suggest(name string) string {
	metric := metrics.NewJaroWinkler()
	best, bestScore := "", 0.0
	for _, m := range s.Models {
		score := strutil.Similarity(name, m.Name, metric)
		if score > bestScore {
			best, bestScore = m.Name, score
		}
	}
	if bestScore < 0.7 {
		return ""
	}
	return best
}
