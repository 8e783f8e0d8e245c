package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the prefab holding every entity type.
const CatalogFile = "entities.yaml"

var ErrBadCatalog = errors.New("prefabs: bad catalog")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EntitySpec describes one entity type. Behavior, death, draw and init name
// entries of the function tables; an empty name selects the no-op.
type EntitySpec struct {
	Name     string         `yaml:"name" json:"name"`
	Behavior string         `yaml:"behavior" json:"behavior,omitempty"`
	Death    string         `yaml:"death" json:"death,omitempty"`
	Draw     string         `yaml:"draw" json:"draw,omitempty"`
	Init     string         `yaml:"init" json:"init,omitempty"`
	Health   int            `yaml:"health" json:"health,omitempty"`
	Attack   int            `yaml:"attack" json:"attack,omitempty"`
	Vision   int            `yaml:"vision" json:"vision,omitempty"`
	Frameset int            `yaml:"frameset" json:"frameset"`
	Color    *YAMLColor     `yaml:"color" json:"-"`
	Params   map[string]any `yaml:"params" json:"params,omitempty"`
}

type CatalogSpec struct {
	Types []EntitySpec `yaml:"types" json:"types"`
}

// LoadCatalog loads and validates the entity catalogue.
func LoadCatalog() (*CatalogSpec, error) {
	spec, err := LoadSpec[CatalogSpec](CatalogFile)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ParseCatalog decodes a catalogue from raw YAML.
func ParseCatalog(data []byte) (*CatalogSpec, error) {
	var spec CatalogSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal catalog: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (c *CatalogSpec) Validate() error {
	if len(c.Types) == 0 || c.Types[0].Name != "player" {
		return fmt.Errorf("%w: first type must be player", ErrBadCatalog)
	}
	if len(c.Types) > 0xFF {
		return fmt.Errorf("%w: %d types, ids are one byte", ErrBadCatalog, len(c.Types))
	}
	seen := make(map[string]bool, len(c.Types))
	for i, t := range c.Types {
		if t.Name == "" {
			return fmt.Errorf("%w: type %d has no name", ErrBadCatalog, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate type %q", ErrBadCatalog, t.Name)
		}
		seen[t.Name] = true
		for field, v := range map[string]int{"health": t.Health, "attack": t.Attack, "vision": t.Vision, "frameset": t.Frameset} {
			if v < 0 || v > 0xFF {
				return fmt.Errorf("%w: %s.%s = %d", ErrBadCatalog, t.Name, field, v)
			}
		}
	}
	return nil
}

// TypeID returns the id of the named type.
func (c *CatalogSpec) TypeID(name string) (uint8, bool) {
	if c == nil {
		return 0, false
	}
	for i, t := range c.Types {
		if t.Name == name {
			return uint8(i), true
		}
	}
	return 0, false
}

// DecodeParams decodes a type's free-form params into T.
func DecodeParams[T any](raw map[string]any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
