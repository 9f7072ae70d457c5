package scenarios

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ScoreBand is the range the instruction steers the model's bias score into.
type ScoreBand struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Fallback is the static analysis returned when the model's output cannot be used.
type Fallback struct {
	Score           float64  `yaml:"score"`
	Feedback        []string `yaml:"feedback"`
	Recommendations []string `yaml:"recommendations"`
}

// Demo points at an embedded demo resume.
type Demo struct {
	Variant string `yaml:"variant"`
	Label   string `yaml:"label"`
	File    string `yaml:"file"`
}

// Spec is the immutable prompt definition for one scenario.
type Spec struct {
	ID                      ID        `yaml:"-"`
	Key                     string    `yaml:"id"`
	Name                    string    `yaml:"name"`
	Description             string    `yaml:"description"`
	Prompt                  string    `yaml:"prompt"`
	System                  string    `yaml:"system"`
	ScoreBand               ScoreBand `yaml:"score_band"`
	RequiresRecommendations bool      `yaml:"requires_recommendations"`
	Fallback                Fallback  `yaml:"fallback"`
	Demos                   []Demo    `yaml:"demos"`
}

type catalogFile struct {
	Scenarios []Spec `yaml:"scenarios"`
	Generic   Spec   `yaml:"generic"`
}

// Catalog maps scenario IDs to their specs. It is read-only after Load.
type Catalog struct {
	specs   map[ID]Spec
	generic Spec
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog parsed from the embedded YAML, loading it once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for process start-up; it panics on a broken catalog.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("scenario catalog: %v", err))
	}
	return c
}

// LoadCatalog builds a catalog from YAML and checks it covers every known scenario.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{specs: make(map[ID]Spec, len(file.Scenarios))}
	var errs []error
	for _, spec := range file.Scenarios {
		id := Parse(spec.Key)
		if id == Unknown {
			errs = append(errs, fmt.Errorf("scenario %q is not a known id", spec.Key))
			continue
		}
		if _, dup := c.specs[id]; dup {
			errs = append(errs, fmt.Errorf("scenario %q defined twice", spec.Key))
			continue
		}
		spec.ID = id
		if err := spec.check(); err != nil {
			errs = append(errs, err)
			continue
		}
		c.specs[id] = spec
	}
	for _, id := range Known() {
		if _, ok := c.specs[id]; !ok {
			errs = append(errs, fmt.Errorf("scenario %q missing from catalog", id))
		}
	}

	file.Generic.ID = Unknown
	if err := file.Generic.check(); err != nil {
		errs = append(errs, fmt.Errorf("generic: %w", err))
	}
	c.generic = file.Generic

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s Spec) check() error {
	switch {
	case strings.TrimSpace(s.System) == "":
		return fmt.Errorf("scenario %q has no system instruction", s.Key)
	case len(s.Fallback.Feedback) == 0:
		return fmt.Errorf("scenario %q has no fallback feedback", s.Key)
	case s.RequiresRecommendations && len(s.Fallback.Recommendations) == 0:
		return fmt.Errorf("scenario %q requires recommendations but its fallback has none", s.Key)
	case s.ScoreBand.Min > s.ScoreBand.Max:
		return fmt.Errorf("scenario %q has an inverted score band", s.Key)
	}
	return nil
}

// Lookup returns the spec for id; Unknown gets the generic spec.
func (c *Catalog) Lookup(id ID) Spec {
	switch id {
	case Amazon, HireVue, Keyword, Socioeconomic:
		return c.specs[id]
	case Unknown:
		return c.generic
	default:
		return c.generic
	}
}

// All returns the known scenarios in display order.
func (c *Catalog) All() []Spec {
	out := make([]Spec, 0, len(c.specs))
	for _, id := range Known() {
		out = append(out, c.specs[id])
	}
	return out
}

// SystemInstruction renders the complete system message for the scenario: the
// framing, the score band guidance and the required output schema.
func (s Spec) SystemInstruction() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(s.System))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Express the bias score as a number from 0 to 100. For this simulation, scores typically fall between %s and %s.",
		formatScore(s.ScoreBand.Min), formatScore(s.ScoreBand.Max))
	b.WriteString("\n\nRespond with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"biasScore": number, "feedback": [string, ...]`)
	if s.RequiresRecommendations {
		b.WriteString(`, "recommendations": [string, ...]}`)
		b.WriteString("\nfeedback lists 2 to 5 specific bias indicators found in the resume. recommendations lists 2 to 5 concrete changes. Both are required.")
	} else {
		b.WriteString(`, "recommendations"?: [string, ...]}`)
		b.WriteString("\nfeedback lists 2 to 5 specific bias indicators found in the resume. recommendations is optional.")
	}
	return b.String()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
