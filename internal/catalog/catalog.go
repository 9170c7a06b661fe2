// Package catalog holds the immutable data tables loaded once at startup:
// archetypes, trait lists, namebanks, tone packs, sidecast arcs, vignettes,
// recruitment templates, and the base scholar roster. The tables ship as
// embedded YAML; a load failure is fatal.
package catalog

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Archetype is a behavioral template scholars are generated from.
type Archetype struct {
	Name         string             `yaml:"name"`
	Stats        model.ScholarStats `yaml:"stats"`
	Catchphrases []string           `yaml:"catchphrases"`
}

// Traits are the lists scholars draw their flavor attributes from.
type Traits struct {
	Disciplines []string `yaml:"disciplines"`
	Methods     []string `yaml:"methods"`
	Drives      []string `yaml:"drives"`
	Virtues     []string `yaml:"virtues"`
	Vices       []string `yaml:"vices"`
	Taboos      []string `yaml:"taboos"`
}

// Namebank holds the name pools for procedural scholars.
type Namebank struct {
	Given  []string `yaml:"given"`
	Family []string `yaml:"family"`
}

// TonePack is a named bundle of seed phrases keyed by press type.
type TonePack struct {
	Name  string            `yaml:"name"`
	Seeds map[string]string `yaml:"seeds"`
}

// Seed returns the seed phrase for a press type, falling back to the
// pack's default entry.
func (t *TonePack) Seed(pressType string) string {
	if s, ok := t.Seeds[pressType]; ok {
		return s
	}
	return t.Seeds["default"]
}

// SidecastArc names a three-phase narrative for spawned scholars.
type SidecastArc struct {
	Name   string            `yaml:"name"`
	Phases map[string]string `yaml:"phases"` // debut / integration / spotlight
}

// Vignette is a small delayed scene triggered by expedition discoveries.
type Vignette struct {
	Headline string `yaml:"headline"`
	Body     string `yaml:"body"`
}

// RecruitmentTemplates hold the press copy pools for recruitment outcomes.
type RecruitmentTemplates struct {
	Success []string `yaml:"success"`
	Failure []string `yaml:"failure"`
	Gossip  []string `yaml:"gossip"`
}

// BaseScholar is a founding-roster entry; the generator fills in the rest.
type BaseScholar struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Archetype   string   `yaml:"archetype"`
	Disciplines []string `yaml:"disciplines"`
	Faction     string   `yaml:"faction"`
}

// Catalog bundles every loaded table.
type Catalog struct {
	Archetypes   []Archetype
	Traits       Traits
	Namebank     Namebank
	TonePacks    []TonePack
	SidecastArcs []SidecastArc
	Vignettes    []Vignette
	Recruitment  RecruitmentTemplates
	BaseScholars []BaseScholar
}

// Load parses every embedded table. Returns an error naming the first
// file that fails to parse or fails its sanity checks.
func Load() (*Catalog, error) {
	c := &Catalog{}

	if err := readYAML("data/archetypes.yaml", &c.Archetypes); err != nil {
		return nil, err
	}
	if err := readYAML("data/traits.yaml", &c.Traits); err != nil {
		return nil, err
	}
	if err := readYAML("data/namebanks.yaml", &c.Namebank); err != nil {
		return nil, err
	}
	if err := readYAML("data/tonepacks.yaml", &c.TonePacks); err != nil {
		return nil, err
	}
	if err := readYAML("data/sidecast_arcs.yaml", &c.SidecastArcs); err != nil {
		return nil, err
	}
	if err := readYAML("data/vignettes.yaml", &c.Vignettes); err != nil {
		return nil, err
	}
	if err := readYAML("data/recruitment.yaml", &c.Recruitment); err != nil {
		return nil, err
	}
	if err := readYAML("data/base_scholars.yaml", &c.BaseScholars); err != nil {
		return nil, err
	}

	if len(c.Archetypes) == 0 {
		return nil, fmt.Errorf("catalog: no archetypes loaded")
	}
	if len(c.Namebank.Given) == 0 || len(c.Namebank.Family) == 0 {
		return nil, fmt.Errorf("catalog: namebank is empty")
	}
	if len(c.BaseScholars) == 0 {
		return nil, fmt.Errorf("catalog: no base scholars loaded")
	}
	for _, b := range c.BaseScholars {
		if c.ArchetypeByName(b.Archetype) == nil {
			return nil, fmt.Errorf("catalog: base scholar %s references unknown archetype %q", b.ID, b.Archetype)
		}
	}
	for _, arc := range c.SidecastArcs {
		for _, phase := range []string{"debut", "integration", "spotlight"} {
			if arc.Phases[phase] == "" {
				return nil, fmt.Errorf("catalog: sidecast arc %q missing phase %q", arc.Name, phase)
			}
		}
	}

	return c, nil
}

func readYAML(name string, out any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}

// ArchetypeByName returns the named archetype, or nil.
func (c *Catalog) ArchetypeByName(name string) *Archetype {
	for i := range c.Archetypes {
		if c.Archetypes[i].Name == name {
			return &c.Archetypes[i]
		}
	}
	return nil
}

// TonePackByName returns the named tone pack, or nil when the name is
// empty or unknown (no tone pack active).
func (c *Catalog) TonePackByName(name string) *TonePack {
	for i := range c.TonePacks {
		if c.TonePacks[i].Name == name {
			return &c.TonePacks[i]
		}
	}
	return nil
}
