// Package scholars generates and manages the non-player roster: the base
// cast seeded at game start, procedural hires to keep the roster topped
// up, and the retirement ordering that keeps it under its ceiling.
package scholars

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
)

// Factions the community is organised around. Scholar politics and
// player influence are both keyed by these names.
var Factions = []string{"academia", "industry", "libraries", "the_crown", "the_guild"}

// MemoryDecay is the per-digest multiplier applied to non-scarred
// feelings.
const MemoryDecay = 0.95

// Repository generates scholars from the catalog tables and the game's
// deterministic source. Not safe for concurrent use; the service owns it.
type Repository struct {
	cat       *catalog.Catalog
	src       *rng.Source
	generated int
}

// NewRepository binds the catalog tables to the game's random source.
func NewRepository(cat *catalog.Catalog, src *rng.Source) *Repository {
	return &Repository{cat: cat, src: src}
}

// SeedBase instantiates the founding roster from the catalog. Base
// scholars keep their fixed identity (name, archetype, disciplines,
// starting faction) and roll the rest.
func (r *Repository) SeedBase() []model.Scholar {
	out := make([]model.Scholar, 0, len(r.cat.BaseScholars))
	for _, b := range r.cat.BaseScholars {
		arch := r.cat.ArchetypeByName(b.Archetype)
		s := model.Scholar{
			ID:          b.ID,
			Name:        b.Name,
			Seed:        int64(r.src.Intn(1 << 30)),
			Archetype:   b.Archetype,
			Disciplines: append([]string(nil), b.Disciplines...),
			Stats:       r.rollStats(arch.Stats),
			Memory:      model.NewMemory(MemoryDecay),
			Career: model.Career{
				Track: model.TrackAcademia,
				Tier:  model.CareerTiers[model.TrackAcademia][0],
			},
			Contract: model.Contract{
				Employer: model.IndependentEmployer,
				Faction:  b.Faction,
			},
		}
		r.rollTraits(&s)
		s.Politics = r.rollPolitics(b.Faction)
		s.Catchphrase = r.catchphrase(arch, s.Disciplines)
		out = append(out, s)
	}
	return out
}

// Generate rolls a wholly procedural scholar to keep the roster above
// its floor. IDs are sequential within a game so replays line up.
func (r *Repository) Generate() model.Scholar {
	r.generated++
	arch := rng.Choice(r.src, r.cat.Archetypes)
	given := rng.Choice(r.src, r.cat.Namebank.Given)
	family := rng.Choice(r.src, r.cat.Namebank.Family)

	s := model.Scholar{
		ID:        fmt.Sprintf("s.gen-%03d", r.generated),
		Name:      fmt.Sprintf("%s %s", given, family),
		Seed:      int64(r.src.Intn(1 << 30)),
		Archetype: arch.Name,
		Stats:     r.rollStats(arch.Stats),
		Memory:    model.NewMemory(MemoryDecay),
		Career: model.Career{
			Track: model.TrackAcademia,
			Tier:  model.CareerTiers[model.TrackAcademia][0],
		},
		Contract: model.Contract{Employer: model.IndependentEmployer},
	}
	s.Disciplines = rng.Sample(r.src, r.cat.Traits.Disciplines, 2)
	r.rollTraits(&s)
	s.Politics = r.rollPolitics(rng.Choice(r.src, Factions))
	s.Catchphrase = r.catchphrase(&arch, s.Disciplines)
	return s
}

// rollStats jitters the archetype baseline by ±2, clamped to [1, 10].
func (r *Repository) rollStats(base model.ScholarStats) model.ScholarStats {
	j := func(v int) int {
		v += r.src.Roll(-2, 2)
		if v < 1 {
			v = 1
		}
		if v > 10 {
			v = 10
		}
		return v
	}
	return model.ScholarStats{
		Talent:      j(base.Talent),
		Reliability: j(base.Reliability),
		Integrity:   j(base.Integrity),
		Theatrics:   j(base.Theatrics),
		Loyalty:     j(base.Loyalty),
		Risk:        j(base.Risk),
	}
}

func (r *Repository) rollTraits(s *model.Scholar) {
	s.Methods = rng.Sample(r.src, r.cat.Traits.Methods, 2)
	s.Drives = rng.Sample(r.src, r.cat.Traits.Drives, 1)
	s.Virtues = rng.Sample(r.src, r.cat.Traits.Virtues, 1)
	s.Vices = rng.Sample(r.src, r.cat.Traits.Vices, 1)
	s.Taboos = rng.Sample(r.src, r.cat.Traits.Taboos, 1)
}

// rollPolitics gives the home faction a strong positive leaning and the
// rest small signed leanings.
func (r *Repository) rollPolitics(home string) map[string]int {
	politics := make(map[string]int, len(Factions))
	for _, f := range Factions {
		if f == home {
			politics[f] = r.src.Roll(3, 6)
		} else {
			politics[f] = r.src.Roll(-2, 2)
		}
	}
	return politics
}

func (r *Repository) catchphrase(arch *catalog.Archetype, disciplines []string) string {
	if len(arch.Catchphrases) == 0 {
		return ""
	}
	phrase := rng.Choice(r.src, arch.Catchphrases)
	discipline := "the field"
	if len(disciplines) > 0 {
		discipline = disciplines[0]
	}
	return strings.ReplaceAll(phrase, "{discipline}", discipline)
}

// RetirementOrder sorts scholars by how readily the game can let them
// go: the unemployed retire before the employed, then lower loyalty,
// then a thinner memory, then ID for a stable order.
func RetirementOrder(scholars []model.Scholar) []model.Scholar {
	out := append([]model.Scholar(nil), scholars...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Employed() != b.Employed() {
			return !a.Employed()
		}
		if a.Stats.Loyalty != b.Stats.Loyalty {
			return a.Stats.Loyalty < b.Stats.Loyalty
		}
		if len(a.Memory.Facts) != len(b.Memory.Facts) {
			return len(a.Memory.Facts) < len(b.Memory.Facts)
		}
		return a.ID < b.ID
	})
	return out
}
