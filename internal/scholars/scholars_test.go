package scholars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
)

func testRepo(t *testing.T, seed int64) *Repository {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return NewRepository(cat, rng.New(seed))
}

func TestSeedBaseKeepsFixedIdentity(t *testing.T) {
	r := testRepo(t, 42)
	cat, err := catalog.Load()
	require.NoError(t, err)

	roster := r.SeedBase()
	require.Len(t, roster, len(cat.BaseScholars))
	for i, s := range roster {
		b := cat.BaseScholars[i]
		assert.Equal(t, b.ID, s.ID)
		assert.Equal(t, b.Name, s.Name)
		assert.Equal(t, b.Archetype, s.Archetype)
		assert.Equal(t, b.Faction, s.Contract.Faction)
		assert.Equal(t, model.IndependentEmployer, s.Contract.Employer)
		assert.Equal(t, model.TrackAcademia, s.Career.Track)
	}
}

func TestSeedBaseIsDeterministic(t *testing.T) {
	a := testRepo(t, 42).SeedBase()
	b := testRepo(t, 42).SeedBase()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Stats, b[i].Stats, "scholar %s", a[i].ID)
		assert.Equal(t, a[i].Politics, b[i].Politics)
	}
}

func TestGenerateSequentialIDs(t *testing.T) {
	r := testRepo(t, 7)
	first := r.Generate()
	second := r.Generate()
	assert.Equal(t, "s.gen-001", first.ID)
	assert.Equal(t, "s.gen-002", second.ID)
	assert.NotEmpty(t, first.Name)
	assert.Len(t, first.Disciplines, 2)
	assert.False(t, first.Employed())
}

func TestStatsStayInRange(t *testing.T) {
	r := testRepo(t, 99)
	for i := 0; i < 50; i++ {
		s := r.Generate()
		for name, v := range map[string]int{
			"talent":      s.Stats.Talent,
			"reliability": s.Stats.Reliability,
			"integrity":   s.Stats.Integrity,
			"theatrics":   s.Stats.Theatrics,
			"loyalty":     s.Stats.Loyalty,
			"risk":        s.Stats.Risk,
		} {
			assert.GreaterOrEqual(t, v, 1, "%s on %s", name, s.ID)
			assert.LessOrEqual(t, v, 10, "%s on %s", name, s.ID)
		}
	}
}

func TestPoliticsFavourHomeFaction(t *testing.T) {
	r := testRepo(t, 3)
	for i := 0; i < 30; i++ {
		s := r.Generate()
		require.Len(t, s.Politics, len(Factions))
		home, best := "", -100
		for f, lean := range s.Politics {
			if lean > best {
				home, best = f, lean
			}
		}
		assert.GreaterOrEqual(t, s.Politics[home], 3, "home leaning on %s", s.ID)
	}
}

func TestRetirementOrderPrefersTheUnattached(t *testing.T) {
	employed := model.Scholar{ID: "s.a", Stats: model.ScholarStats{Loyalty: 2}, Contract: model.Contract{Employer: "alice"}}
	loyalFree := model.Scholar{ID: "s.b", Stats: model.ScholarStats{Loyalty: 9}, Contract: model.Contract{Employer: model.IndependentEmployer}}
	fickleFree := model.Scholar{ID: "s.c", Stats: model.ScholarStats{Loyalty: 1}, Contract: model.Contract{Employer: model.IndependentEmployer}}

	ordered := RetirementOrder([]model.Scholar{employed, loyalFree, fickleFree})
	require.Len(t, ordered, 3)
	assert.Equal(t, "s.c", ordered[0].ID, "unemployed low loyalty goes first")
	assert.Equal(t, "s.b", ordered[1].ID)
	assert.Equal(t, "s.a", ordered[2].ID, "the employed retire last")
}

func TestRetirementOrderDoesNotMutateInput(t *testing.T) {
	in := []model.Scholar{
		{ID: "s.z", Contract: model.Contract{Employer: "alice"}},
		{ID: "s.a", Contract: model.Contract{Employer: model.IndependentEmployer}},
	}
	_ = RetirementOrder(in)
	assert.Equal(t, "s.z", in[0].ID)
}
