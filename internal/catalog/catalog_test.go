package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedTables(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Archetypes)
	assert.NotEmpty(t, c.Traits.Disciplines)
	assert.NotEmpty(t, c.Namebank.Given)
	assert.NotEmpty(t, c.Namebank.Family)
	assert.NotEmpty(t, c.Vignettes)
	assert.NotEmpty(t, c.Recruitment.Success)
	assert.NotEmpty(t, c.Recruitment.Failure)
}

func TestBaseScholarsReferenceKnownArchetypes(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, c.BaseScholars)
	for _, b := range c.BaseScholars {
		assert.NotNil(t, c.ArchetypeByName(b.Archetype), "scholar %s", b.ID)
		assert.NotEmpty(t, b.Faction, "scholar %s", b.ID)
	}
}

func TestSidecastArcsHaveAllPhases(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, c.SidecastArcs)
	for _, arc := range c.SidecastArcs {
		for _, phase := range []string{"debut", "integration", "spotlight"} {
			assert.NotEmpty(t, arc.Phases[phase], "arc %s phase %s", arc.Name, phase)
		}
	}
}

func TestTonePackLookup(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Nil(t, c.TonePackByName(""))
	assert.Nil(t, c.TonePackByName("no-such-pack"))
	if len(c.TonePacks) > 0 {
		pack := c.TonePackByName(c.TonePacks[0].Name)
		require.NotNil(t, pack)
		assert.NotEmpty(t, pack.Seed("default"))
	}
}

func TestArchetypeByNameMissing(t *testing.T) {
	c := &Catalog{}
	assert.Nil(t, c.ArchetypeByName("anything"))
}
