package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

type stubSource struct {
	press  []model.PressRecord
	events []model.Event
	roster []*model.Scholar
	year   int
}

func (s *stubSource) PressArchive() ([]model.PressRecord, error) { return s.press, nil }
func (s *stubSource) EventLog(int) ([]model.Event, error)        { return s.events, nil }
func (s *stubSource) Roster() ([]*model.Scholar, error)          { return s.roster, nil }
func (s *stubSource) CurrentYear() (int, error)                  { return s.year, nil }

func TestExportWritesAllPages(t *testing.T) {
	now := time.Now()
	src := &stubSource{
		year: 1767,
		press: []model.PressRecord{
			{
				Release:   model.PressRelease{Type: "academic_bulletin", Headline: "Academic Bulletin No. 1", Body: "The tides answer to the moon."},
				Timestamp: now.Add(-2 * time.Hour),
			},
			{
				Release:   model.PressRelease{Type: "academic_gossip", Headline: "Overheard in the Cloister", Body: "Quite the claim."},
				Timestamp: now.Add(-time.Hour),
			},
		},
		events: []model.Event{
			{ID: 1, Timestamp: now, Action: "submit_theory"},
		},
		roster: []*model.Scholar{
			{
				Name:        "Dr. Quill",
				Archetype:   "visionary",
				Disciplines: []string{"astronomy", "tides"},
				Contract:    model.Contract{Employer: "alice"},
				Career:      model.Career{Track: model.TrackAcademia, Tier: "postdoc"},
			},
			{Name: "Dr. Loose End"},
		},
	}

	dir := t.TempDir()
	require.NoError(t, Export(src, filepath.Join(dir, "site")))

	raw, err := os.ReadFile(filepath.Join(dir, "site", "index.html"))
	require.NoError(t, err)
	index := string(raw)
	assert.Contains(t, index, "Overheard in the Cloister")
	assert.Contains(t, index, "Academic Bulletin No. 1")
	// Newest first on the front page.
	assert.Less(t,
		strings.Index(index, "Overheard in the Cloister"),
		strings.Index(index, "Academic Bulletin No. 1"))
	assert.Contains(t, index, "The year is 1767")

	events, err := os.ReadFile(filepath.Join(dir, "site", "events.html"))
	require.NoError(t, err)
	assert.Contains(t, string(events), "submit_theory")

	roster, err := os.ReadFile(filepath.Join(dir, "site", "roster.html"))
	require.NoError(t, err)
	assert.Contains(t, string(roster), "Dr. Quill")
	assert.Contains(t, string(roster), "astronomy, tides")
	assert.Contains(t, string(roster), "independent", "an empty employer renders as independent")
	assert.Contains(t, string(roster), "generalist", "no disciplines renders as generalist")
}

func TestExportEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(&stubSource{year: 1766}, dir))
	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "History has yet to happen")
}
