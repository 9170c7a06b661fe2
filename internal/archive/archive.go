// Package archive renders the game's public record (the press archive,
// the event log, and the scholar roster) into static HTML pages. It is
// a read-only projection: nothing here mutates game state.
package archive

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// Source is the read surface the exporter needs. *service.Service
// satisfies it.
type Source interface {
	PressArchive() ([]model.PressRecord, error)
	EventLog(limit int) ([]model.Event, error)
	Roster() ([]*model.Scholar, error)
	CurrentYear() (int, error)
}

// eventLogDepth bounds the exported event page.
const eventLogDepth = 500

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} — The Gazette</title>
<style>
body { font-family: Georgia, serif; max-width: 56em; margin: 2em auto; padding: 0 1em; color: #222; }
h1 { border-bottom: 3px double #222; padding-bottom: .3em; }
article { margin: 1.5em 0; border-bottom: 1px solid #ccc; padding-bottom: 1em; }
.meta { color: #777; font-size: .85em; }
nav a { margin-right: 1.5em; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: .3em .6em; text-align: left; }
</style>
</head>
<body>
<nav><a href="index.html">Press</a><a href="events.html">Record</a><a href="roster.html">Roster</a></nav>
<h1>{{.Title}}</h1>
<p class="meta">The year is {{.Year}}. Exported {{.Exported}}.</p>
{{.Body}}
</body>
</html>
`))

var pressTmpl = template.Must(template.New("press").Parse(`
{{range .}}<article>
<h2>{{.Release.Headline}}</h2>
<p class="meta">{{.Release.Type}} · {{.When}}</p>
<p>{{.Release.Body}}</p>
</article>
{{else}}<p>The archive is empty. History has yet to happen.</p>
{{end}}`))

var eventsTmpl = template.Must(template.New("events").Parse(`
<table>
<tr><th>#</th><th>When</th><th>Action</th></tr>
{{range .}}<tr><td>{{.ID}}</td><td>{{.When}}</td><td>{{.Action}}</td></tr>
{{end}}</table>`))

var rosterTmpl = template.Must(template.New("roster").Parse(`
<table>
<tr><th>Scholar</th><th>Archetype</th><th>Disciplines</th><th>Employer</th><th>Career</th></tr>
{{range .}}<tr><td>{{.Name}}</td><td>{{.Archetype}}</td><td>{{.Disciplines}}</td><td>{{.Employer}}</td><td>{{.Career}}</td></tr>
{{end}}</table>`))

type pressEntry struct {
	Release model.PressRelease
	When    string
}

type eventEntry struct {
	ID     int64
	When   string
	Action string
}

type rosterEntry struct {
	Name        string
	Archetype   string
	Disciplines string
	Employer    string
	Career      string
}

// Export writes index.html, events.html, and roster.html into dir,
// creating it if needed.
func Export(src Source, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("archive: create %s: %w", dir, err)
	}
	year, err := src.CurrentYear()
	if err != nil {
		return err
	}
	exported := time.Now().Format("2 January 2006 15:04")

	records, err := src.PressArchive()
	if err != nil {
		return err
	}
	press := make([]pressEntry, 0, len(records))
	// Newest first reads better on a front page.
	for i := len(records) - 1; i >= 0; i-- {
		press = append(press, pressEntry{
			Release: records[i].Release,
			When:    humanize.Time(records[i].Timestamp),
		})
	}
	if err := writePage(dir, "index.html", "The Press Archive", year, exported, pressTmpl, press); err != nil {
		return err
	}

	events, err := src.EventLog(eventLogDepth)
	if err != nil {
		return err
	}
	rows := make([]eventEntry, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventEntry{
			ID:     e.ID,
			When:   e.Timestamp.Format("2006-01-02 15:04"),
			Action: e.Action,
		})
	}
	if err := writePage(dir, "events.html", "The Permanent Record", year, exported, eventsTmpl, rows); err != nil {
		return err
	}

	roster, err := src.Roster()
	if err != nil {
		return err
	}
	entries := make([]rosterEntry, 0, len(roster))
	for _, sc := range roster {
		employer := sc.Contract.Employer
		if employer == "" {
			employer = "independent"
		}
		career := string(sc.Career.Track)
		if sc.Career.Tier != "" {
			career = fmt.Sprintf("%s (%s)", sc.Career.Track, sc.Career.Tier)
		}
		entries = append(entries, rosterEntry{
			Name:        sc.Name,
			Archetype:   sc.Archetype,
			Disciplines: joinOr(sc.Disciplines, "generalist"),
			Employer:    employer,
			Career:      career,
		})
	}
	return writePage(dir, "roster.html", "The Roster", year, exported, rosterTmpl, entries)
}

func writePage(dir, name, title string, year int, exported string, body *template.Template, data any) error {
	var buf bytes.Buffer
	if err := body.Execute(&buf, data); err != nil {
		return fmt.Errorf("archive: render %s: %w", name, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	defer f.Close()
	return pageTmpl.Execute(f, map[string]any{
		"Title":    title,
		"Year":     year,
		"Exported": exported,
		"Body":     template.HTML(buf.String()),
	})
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	out := items[0]
	for _, it := range items[1:] {
		out += ", " + it
	}
	return out
}
