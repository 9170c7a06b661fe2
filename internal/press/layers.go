package press

import (
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// Depth grades how much follow-on coverage an event earns.
type Depth int

const (
	DepthMinimal Depth = iota
	DepthStandard
	DepthExtensive
	DepthBreaking
)

func (d Depth) String() string {
	switch d {
	case DepthBreaking:
		return "breaking"
	case DepthExtensive:
		return "extensive"
	case DepthStandard:
		return "standard"
	}
	return "minimal"
}

// EventFacts is what the planner needs to know about an event to grade
// it. Zero values are fine for fields that do not apply.
type EventFacts struct {
	Kind            string
	Player          string
	Subject         string
	ReputationDelta int
	Outcome         model.ExpeditionOutcome
	ExpeditionType  model.ExpeditionType
	Confidence      model.Confidence
	FirstTime       bool
}

// Classify grades an event. Breaking outranks extensive, which outranks
// standard; ties go to the louder depth.
func Classify(f EventFacts) Depth {
	abs := f.ReputationDelta
	if abs < 0 {
		abs = -abs
	}
	if abs >= 10 {
		return DepthBreaking
	}
	switch {
	case f.ExpeditionType == model.ExpeditionGreatProject &&
		(f.Outcome == model.OutcomeSuccess || f.Outcome == model.OutcomeLandmark):
		return DepthExtensive
	case f.Outcome == model.OutcomeLandmark:
		return DepthExtensive
	case f.Kind == TypeDefectionNotice:
		return DepthExtensive
	case f.Confidence == model.ConfidenceStakeMyCareer:
		return DepthExtensive
	case f.FirstTime:
		return DepthExtensive
	}
	if abs >= 5 {
		return DepthStandard
	}
	return DepthMinimal
}

// Layer is one scheduled piece of follow-on coverage.
type Layer struct {
	Delay time.Duration
	Type  string
}

// PlanCoverage maps a depth onto the follow-on layers the archive will
// drip out after the primary release. Minimal events get nothing extra.
func PlanCoverage(d Depth) []Layer {
	switch d {
	case DepthBreaking:
		return []Layer{
			{Delay: 15 * time.Minute, Type: TypeInvestigation},
			{Delay: 2 * time.Hour, Type: TypeFactionStatement},
			{Delay: 6 * time.Hour, Type: TypeEditorial},
			{Delay: 24 * time.Hour, Type: TypeAnalysis},
		}
	case DepthExtensive:
		return []Layer{
			{Delay: 30 * time.Minute, Type: TypeAcademicGossip},
			{Delay: 4 * time.Hour, Type: TypeEditorial},
			{Delay: 24 * time.Hour, Type: TypeAnalysis},
		}
	case DepthStandard:
		return []Layer{
			{Delay: time.Hour, Type: TypeAcademicGossip},
		}
	}
	return nil
}

// RenderLayer produces the release for one planned layer.
func RenderLayer(l Layer, f EventFacts) model.PressRelease {
	switch l.Type {
	case TypeInvestigation:
		return model.PressRelease{
			Type:     TypeInvestigation,
			Headline: fmt.Sprintf("The Gazette Investigates: %s", f.Subject),
			Body: fmt.Sprintf("Our correspondents have spent the hours since the announcement pulling at threads. What %s has set in motion will not be undone quietly, and several parties who claimed surprise were, our sources insist, anything but.",
				f.Player),
			Metadata: layerMeta(f),
		}
	case TypeFactionStatement:
		return model.PressRelease{
			Type:     TypeFactionStatement,
			Headline: fmt.Sprintf("The Factions Respond: %s", f.Subject),
			Body: fmt.Sprintf("Statements have been issued, each calibrated to say nothing actionable. Reading between the lines, the settlement around %s's position is being renegotiated as we print.",
				f.Player),
			Metadata: layerMeta(f),
		}
	case TypeEditorial:
		return model.PressRelease{
			Type:     TypeEditorial,
			Headline: fmt.Sprintf("From the Editor's Desk: %s", f.Subject),
			Body: fmt.Sprintf("This paper has watched many reputations rise and fall, and it says this much for %s: whatever else may be said, the community is talking about nothing else. Whether that is achievement or symptom, our readers may judge.",
				f.Player),
			Metadata: layerMeta(f),
		}
	case TypeAnalysis:
		return model.PressRelease{
			Type:     TypeAnalysis,
			Headline: fmt.Sprintf("One Day Later: %s", f.Subject),
			Body: fmt.Sprintf("With a day's distance the picture is clearer. The immediate effect on %s's standing (%+d) is the least of it; the second-order consequences will occupy this column for some beats to come.",
				f.Player, f.ReputationDelta),
			Metadata: layerMeta(f),
		}
	case TypeAcademicGossip:
		return model.PressRelease{
			Type:     TypeAcademicGossip,
			Headline: fmt.Sprintf("Heard in the Commons: %s", f.Subject),
			Body: fmt.Sprintf("The common rooms have formed their opinions on the %s business faster than the referees ever could. The kindest assessment overheard: 'bold'. The least kind is not printable.",
				f.Subject),
			Metadata: layerMeta(f),
		}
	}
	return model.PressRelease{Type: l.Type, Headline: f.Subject, Metadata: layerMeta(f)}
}

func layerMeta(f EventFacts) map[string]any {
	return map[string]any{
		"player":  f.Player,
		"subject": f.Subject,
		"layered": true,
	}
}

// ApplyTone stamps the tone pack's seed for the release type into the
// release metadata so downstream enhancement stays on register.
func ApplyTone(rel *model.PressRelease, pack *catalog.TonePack) {
	if pack == nil {
		return
	}
	if rel.Metadata == nil {
		rel.Metadata = map[string]any{}
	}
	rel.Metadata["tone_seed"] = pack.Seed(rel.Type)
	rel.Metadata["tone_pack"] = pack.Name
}
