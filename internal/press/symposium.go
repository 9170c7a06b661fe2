package press

import (
	"fmt"
	"strings"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// SymposiumCtx feeds the symposium press family.
type SymposiumCtx struct {
	Topic       string
	Description string
	Options     []string
	Player      string
	Winner      string
	Tally       map[int]int
	Pledge      int
}

// SymposiumAnnouncement opens voting on a topic.
func SymposiumAnnouncement(ctx SymposiumCtx) model.PressRelease {
	var b strings.Builder
	fmt.Fprintf(&b, "The floor is open: %q\n%s\n", ctx.Topic, ctx.Description)
	for i, opt := range ctx.Options {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, opt)
	}
	if ctx.Pledge > 0 {
		fmt.Fprintf(&b, "Attendance is pledged at %d influence. Absentees will be invoiced.", ctx.Pledge)
	}
	return model.PressRelease{
		Type:     TypeSymposiumAnnouncement,
		Headline: fmt.Sprintf("Symposium Convenes: %s", ctx.Topic),
		Body:     b.String(),
		Metadata: map[string]any{"topic": ctx.Topic},
	}
}

// SymposiumReminder nudges a player who has not voted.
func SymposiumReminder(player, topic string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSymposiumReminder,
		Headline: fmt.Sprintf("The Chair Notes an Empty Seat: %s", player),
		Body: fmt.Sprintf("%s has yet to register a position on %q. The chair is confident this is an oversight.",
			player, topic),
		Metadata: map[string]any{"player": player, "topic": topic},
	}
}

// SymposiumReprimand escalates after the reminder goes unheeded.
func SymposiumReprimand(player, topic string, missStreak int) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSymposiumReprimand,
		Headline: fmt.Sprintf("Formally Reprimanded: %s", player),
		Body: fmt.Sprintf("%s's silence on %q is the latest in a pattern (%d consecutive absences). The pledged influence is forfeit.",
			player, topic, missStreak),
		Metadata: map[string]any{"player": player, "topic": topic, "miss_streak": missStreak},
	}
}

// SymposiumResolution closes a topic with the tally.
func SymposiumResolution(ctx SymposiumCtx) model.PressRelease {
	var b strings.Builder
	fmt.Fprintf(&b, "The question of %q is settled: %s.\n", ctx.Topic, ctx.Winner)
	if len(ctx.Tally) > 0 {
		b.WriteString("The count: ")
		parts := make([]string, 0, len(ctx.Tally))
		for i, opt := range ctx.Options {
			parts = append(parts, fmt.Sprintf("%s %d", opt, ctx.Tally[i+1]))
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return model.PressRelease{
		Type:     TypeSymposiumResolution,
		Headline: fmt.Sprintf("Symposium Resolves: %s", ctx.Topic),
		Body:     b.String(),
		Metadata: map[string]any{"topic": ctx.Topic, "winner": ctx.Winner},
	}
}

// SymposiumProposalNotice acknowledges a player's submitted topic.
func SymposiumProposalNotice(player, topic string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSymposiumProposal,
		Headline: fmt.Sprintf("Proposed for Debate: %s", topic),
		Body: fmt.Sprintf("%s has put %q before the programme committee. Selection is by merit, seniority, and whatever passed for lunch.",
			player, topic),
		Metadata: map[string]any{"player": player, "topic": topic},
	}
}

// VignetteCtx feeds sideways vignettes and their followups.
type VignetteCtx struct {
	Player    string
	Objective string
	Headline  string
	Body      string
	Tag       string
}

// SidewaysVignette publishes a narrative aside spawned by an expedition.
func SidewaysVignette(ctx VignetteCtx) model.PressRelease {
	headline := ctx.Headline
	if headline == "" {
		headline = "Dispatches From the Margins"
	}
	return model.PressRelease{
		Type:     TypeSidewaysVignette,
		Headline: headline,
		Body:     ctx.Body,
		Metadata: map[string]any{"player": ctx.Player, "tag": ctx.Tag},
	}
}

// SidewaysFollowup closes the loop on an earlier vignette.
func SidewaysFollowup(ctx VignetteCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSidewaysFollowup,
		Headline: "The Margins, Revisited",
		Body:     ctx.Body,
		Metadata: map[string]any{"player": ctx.Player, "tag": ctx.Tag},
	}
}

// SidecastCtx feeds the three-phase sidecast arc.
type SidecastCtx struct {
	Scholar    string
	Sponsor    string
	Expedition string
	Arc        string
	Body       string
}

// SidecastDebut introduces a scholar surfaced by a sideways discovery.
func SidecastDebut(ctx SidecastCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSidecastDebut,
		Headline: fmt.Sprintf("A New Name: %s", ctx.Scholar),
		Body:     ctx.Body,
		Metadata: sidecastMeta(ctx, "debut"),
	}
}

// SidecastIntegration reports the newcomer finding their footing.
func SidecastIntegration(ctx SidecastCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSidecastIntegration,
		Headline: fmt.Sprintf("Settling In: %s", ctx.Scholar),
		Body:     ctx.Body,
		Metadata: sidecastMeta(ctx, "integration"),
	}
}

// SidecastSpotlight concludes the arc with the newcomer established.
func SidecastSpotlight(ctx SidecastCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSidecastSpotlight,
		Headline: fmt.Sprintf("In the Spotlight: %s", ctx.Scholar),
		Body:     ctx.Body,
		Metadata: sidecastMeta(ctx, "spotlight"),
	}
}

func sidecastMeta(ctx SidecastCtx, phase string) map[string]any {
	return map[string]any{
		"scholar": ctx.Scholar,
		"sponsor": ctx.Sponsor,
		"arc":     ctx.Arc,
		"phase":   phase,
	}
}
