// Package press builds the Gazette's releases. Every constructor is a
// pure function from a typed context to a PressRelease; the layered-press
// planner in layers.go decides how much follow-on coverage an event earns.
package press

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// Press type tags. The archive and the tone packs key off these.
const (
	TypeAcademicBulletin       = "academic_bulletin"
	TypeResearchManifesto      = "research_manifesto"
	TypeDiscoveryReport        = "discovery_report"
	TypeRetractionNotice       = "retraction_notice"
	TypeAcademicGossip         = "academic_gossip"
	TypeTableTalk              = "table_talk"
	TypeTableTalkDigest        = "table_talk_digest"
	TypeTableTalkRoundup       = "table_talk_roundup"
	TypeRecruitmentReport      = "recruitment_report"
	TypeRecruitmentFollowup    = "recruitment_followup"
	TypeRecruitmentBrief       = "recruitment_brief"
	TypeDefectionNotice        = "defection_notice"
	TypeDefectionEpilogue      = "defection_epilogue"
	TypeFactionShift           = "faction_shift"
	TypeDiscoveryTheory        = "discovery_theory"
	TypeScholarGrudge          = "scholar_grudge"
	TypeConferenceScheduled    = "conference_scheduled"
	TypeConferenceOutcome      = "conference_outcome"
	TypeReputationShift        = "reputation_shift"
	TypeOpportunityUnlocked    = "opportunity_unlocked"
	TypeFactionInvestment      = "faction_investment"
	TypeArchiveEndowment       = "archive_endowment"
	TypeFactionProjectUpdate   = "faction_project_update"
	TypeFactionProjectComplete = "faction_project_complete"
	TypeSeasonalUpdate         = "seasonal_commitment_update"
	TypeSeasonalComplete       = "seasonal_commitment_complete"
	TypeSymposiumAnnouncement  = "symposium_announcement"
	TypeSymposiumReminder      = "symposium_reminder"
	TypeSymposiumReprimand     = "symposium_reprimand"
	TypeSymposiumResolution    = "symposium_resolution"
	TypeSymposiumProposal      = "symposium_proposal"
	TypeDigestHighlights       = "digest_highlights"
	TypeSidewaysVignette       = "sideways_vignette"
	TypeSidewaysFollowup       = "sideways_followup"
	TypeSidecastDebut          = "sidecast_debut"
	TypeSidecastIntegration    = "sidecast_integration"
	TypeSidecastSpotlight      = "sidecast_spotlight"
	TypeMentorshipUpdate       = "mentorship_update"
	TypeEditorial              = "editorial"
	TypeInvestigation          = "investigation"
	TypeFactionStatement       = "faction_statement"
	TypeTimelineUpdate         = "timeline_update"
	TypeAdminAction            = "admin_action"
	TypeAdminUpdate            = "admin_update"
	TypeAnalysis               = "analysis"
)

// BulletinCtx feeds the academic bulletin for a submitted theory.
type BulletinCtx struct {
	Number     int64
	Player     string
	Theory     string
	Confidence model.Confidence
	Supporters []string
	Deadline   string
}

// AcademicBulletin announces a freshly submitted theory.
func AcademicBulletin(ctx BulletinCtx) model.PressRelease {
	var b strings.Builder
	fmt.Fprintf(&b, "%s submits for consideration: %q", ctx.Player, ctx.Theory)
	switch ctx.Confidence {
	case model.ConfidenceSuspect:
		b.WriteString(", offered with scholarly caution.")
	case model.ConfidenceCertain:
		b.WriteString(", stated with marked conviction.")
	case model.ConfidenceStakeMyCareer:
		b.WriteString(" — and stakes their career upon it.")
	}
	if len(ctx.Supporters) > 0 {
		fmt.Fprintf(&b, "\nIn support: %s.", strings.Join(ctx.Supporters, ", "))
	}
	fmt.Fprintf(&b, "\nThe question will be settled by %s.", ctx.Deadline)

	return model.PressRelease{
		Type:     TypeAcademicBulletin,
		Headline: fmt.Sprintf("Academic Bulletin No. %d", ctx.Number),
		Body:     b.String(),
		Metadata: map[string]any{
			"player":     ctx.Player,
			"confidence": string(ctx.Confidence),
			"bulletin":   ctx.Number,
		},
	}
}

// ManifestoCtx feeds the research manifesto for a queued expedition.
type ManifestoCtx struct {
	Code      string
	Player    string
	Type      model.ExpeditionType
	Objective string
	Team      []string
	Funding   []string
}

// ResearchManifesto announces a queued expedition.
func ResearchManifesto(ctx ManifestoCtx) model.PressRelease {
	var b strings.Builder
	fmt.Fprintf(&b, "%s announces %s — a %s venture in pursuit of: %s.",
		ctx.Player, ctx.Code, expeditionFlavor(ctx.Type), ctx.Objective)
	if len(ctx.Team) > 0 {
		fmt.Fprintf(&b, "\nThe roster: %s.", strings.Join(ctx.Team, ", "))
	}
	if len(ctx.Funding) > 0 {
		fmt.Fprintf(&b, "\nBacked by %s.", strings.Join(ctx.Funding, " and "))
	}
	return model.PressRelease{
		Type:     TypeResearchManifesto,
		Headline: fmt.Sprintf("Research Manifesto: %s", ctx.Code),
		Body:     b.String(),
		Metadata: map[string]any{
			"code":   ctx.Code,
			"player": ctx.Player,
			"type":   string(ctx.Type),
		},
	}
}

func expeditionFlavor(t model.ExpeditionType) string {
	switch t {
	case model.ExpeditionThinkTank:
		return "closed-door think tank"
	case model.ExpeditionField:
		return "field"
	case model.ExpeditionGreatProject:
		return "great project"
	}
	return string(t)
}

// OutcomeCtx feeds discovery reports and retraction notices.
type OutcomeCtx struct {
	Code            string
	Player          string
	ExpeditionType  model.ExpeditionType
	Objective       string
	Outcome         model.ExpeditionOutcome
	Roll            int
	Modifier        int
	FinalScore      int
	ReputationDelta int
	FailureDetail   string
	Sideways        string
	Team            []string
}

// DiscoveryReport announces a non-failure expedition resolution.
func DiscoveryReport(ctx OutcomeCtx) model.PressRelease {
	var b strings.Builder
	switch ctx.Outcome {
	case model.OutcomeLandmark:
		fmt.Fprintf(&b, "A landmark result. %s's %s has exceeded every projection regarding %s.", ctx.Player, ctx.Code, ctx.Objective)
	case model.OutcomeSuccess:
		fmt.Fprintf(&b, "%s's %s returns in triumph: the matter of %s is substantially settled.", ctx.Player, ctx.Code, ctx.Objective)
	default:
		fmt.Fprintf(&b, "%s's %s returns with mixed results on %s — enough to publish, not enough to gloat.", ctx.Player, ctx.Code, ctx.Objective)
	}
	if len(ctx.Team) > 0 {
		fmt.Fprintf(&b, "\nCredit is due to %s.", strings.Join(ctx.Team, ", "))
	}
	if ctx.Sideways != "" {
		fmt.Fprintf(&b, "\nUnexpectedly: %s", ctx.Sideways)
	}
	fmt.Fprintf(&b, "\nStanding adjusted by %+d.", ctx.ReputationDelta)
	return model.PressRelease{
		Type:     TypeDiscoveryReport,
		Headline: fmt.Sprintf("Discovery Report: %s", ctx.Code),
		Body:     b.String(),
		Metadata: outcomeMeta(ctx),
	}
}

// RetractionNotice announces a failed expedition.
func RetractionNotice(ctx OutcomeCtx) model.PressRelease {
	var b strings.Builder
	fmt.Fprintf(&b, "%s's %s has returned empty-handed from %s.", ctx.Player, ctx.Code, ctx.Objective)
	if ctx.FailureDetail != "" {
		fmt.Fprintf(&b, " %s", ctx.FailureDetail)
	}
	fmt.Fprintf(&b, "\nStanding adjusted by %+d.", ctx.ReputationDelta)
	return model.PressRelease{
		Type:     TypeRetractionNotice,
		Headline: fmt.Sprintf("Retraction: %s", ctx.Code),
		Body:     b.String(),
		Metadata: outcomeMeta(ctx),
	}
}

func outcomeMeta(ctx OutcomeCtx) map[string]any {
	return map[string]any{
		"code":             ctx.Code,
		"player":           ctx.Player,
		"outcome":          string(ctx.Outcome),
		"roll":             ctx.Roll,
		"modifier":         ctx.Modifier,
		"final_score":      ctx.FinalScore,
		"reputation_delta": ctx.ReputationDelta,
	}
}

// GossipCtx feeds academic gossip items.
type GossipCtx struct {
	Scholar string
	Quote   string
	Trigger string
}

// AcademicGossip prints a scholar's unguarded remark.
func AcademicGossip(ctx GossipCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeAcademicGossip,
		Headline: fmt.Sprintf("Heard in the Commons: %s", ctx.Scholar),
		Body:     fmt.Sprintf("%s, on the subject of %s: %q", ctx.Scholar, ctx.Trigger, ctx.Quote),
		Metadata: map[string]any{"scholar": ctx.Scholar, "trigger": ctx.Trigger},
	}
}

// RecruitmentCtx feeds the recruitment report.
type RecruitmentCtx struct {
	Player  string
	Scholar string
	Faction string
	Success bool
	Chance  float64
	Body    string // filled from catalog templates
}

// RecruitmentReport announces a recruitment attempt's outcome.
func RecruitmentReport(ctx RecruitmentCtx) model.PressRelease {
	verdict := "Declined"
	if ctx.Success {
		verdict = "Signed"
	}
	return model.PressRelease{
		Type:     TypeRecruitmentReport,
		Headline: fmt.Sprintf("%s: %s and %s", verdict, ctx.Player, ctx.Scholar),
		Body:     ctx.Body,
		Metadata: map[string]any{
			"player":  ctx.Player,
			"scholar": ctx.Scholar,
			"faction": ctx.Faction,
			"success": ctx.Success,
			"chance":  ctx.Chance,
		},
	}
}

// DefectionCtx feeds defection notices and epilogues.
type DefectionCtx struct {
	Scholar     string
	FormerHome  string
	NewHome     string
	Probability float64
	Scenario    string
}

// DefectionNotice announces a scholar changing patrons.
func DefectionNotice(ctx DefectionCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeDefectionNotice,
		Headline: fmt.Sprintf("Defection: %s leaves %s", ctx.Scholar, ctx.FormerHome),
		Body: fmt.Sprintf("%s has quit the service of %s for %s. The settlement of accounts — intellectual and otherwise — is expected to take some time.",
			ctx.Scholar, ctx.FormerHome, ctx.NewHome),
		Metadata: map[string]any{
			"scholar":     ctx.Scholar,
			"former":      ctx.FormerHome,
			"new":         ctx.NewHome,
			"probability": ctx.Probability,
		},
	}
}

// DefectionEpilogue closes a defection arc (grudge or reconciliation).
func DefectionEpilogue(ctx DefectionCtx) model.PressRelease {
	var body string
	switch ctx.Scenario {
	case "reconciliation":
		body = fmt.Sprintf("In a turn few predicted, %s has returned to %s. Both parties describe the intervening weeks as 'a misunderstanding'.", ctx.Scholar, ctx.FormerHome)
	default:
		body = fmt.Sprintf("%s is reported to speak of %s only in the past tense, and not kindly. Colleagues have learned not to raise the subject.", ctx.Scholar, ctx.FormerHome)
	}
	return model.PressRelease{
		Type:     TypeDefectionEpilogue,
		Headline: fmt.Sprintf("Epilogue: %s", ctx.Scholar),
		Body:     body,
		Metadata: map[string]any{"scholar": ctx.Scholar, "scenario": ctx.Scenario},
	}
}

// FactionShiftCtx feeds faction shift notices from sideways effects.
type FactionShiftCtx struct {
	Player      string
	Faction     string
	Amount      int
	Description string
}

// FactionShift reports an influence swing caused by events in the field.
func FactionShift(ctx FactionShiftCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeFactionShift,
		Headline: fmt.Sprintf("Standing Shifts Within %s", ctx.Faction),
		Body: fmt.Sprintf("%s\n%s's account with %s moves by %+d.",
			ctx.Description, ctx.Player, ctx.Faction, ctx.Amount),
		Metadata: map[string]any{"player": ctx.Player, "faction": ctx.Faction, "amount": ctx.Amount},
	}
}

// ScholarGrudge reports a new grudge created sideways.
func ScholarGrudge(scholar, against, description string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeScholarGrudge,
		Headline: fmt.Sprintf("Bad Blood: %s", scholar),
		Body:     description,
		Metadata: map[string]any{"scholar": scholar, "against": against},
	}
}

// DiscoveryTheory reports a theory spawned by an expedition's findings.
func DiscoveryTheory(player, theory, deadline string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeDiscoveryTheory,
		Headline: "A Theory Forced Upon Us by the Evidence",
		Body: fmt.Sprintf("Findings in the field compel a new claim, recorded under %s's name: %q. The community has until %s to respond.",
			player, theory, deadline),
		Metadata: map[string]any{"player": player, "deadline": deadline},
	}
}

// OpportunityUnlocked reports a sideways-unlocked option.
func OpportunityUnlocked(player, tag, description string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeOpportunityUnlocked,
		Headline: fmt.Sprintf("A Door Opens for %s", player),
		Body:     description,
		Metadata: map[string]any{"player": player, "tag": tag},
	}
}

// ReputationShift reports a standing change outside the usual channels.
func ReputationShift(player string, delta int, reason string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeReputationShift,
		Headline: fmt.Sprintf("Standing Revised: %s", player),
		Body:     fmt.Sprintf("%s\n%s's reputation moves by %+d.", reason, player, delta),
		Metadata: map[string]any{"player": player, "delta": delta},
	}
}

// ConferenceCtx feeds conference press.
type ConferenceCtx struct {
	Code            string
	Player          string
	Theory          string
	Supporters      []string
	Opposition      []string
	Outcome         model.ExpeditionOutcome
	ReputationDelta int
}

// ConferenceScheduled announces a conference.
func ConferenceScheduled(ctx ConferenceCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeConferenceScheduled,
		Headline: fmt.Sprintf("Conference Called: %s", ctx.Code),
		Body: fmt.Sprintf("%s will defend %q before the assembled community. For: %s. Against: %s.",
			ctx.Player, ctx.Theory, nameList(ctx.Supporters), nameList(ctx.Opposition)),
		Metadata: map[string]any{"code": ctx.Code, "player": ctx.Player},
	}
}

// ConferenceOutcome reports how the defense went.
func ConferenceOutcome(ctx ConferenceCtx) model.PressRelease {
	var verdict string
	switch ctx.Outcome {
	case model.OutcomeSuccess:
		verdict = "The defense carried the room."
	case model.OutcomePartial:
		verdict = "The defense survived, though not unbloodied."
	default:
		verdict = "The defense collapsed under questioning."
	}
	return model.PressRelease{
		Type:     TypeConferenceOutcome,
		Headline: fmt.Sprintf("Conference Concluded: %s", ctx.Code),
		Body: fmt.Sprintf("%s %s's standing moves by %+d.",
			verdict, ctx.Player, ctx.ReputationDelta),
		Metadata: map[string]any{
			"code":             ctx.Code,
			"player":           ctx.Player,
			"outcome":          string(ctx.Outcome),
			"reputation_delta": ctx.ReputationDelta,
		},
	}
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "none recorded"
	}
	return strings.Join(names, ", ")
}

// InvestmentCtx feeds investment and endowment press.
type InvestmentCtx struct {
	Player  string
	Faction string
	Amount  int
	Program string
}

// FactionInvestmentNotice reports a direct influence investment.
func FactionInvestmentNotice(ctx InvestmentCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeFactionInvestment,
		Headline: fmt.Sprintf("%s Invests in %s", ctx.Player, ctx.Faction),
		Body: fmt.Sprintf("%s has committed %s influence to %s's %s programme. The faction's gratitude is noted in the usual ledgers.",
			ctx.Player, humanize.Comma(int64(ctx.Amount)), ctx.Faction, ctx.Program),
		Metadata: map[string]any{"player": ctx.Player, "faction": ctx.Faction, "amount": ctx.Amount, "program": ctx.Program},
	}
}

// ArchiveEndowmentNotice reports an endowment of the archive.
func ArchiveEndowmentNotice(ctx InvestmentCtx, reputationBonus int) model.PressRelease {
	body := fmt.Sprintf("%s endows the Grand Archive with %s influence, earmarked for %s.",
		ctx.Player, humanize.Comma(int64(ctx.Amount)), ctx.Program)
	if reputationBonus > 0 {
		body += fmt.Sprintf(" The Archivists reciprocate: standing improved by %+d.", reputationBonus)
	}
	return model.PressRelease{
		Type:     TypeArchiveEndowment,
		Headline: fmt.Sprintf("The Archive Thanks %s", ctx.Player),
		Body:     body,
		Metadata: map[string]any{"player": ctx.Player, "amount": ctx.Amount, "program": ctx.Program},
	}
}

// ProjectCtx feeds faction project press.
type ProjectCtx struct {
	Name     string
	Faction  string
	Progress float64
	Target   float64
}

// FactionProjectUpdate reports progress on a communal project.
func FactionProjectUpdate(ctx ProjectCtx) model.PressRelease {
	pct := 0.0
	if ctx.Target > 0 {
		pct = ctx.Progress / ctx.Target * 100
	}
	return model.PressRelease{
		Type:     TypeFactionProjectUpdate,
		Headline: fmt.Sprintf("Works Progress: %s", ctx.Name),
		Body: fmt.Sprintf("%s's %s advances to %.0f%% of its goal. Subscribers are assured the money is being well spent.",
			ctx.Faction, ctx.Name, pct),
		Metadata: map[string]any{"name": ctx.Name, "faction": ctx.Faction, "progress": ctx.Progress, "target": ctx.Target},
	}
}

// FactionProjectComplete celebrates a finished project.
func FactionProjectComplete(ctx ProjectCtx, contributors []string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeFactionProjectComplete,
		Headline: fmt.Sprintf("Completed: %s", ctx.Name),
		Body: fmt.Sprintf("%s declares the %s complete. Contributors — %s — are rewarded in influence and, more durably, in favours owed.",
			ctx.Faction, ctx.Name, nameList(contributors)),
		Metadata: map[string]any{"name": ctx.Name, "faction": ctx.Faction},
	}
}

// SeasonalCtx feeds seasonal commitment press.
type SeasonalCtx struct {
	Player  string
	Faction string
	Tier    string
	Cost    int
	Debt    int
}

// SeasonalCommitmentUpdate reports a periodic charge.
func SeasonalCommitmentUpdate(ctx SeasonalCtx) model.PressRelease {
	body := fmt.Sprintf("%s's %s commitment to %s falls due: %d influence.", ctx.Player, ctx.Tier, ctx.Faction, ctx.Cost)
	if ctx.Debt > 0 {
		body += fmt.Sprintf(" %d could not be paid and is carried as debt.", ctx.Debt)
	}
	return model.PressRelease{
		Type:     TypeSeasonalUpdate,
		Headline: fmt.Sprintf("Season's Dues: %s", ctx.Player),
		Body:     body,
		Metadata: map[string]any{"player": ctx.Player, "faction": ctx.Faction, "cost": ctx.Cost, "debt": ctx.Debt},
	}
}

// SeasonalCommitmentComplete closes out a commitment.
func SeasonalCommitmentComplete(ctx SeasonalCtx) model.PressRelease {
	return model.PressRelease{
		Type:     TypeSeasonalComplete,
		Headline: fmt.Sprintf("Commitment Fulfilled: %s", ctx.Player),
		Body: fmt.Sprintf("%s has seen out the full term of their %s commitment to %s. The faction's clerks record the account as settled.",
			ctx.Player, ctx.Tier, ctx.Faction),
		Metadata: map[string]any{"player": ctx.Player, "faction": ctx.Faction},
	}
}

// MentorshipCtx feeds mentorship press.
type MentorshipCtx struct {
	Player  string
	Scholar string
	Track   model.CareerTrack
	Phase   string // "queued", "activated", "completed", "reassigned"
	Tier    string
}

// MentorshipUpdate reports a mentorship lifecycle change.
func MentorshipUpdate(ctx MentorshipCtx) model.PressRelease {
	var body string
	switch ctx.Phase {
	case "activated":
		body = fmt.Sprintf("%s has formally taken %s under their wing, steering them toward %s.", ctx.Player, ctx.Scholar, ctx.Track)
	case "completed":
		body = fmt.Sprintf("%s's guidance of %s concludes at the summit: %s. The student is now, inconveniently for everyone, a peer.", ctx.Player, ctx.Scholar, ctx.Tier)
	case "reassigned":
		body = fmt.Sprintf("%s redirects %s's career toward %s. The scholar's feelings on the matter were not solicited.", ctx.Player, ctx.Scholar, ctx.Track)
	default:
		body = fmt.Sprintf("%s has petitioned to mentor %s. The paperwork proceeds at its customary pace.", ctx.Player, ctx.Scholar)
	}
	return model.PressRelease{
		Type:     TypeMentorshipUpdate,
		Headline: fmt.Sprintf("Mentorship: %s and %s", ctx.Player, ctx.Scholar),
		Body:     body,
		Metadata: map[string]any{"player": ctx.Player, "scholar": ctx.Scholar, "phase": ctx.Phase},
	}
}

// TableTalk prints a player's post to the commons board.
func TableTalk(player, message string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeTableTalk,
		Headline: fmt.Sprintf("Table Talk: %s", player),
		Body:     message,
		Metadata: map[string]any{"player": player},
	}
}

// TableTalkDigest batches recent table talk into one column.
func TableTalkDigest(posts []string) model.PressRelease {
	var b strings.Builder
	b.WriteString("Overheard at the long table this beat:\n")
	for _, p := range posts {
		fmt.Fprintf(&b, "— %s\n", p)
	}
	return model.PressRelease{
		Type:     TypeTableTalkDigest,
		Headline: "Table Talk Digest",
		Body:     b.String(),
		Metadata: map[string]any{"count": len(posts)},
	}
}

// TimelineUpdate reports the fiction's calendar advancing.
func TimelineUpdate(yearsElapsed, currentYear int) model.PressRelease {
	return model.PressRelease{
		Type:     TypeTimelineUpdate,
		Headline: fmt.Sprintf("The Year Is Now %d", currentYear),
		Body: fmt.Sprintf("The Gazette notes the passage of %s. Subscriptions remain payable in advance.",
			pluralYears(yearsElapsed)),
		Metadata: map[string]any{"years_elapsed": yearsElapsed, "current_year": currentYear},
	}
}

func pluralYears(n int) string {
	if n == 1 {
		return "a year"
	}
	return fmt.Sprintf("%d years", n)
}

// AdminAction stamps provenance on an administrative intervention.
func AdminAction(actor, summary string) model.PressRelease {
	return model.PressRelease{
		Type:     TypeAdminAction,
		Headline: "Notice From the Management",
		Body:     summary,
		Metadata: map[string]any{"actor": actor},
	}
}

// DigestHighlightsCtx summarises a digest beat.
type DigestHighlightsCtx struct {
	PressReleased   int
	OrdersResolved  int
	ReprisalsTaken  int
	YearsElapsed    int
	ExpeditionCodes []string
}

// DigestHighlights summarises what the beat accomplished.
func DigestHighlights(ctx DigestHighlightsCtx) model.PressRelease {
	var b strings.Builder
	b.WriteString("This beat in brief: ")
	parts := []string{}
	if ctx.PressReleased > 0 {
		parts = append(parts, fmt.Sprintf("%d scheduled stories released", ctx.PressReleased))
	}
	if ctx.OrdersResolved > 0 {
		parts = append(parts, fmt.Sprintf("%d matters resolved", ctx.OrdersResolved))
	}
	if len(ctx.ExpeditionCodes) > 0 {
		parts = append(parts, fmt.Sprintf("expeditions concluded (%s)", strings.Join(ctx.ExpeditionCodes, ", ")))
	}
	if ctx.ReprisalsTaken > 0 {
		parts = append(parts, fmt.Sprintf("%d reprisals exacted", ctx.ReprisalsTaken))
	}
	if ctx.YearsElapsed > 0 {
		parts = append(parts, fmt.Sprintf("the calendar advanced %s", pluralYears(ctx.YearsElapsed)))
	}
	b.WriteString(strings.Join(parts, "; "))
	b.WriteString(".")
	return model.PressRelease{
		Type:     TypeDigestHighlights,
		Headline: "Gazette Highlights",
		Body:     b.String(),
		Metadata: map[string]any{
			"press_released":  ctx.PressReleased,
			"orders_resolved": ctx.OrdersResolved,
		},
	}
}
