// Package expedition resolves queued expeditions: a d100 roll plus the
// preparation modifier, graded against per-type threshold bands that the
// prep depth shifts. Non-failure outcomes may roll a sideways discovery
// with mechanical consequences.
package expedition

import (
	"fmt"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
)

// Bands are the final-score cutoffs for one expedition type. A final
// score below Partial is a failure; below Success a partial; below
// Landmark a success; at or above Landmark a landmark.
type Bands struct {
	Partial  int
	Success  int
	Landmark int
}

// bandsByType grades each expedition type. Great projects demand more
// of the roll; think tanks forgive more.
var bandsByType = map[model.ExpeditionType]Bands{
	model.ExpeditionThinkTank:    {Partial: 30, Success: 60, Landmark: 90},
	model.ExpeditionField:        {Partial: 35, Success: 65, Landmark: 90},
	model.ExpeditionGreatProject: {Partial: 40, Success: 70, Landmark: 92},
}

// depthShift moves every band cutoff: shallow prep makes the same roll
// worth less, deep prep makes it worth more.
var depthShift = map[model.PrepDepth]int{
	model.DepthShallow:  10,
	model.DepthStandard: 0,
	model.DepthDeep:     -10,
}

// sidewaysChance is the base probability of a sideways discovery on a
// non-failure, per type, before the depth bonus.
var sidewaysChance = map[model.ExpeditionType]float64{
	model.ExpeditionThinkTank:    0.10,
	model.ExpeditionField:        0.25,
	model.ExpeditionGreatProject: 0.35,
}

var sidewaysDepthBonus = map[model.PrepDepth]float64{
	model.DepthShallow:  0,
	model.DepthStandard: 0.05,
	model.DepthDeep:     0.15,
}

var failureDetails = []string{
	"The site flooded before the first trench was cut.",
	"A local permit dispute consumed the season.",
	"The lead instrument was dropped. Twice.",
	"Funding arrived, but the porters did not.",
	"The preliminary survey proved to have surveyed the wrong valley.",
	"Internal disagreement over methodology became external, then physical.",
}

var sidewaysDiscoveries = []string{
	"an unrelated stratum of considerable interest",
	"correspondence that was very much not meant to be found",
	"a local informant with inconvenient expertise",
	"instrument readings nobody can yet explain",
	"a rival team's abandoned camp, notes included",
}

// Resolver grades expeditions against the band tables using the game's
// deterministic source.
type Resolver struct {
	src *rng.Source
}

// NewResolver wraps the game's random source.
func NewResolver(src *rng.Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve rolls one expedition. Team and funding feed the sideways
// effect payloads; the caller applies the effects.
func (r *Resolver) Resolve(rec *model.ExpeditionRecord) model.ExpeditionResult {
	bands := bandsByType[rec.Type]
	shift := depthShift[rec.PrepDepth]

	roll := r.src.Roll(1, 100)
	modifier := rec.Prep.Modifier()
	final := roll + modifier

	res := model.ExpeditionResult{
		Roll:       roll,
		Modifier:   modifier,
		FinalScore: final,
	}
	switch {
	case final < bands.Partial+shift:
		res.Outcome = model.OutcomeFailure
		res.FailureDetail = rng.Choice(r.src, failureDetails)
		return res
	case final < bands.Success+shift:
		res.Outcome = model.OutcomePartial
	case final < bands.Landmark+shift:
		res.Outcome = model.OutcomeSuccess
	default:
		res.Outcome = model.OutcomeLandmark
	}

	chance := sidewaysChance[rec.Type] + sidewaysDepthBonus[rec.PrepDepth]
	if r.src.Float() < chance {
		res.SidewaysDiscovery = rng.Choice(r.src, sidewaysDiscoveries)
		res.SidewaysEffects = r.rollEffects(rec, res.SidewaysDiscovery)
	}
	return res
}

// rollEffects draws one or two effects from the bounded catalogue.
func (r *Resolver) rollEffects(rec *model.ExpeditionRecord, discovery string) []model.SidewaysEffect {
	n := 1
	if r.src.Float() < 0.3 {
		n = 2
	}
	effects := make([]model.SidewaysEffect, 0, n)
	for i := 0; i < n; i++ {
		effects = append(effects, r.rollEffect(rec, discovery))
	}
	return effects
}

func (r *Resolver) rollEffect(rec *model.ExpeditionRecord, discovery string) model.SidewaysEffect {
	switch r.src.Intn(6) {
	case 0:
		faction := "academia"
		if len(rec.Funding) > 0 {
			faction = rng.Choice(r.src, rec.Funding)
		}
		amount := r.src.Roll(1, 3)
		if r.src.Float() < 0.3 {
			amount = -amount
		}
		return model.SidewaysEffect{
			Kind:        model.SidewaysFactionShift,
			Faction:     faction,
			Amount:      amount,
			Description: fmt.Sprintf("Word of %s reached %s before the official report did.", discovery, faction),
		}
	case 1:
		return model.SidewaysEffect{
			Kind:        model.SidewaysSpawnTheory,
			Theory:      fmt.Sprintf("The %s expedition's findings imply %s demands systematic study", rec.Code, discovery),
			Description: "The findings do not fit any current theory. They will have to become one.",
		}
	case 2:
		scholar := ""
		if len(rec.Team) > 0 {
			scholar = rng.Choice(r.src, rec.Team)
		}
		return model.SidewaysEffect{
			Kind:        model.SidewaysCreateGrudge,
			Scholar:     scholar,
			Description: "Credit for the find was claimed in print before it could be shared.",
		}
	case 3:
		return model.SidewaysEffect{
			Kind:        model.SidewaysQueueOrder,
			OrderType:   model.OrderSidewaysVignette,
			DelayHours:  r.src.Roll(2, 12),
			Description: fmt.Sprintf("There is more to the story of %s. It will keep until it cannot.", discovery),
		}
	case 4:
		delta := r.src.Roll(1, 2)
		return model.SidewaysEffect{
			Kind:        model.SidewaysReputationChange,
			Amount:      delta,
			Description: "The discovery reflects well on its sponsor, whatever the referees eventually decide.",
		}
	default:
		return model.SidewaysEffect{
			Kind:        model.SidewaysUnlockOpportunity,
			Tag:         fmt.Sprintf("followup:%s", rec.Code),
			Description: fmt.Sprintf("The matter of %s opens a line of inquiry available to %s alone, for now.", discovery, rec.Player),
		}
	}
}
