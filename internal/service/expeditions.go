package service

import (
	"log/slog"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// Static expedition economics: what a launch costs and what a success
// pays the funding factions.
var (
	expeditionCost = map[model.ExpeditionType]int{
		model.ExpeditionThinkTank:    2,
		model.ExpeditionField:        4,
		model.ExpeditionGreatProject: 8,
	}
	expeditionReward = map[model.ExpeditionType]int{
		model.ExpeditionThinkTank:    1,
		model.ExpeditionField:        2,
		model.ExpeditionGreatProject: 3,
	}
)

// QueueExpedition validates and persists a pending expedition, charges
// its costs, and publishes the research manifesto. Resolution happens at
// the next digest.
func (s *Service) QueueExpedition(code, playerID, expType, objective string, team, funding []string, prep model.ExpeditionPrep, depth, confidence string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	if code == "" || objective == "" {
		return model.PressRelease{}, Errorf(KindInvalidInput, "expedition code and objective are required")
	}
	if !model.ValidExpeditionType(expType) {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown expedition type %q", expType)
	}
	if !model.ValidPrepDepth(depth) {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown prep depth %q", depth)
	}
	if !model.ValidConfidence(confidence) {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown confidence %q", confidence)
	}
	existing, err := s.store.GetExpedition(code)
	if err != nil {
		return model.PressRelease{}, err
	}
	if existing != nil {
		return model.PressRelease{}, Errorf(KindInvalidInput, "expedition code %q already used", code)
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireThreshold(p, "expedition_"+expType); err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireStakeCooldown(p, confidence); err != nil {
		return model.PressRelease{}, err
	}
	for _, id := range team {
		if _, err := s.requireScholar(id); err != nil {
			return model.PressRelease{}, err
		}
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		// The player pays what they can of the cost from their holdings
		// in the funding factions; the factions underwrite the rest and
		// the patronage itself is worth a point of standing with each.
		cost := expeditionCost[model.ExpeditionType(expType)]
		cap := s.influenceCap(p)
		if len(funding) > 0 {
			share := cost / len(funding)
			for i, faction := range funding {
				due := share
				if i == 0 {
					due += cost % len(funding)
				}
				have := p.Influence[faction]
				if have < due {
					due = have
				}
				p.SpendInfluence(faction, due)
			}
			for _, faction := range funding {
				p.AdjustInfluence(faction, 1, cap)
			}
		}

		rec := &model.ExpeditionRecord{
			Code:       code,
			Timestamp:  now,
			Player:     playerID,
			Type:       model.ExpeditionType(expType),
			Objective:  objective,
			Team:       team,
			Funding:    funding,
			Prep:       prep,
			PrepDepth:  model.PrepDepth(depth),
			Confidence: model.Confidence(confidence),
		}
		if err := s.store.SaveExpedition(rec); err != nil {
			return err
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "launch_expedition", map[string]any{
			"code": code, "player": playerID, "type": expType,
		}); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "expedition_queued", map[string]any{
			"code": code, "prep_depth": depth, "confidence": confidence,
		}); err != nil {
			return err
		}

		var err error
		rel, err = s.publish(now, press.ResearchManifesto(press.ManifestoCtx{
			Code:      code,
			Player:    p.DisplayName,
			Type:      rec.Type,
			Objective: objective,
			Team:      s.scholarNames(team),
			Funding:   funding,
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("expeditions.queued", 1, typeAttr(expType))
	return rel, nil
}

// ResolvePendingExpeditions rolls every unresolved expedition and
// applies outcomes, wagers, relationship shifts, and sideways effects.
// Called from the digest; also exposed for admin-triggered resolution.
func (s *Service) ResolvePendingExpeditions() ([]model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return nil, err
	}
	return s.resolvePendingExpeditions(s.clock())
}

func (s *Service) resolvePendingExpeditions(now time.Time) ([]model.PressRelease, error) {
	pending, err := s.store.PendingExpeditions()
	if err != nil {
		return nil, err
	}
	var out []model.PressRelease
	for _, rec := range pending {
		rec := rec
		var rel model.PressRelease
		if err := s.store.InTx(func() error {
			var err error
			rel, err = s.resolveExpedition(now, rec)
			return err
		}); err != nil {
			return out, err
		}
		out = append(out, rel)
	}
	return out, nil
}

func (s *Service) resolveExpedition(now time.Time, rec *model.ExpeditionRecord) (model.PressRelease, error) {
	p, err := s.requirePlayer(rec.Player)
	if err != nil {
		return model.PressRelease{}, err
	}
	firstTime, err := s.firstResolutionFor(rec.Player)
	if err != nil {
		return model.PressRelease{}, err
	}

	result := s.resolver.Resolve(rec)
	delta := s.confidenceDelta(rec.Confidence, result.Outcome)

	rec.Outcome = result.Outcome
	rec.ReputationDelta = delta
	rec.Result = &result
	s.adjustReputation(p, delta)

	wager, _ := s.cfg.Wager(string(rec.Confidence))
	if result.Outcome == model.OutcomeFailure && wager.TriggersRecruitmentCooldown {
		if p.Cooldowns == nil {
			p.Cooldowns = map[string]int{}
		}
		if p.Cooldowns["recruitment"] < 2 {
			p.Cooldowns["recruitment"] = 2
		}
		// A failed staked wager also bars further staking until the
		// embarrassment fades.
		if p.Cooldowns[string(model.ConfidenceStakeMyCareer)] < 2 {
			p.Cooldowns[string(model.ConfidenceStakeMyCareer)] = 2
		}
	}
	if result.Outcome == model.OutcomeSuccess || result.Outcome == model.OutcomeLandmark {
		reward := expeditionReward[rec.Type]
		cap := s.influenceCap(p)
		for _, faction := range rec.Funding {
			p.AdjustInfluence(faction, reward, cap)
		}
	}

	// Team scholars remember how it went.
	for _, id := range rec.Team {
		sc, err := s.store.GetScholar(id)
		if err != nil || sc == nil {
			continue
		}
		feeling := 1.0
		factType := "shared_triumph"
		if result.Outcome == model.OutcomeFailure {
			feeling = -2.0
			factType = "shared_failure"
		}
		sc.Memory.AdjustFeeling(rec.Player, feeling)
		sc.Memory.RecordFact(model.MemoryFact{
			Timestamp: now,
			Type:      factType,
			Subject:   rec.Code,
			Details:   map[string]string{"outcome": string(result.Outcome)},
		})
		sc.Contract.ExpeditionLinks = append(sc.Contract.ExpeditionLinks, rec.Code)
		if err := s.store.SaveScholar(sc); err != nil {
			return model.PressRelease{}, err
		}
	}

	if err := s.store.SaveExpedition(rec); err != nil {
		return model.PressRelease{}, err
	}
	if err := s.store.UpsertPlayer(p); err != nil {
		return model.PressRelease{}, err
	}
	if _, err := s.store.AppendEvent(now, "expedition_resolved", map[string]any{
		"code":             rec.Code,
		"outcome":          string(result.Outcome),
		"roll":             result.Roll,
		"final_score":      result.FinalScore,
		"reputation_delta": delta,
	}); err != nil {
		return model.PressRelease{}, err
	}

	octx := press.OutcomeCtx{
		Code:            rec.Code,
		Player:          p.DisplayName,
		ExpeditionType:  rec.Type,
		Objective:       rec.Objective,
		Outcome:         result.Outcome,
		Roll:            result.Roll,
		Modifier:        result.Modifier,
		FinalScore:      result.FinalScore,
		ReputationDelta: delta,
		FailureDetail:   result.FailureDetail,
		Sideways:        result.SidewaysDiscovery,
		Team:            s.scholarNames(rec.Team),
	}
	var primary model.PressRelease
	if result.Outcome == model.OutcomeFailure {
		primary, err = s.publish(now, press.RetractionNotice(octx))
	} else {
		primary, err = s.publish(now, press.DiscoveryReport(octx))
	}
	if err != nil {
		return model.PressRelease{}, err
	}
	s.planLayers(now, press.EventFacts{
		Kind:            primary.Type,
		Player:          p.DisplayName,
		Subject:         rec.Code,
		ReputationDelta: delta,
		Outcome:         result.Outcome,
		ExpeditionType:  rec.Type,
		Confidence:      rec.Confidence,
		FirstTime:       firstTime,
	})

	for _, effect := range result.SidewaysEffects {
		if err := s.applySideways(now, p, rec, effect); err != nil {
			return model.PressRelease{}, err
		}
	}
	if result.Outcome == model.OutcomeLandmark {
		if err := s.maybeSpawnSidecast(now, p, rec); err != nil {
			return model.PressRelease{}, err
		}
	}

	s.sink.Count("expeditions.resolved", 1, typeAttr(string(rec.Type)))
	return primary, nil
}

// firstResolutionFor reports whether the player has no resolved
// expedition yet; their first resolution earns louder coverage.
func (s *Service) firstResolutionFor(playerID string) (bool, error) {
	events, err := s.store.Events("expedition_resolved")
	if err != nil {
		return false, err
	}
	for _, ev := range events {
		code, _ := ev.Payload["code"].(string)
		if code == "" {
			continue
		}
		rec, err := s.store.GetExpedition(code)
		if err != nil {
			return false, err
		}
		if rec != nil && rec.Player == playerID {
			return false, nil
		}
	}
	return true, nil
}

// confidenceDelta maps a wager and an outcome onto a reputation delta.
func (s *Service) confidenceDelta(confidence model.Confidence, outcome model.ExpeditionOutcome) int {
	wager, ok := s.cfg.Wager(string(confidence))
	if !ok {
		return 0
	}
	switch outcome {
	case model.OutcomeFailure:
		return -wager.Penalty
	case model.OutcomePartial:
		half := wager.Reward / 2
		if half < 1 {
			half = 1
		}
		return half
	default:
		return wager.Reward
	}
}

func (s *Service) applySideways(now time.Time, p *model.Player, rec *model.ExpeditionRecord, effect model.SidewaysEffect) error {
	switch effect.Kind {
	case model.SidewaysFactionShift:
		p.AdjustInfluence(effect.Faction, effect.Amount, s.influenceCap(p))
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		if _, err := s.publish(now, press.FactionShift(press.FactionShiftCtx{
			Player:      p.DisplayName,
			Faction:     effect.Faction,
			Amount:      effect.Amount,
			Description: effect.Description,
		})); err != nil {
			return err
		}
	case model.SidewaysSpawnTheory:
		theory, err := s.spawnTheory(now, p.ID, effect.Theory)
		if err != nil {
			return err
		}
		if _, err := s.publish(now, press.DiscoveryTheory(p.DisplayName, theory.Theory, theory.Deadline)); err != nil {
			return err
		}
	case model.SidewaysCreateGrudge:
		if effect.Scholar != "" {
			sc, err := s.store.GetScholar(effect.Scholar)
			if err != nil {
				return err
			}
			if sc != nil {
				sc.Memory.AdjustFeeling(p.ID, -3)
				sc.Memory.RecordFact(model.MemoryFact{
					Timestamp: now, Type: "grudge", Subject: p.ID,
					Details: map[string]string{"expedition": rec.Code},
				})
				if err := s.store.SaveScholar(sc); err != nil {
					return err
				}
				if _, err := s.publish(now, press.ScholarGrudge(sc.Name, p.DisplayName, effect.Description)); err != nil {
					return err
				}
			}
		}
	case model.SidewaysQueueOrder:
		delay := time.Duration(effect.DelayHours) * time.Hour
		if err := s.schedule(now, effect.OrderType, p.ID, rec.Code, map[string]any{
			"description": effect.Description,
			"objective":   rec.Objective,
		}, delay); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "sideways_order_scheduled", map[string]any{
			"order_type": effect.OrderType, "code": rec.Code,
		}); err != nil {
			return err
		}
	case model.SidewaysReputationChange:
		s.adjustReputation(p, effect.Amount)
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		if _, err := s.publish(now, press.ReputationShift(p.DisplayName, effect.Amount, effect.Description)); err != nil {
			return err
		}
	case model.SidewaysUnlockOpportunity:
		if _, err := s.publish(now, press.OpportunityUnlocked(p.DisplayName, effect.Tag, effect.Description)); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "sideways_press_scheduled", map[string]any{
			"tag": effect.Tag, "code": rec.Code,
		}); err != nil {
			return err
		}
	}
	return nil
}

// maybeSpawnSidecast introduces a new scholar off the back of a landmark
// result when the roster has room, and opens their three-phase arc.
func (s *Service) maybeSpawnSidecast(now time.Time, p *model.Player, rec *model.ExpeditionRecord) error {
	count, err := s.store.CountScholars()
	if err != nil {
		return err
	}
	if count >= s.cfg.Roster.Max || len(s.cat.SidecastArcs) == 0 {
		return nil
	}
	sc := s.roster.Generate()
	sc.Contract.SidecastHistory = append(sc.Contract.SidecastHistory, p.ID)
	sc.Memory.AdjustFeeling(p.ID, 2)
	if err := s.store.SaveScholar(&sc); err != nil {
		return err
	}
	arcIdx := s.src.Intn(len(s.cat.SidecastArcs))
	arc := s.cat.SidecastArcs[arcIdx]
	return s.schedule(now, model.OrderSidecastDebut, p.ID, sc.ID, map[string]any{
		"arc":        arc.Name,
		"expedition": rec.Code,
		"sponsor":    p.ID,
	}, 6*time.Hour)
}

func typeAttr(t string) slog.Attr {
	return slog.String("type", t)
}
