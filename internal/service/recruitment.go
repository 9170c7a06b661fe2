package service

import (
	"strings"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
	"github.com/tachyon-beep/jubilant-fortnight/internal/scholars"
)

// recruitmentCooldownTicks is the floor applied to the recruitment
// cooldown after every attempt, success or not.
const recruitmentCooldownTicks = 2

// AttemptRecruitment rolls a player's bid for an independent scholar's
// services. base is the raw chance before penalties and bonuses; the
// game's standard value is 0.6.
func (s *Service) AttemptRecruitment(playerID, scholarID, faction string, base float64) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireThreshold(p, "recruitment"); err != nil {
		return model.PressRelease{}, err
	}
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if faction == "" {
		return model.PressRelease{}, Errorf(KindInvalidInput, "empty faction")
	}

	chance, err := s.recruitmentChance(p, sc, faction, base)
	if err != nil {
		return model.PressRelease{}, err
	}

	now := s.clock()
	roll := s.src.Float()
	success := roll < chance

	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if success {
			sc.Contract.Employer = p.ID
			sc.Contract.Faction = faction
			sc.Memory.AdjustFeeling(p.ID, 2)
			sc.Memory.RecordFact(model.MemoryFact{
				Timestamp: now, Type: "recruited", Subject: p.ID,
				Details: map[string]string{"faction": faction},
			})
			p.AdjustInfluence(faction, 1, s.influenceCap(p))
		} else {
			sc.Memory.AdjustFeeling(p.ID, -1)
			if err := s.schedule(now, model.OrderRecruitmentGrudge, p.ID, sc.ID, map[string]any{
				"faction": faction,
			}, 24*time.Hour); err != nil {
				return err
			}
		}
		if p.Cooldowns == nil {
			p.Cooldowns = map[string]int{}
		}
		if p.Cooldowns["recruitment"] < recruitmentCooldownTicks {
			p.Cooldowns["recruitment"] = recruitmentCooldownTicks
		}

		if err := s.store.SaveScholar(sc); err != nil {
			return err
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "recruitment_attempt", map[string]any{
			"player":  playerID,
			"scholar": scholarID,
			"faction": faction,
			"chance":  chance,
			"success": success,
		}); err != nil {
			return err
		}

		pool := s.cat.Recruitment.Failure
		if success {
			pool = s.cat.Recruitment.Success
		}
		body := fillTemplate(rng.Choice(s.src, pool), map[string]string{
			"player":  p.DisplayName,
			"scholar": sc.Name,
			"faction": faction,
		})
		var err error
		rel, err = s.publish(now, press.RecruitmentReport(press.RecruitmentCtx{
			Player:  p.DisplayName,
			Scholar: sc.Name,
			Faction: faction,
			Success: success,
			Chance:  chance,
			Body:    body,
		}))
		if err != nil {
			return err
		}
		if success {
			brief := model.PressRelease{
				Type:     press.TypeRecruitmentBrief,
				Headline: "Appointments",
				Body:     sc.Name + " joins the patronage of " + p.DisplayName + ".",
				Metadata: map[string]any{"player": p.ID, "scholar": sc.ID},
			}
			if _, err := s.publish(now, brief); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("recruitment.attempts", 1)
	return rel, nil
}

// recruitmentChance computes the adjusted success probability. The raw
// chance is clamped to [0.05, 0.95] both before and after the
// relationship modifier is added.
func (s *Service) recruitmentChance(p *model.Player, sc *model.Scholar, faction string, base float64) (float64, error) {
	cooldownPenalty := 1.0
	if p.Cooldowns["recruitment"] > 0 {
		cooldownPenalty = 0.5
	}
	influenceBonus := float64(max(0, p.Influence[faction])) * 0.05
	chance := clampF(base*cooldownPenalty+influenceBonus, 0.05, 0.95)

	rel, err := s.relationshipModifier(p, sc)
	if err != nil {
		return 0, err
	}
	return clampF(chance+rel, 0.05, 0.95), nil
}

// relationshipModifier folds a scholar's feelings and shared history
// with a player into a bounded probability shift.
func (s *Service) relationshipModifier(p *model.Player, sc *model.Scholar) (float64, error) {
	baseBonus := clampF(sc.Memory.Feeling(p.ID)*0.02, -0.2, 0.2)

	mentorshipBonus := 0.0
	history, err := s.store.MentorshipHistoryForScholar(sc.ID)
	if err != nil {
		return 0, err
	}
	var hasActive, hasCompleted, hasAny bool
	for _, m := range history {
		if m.Player != p.ID {
			continue
		}
		hasAny = true
		switch m.Status {
		case model.MentorshipActive:
			hasActive = true
		case model.MentorshipCompleted:
			hasCompleted = true
		}
	}
	switch {
	case hasActive:
		mentorshipBonus = 0.05
	case hasCompleted:
		mentorshipBonus = 0.04
	case hasAny:
		mentorshipBonus = 0.02
	}

	sidecastBonus := 0.0
	for _, sponsor := range sc.Contract.SidecastHistory {
		if sponsor == p.ID {
			sidecastBonus = 0.02
			break
		}
	}

	return clampF(baseBonus+mentorshipBonus+sidecastBonus, -0.25, 0.25), nil
}

// RecruitmentOdd is one faction's entry in the odds query.
type RecruitmentOdd struct {
	Chance            float64 `json:"chance"`
	CooldownActive    bool    `json:"cooldown_active"`
	CooldownRemaining int     `json:"cooldown_remaining"`
}

// RecruitmentOdds reports, per faction, the chance an attempt would
// have right now. Read-only.
func (s *Service) RecruitmentOdds(playerID, scholarID string) (map[string]RecruitmentOdd, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return nil, err
	}
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return nil, err
	}
	remaining := p.Cooldowns["recruitment"]
	odds := make(map[string]RecruitmentOdd, len(scholars.Factions))
	for _, faction := range scholars.Factions {
		chance, err := s.recruitmentChance(p, sc, faction, 0.6)
		if err != nil {
			return nil, err
		}
		odds[faction] = RecruitmentOdd{
			Chance:            chance,
			CooldownActive:    remaining > 0,
			CooldownRemaining: remaining,
		}
	}
	return odds, nil
}

func fillTemplate(tmpl string, slots map[string]string) string {
	out := tmpl
	for slot, value := range slots {
		out = strings.ReplaceAll(out, "{"+slot+"}", value)
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
