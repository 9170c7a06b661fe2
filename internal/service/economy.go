package service

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// seasonalMinInterval is how long a commitment rests between charges.
const seasonalMinInterval = 6 * time.Hour

// reprisalTerms are one debt source's escalation knobs.
type reprisalTerms struct {
	threshold    int
	penalty      int
	cooldownDays int
}

func (s *Service) reprisalTermsFor(source string) reprisalTerms {
	switch source {
	case model.DebtContract:
		return reprisalTerms{s.cfg.Contract.ReprisalThreshold, s.cfg.Contract.ReprisalPenalty, s.cfg.Contract.ReprisalCooldownDays}
	case model.DebtSeasonal:
		return reprisalTerms{s.cfg.Seasonal.ReprisalThreshold, s.cfg.Seasonal.ReprisalPenalty, s.cfg.Seasonal.ReprisalCooldownDays}
	default:
		return reprisalTerms{s.cfg.Symposium.DebtThreshold, s.cfg.Symposium.DebtPenalty, s.cfg.Symposium.DebtCooldownDays}
	}
}

// processDebts settles what it can from current holdings and takes
// reprisals on debts that have festered past their threshold. Returns
// the number of reprisals taken.
func (s *Service) processDebts(now time.Time) (int, error) {
	debts, err := s.store.AllDebts()
	if err != nil {
		return 0, err
	}
	reprisals := 0
	for _, debt := range debts {
		p, err := s.store.GetPlayer(debt.Player)
		if err != nil {
			return reprisals, err
		}
		if p == nil {
			continue
		}

		// Settle first-in-first-out from whatever the player holds.
		available := p.Influence[debt.Faction]
		if available > 0 {
			paid, err := s.store.PayDebt(debt.Player, debt.Faction, debt.Source, available)
			if err != nil {
				return reprisals, err
			}
			if paid > 0 {
				p.SpendInfluence(debt.Faction, paid)
				if err := s.store.UpsertPlayer(p); err != nil {
					return reprisals, err
				}
				debt.Amount -= paid
			}
		}
		if debt.Amount <= 0 {
			continue
		}

		terms := s.reprisalTermsFor(debt.Source)
		if debt.Amount < terms.threshold {
			continue
		}
		cooldown := time.Duration(terms.cooldownDays) * 24 * time.Hour
		if debt.LastReprisal != nil && now.Sub(*debt.LastReprisal) < cooldown {
			continue
		}

		// Reprisal: influence if the player has any anywhere in the
		// faction, reputation otherwise.
		if p.Influence[debt.Faction] >= terms.penalty {
			p.SpendInfluence(debt.Faction, terms.penalty)
		} else {
			s.adjustReputation(p, -1)
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return reprisals, err
		}
		if err := s.store.MarkReprisal(debt.ID, now); err != nil {
			return reprisals, err
		}
		if err := s.schedule(now, model.OrderSymposiumReprimand, debt.Player, debt.Faction, map[string]any{
			"source": debt.Source,
			"amount": debt.Amount,
		}, 0); err != nil {
			return reprisals, err
		}
		if _, err := s.store.AppendEvent(now, "symposium_reprimand", map[string]any{
			"player":  debt.Player,
			"faction": debt.Faction,
			"source":  debt.Source,
			"amount":  debt.Amount,
			"level":   debt.ReprisalLevel + 1,
		}); err != nil {
			return reprisals, err
		}
		s.log.Warn("debt reprisal taken",
			"player", debt.Player, "faction", debt.Faction, "source", debt.Source, "amount", debt.Amount)
		s.sink.Count("debts.reprisals", 1)
		reprisals++
	}
	return reprisals, nil
}

// applyContractUpkeep charges each player per contracted scholar per
// faction, paying down old contract debt before the fresh charge.
func (s *Service) applyContractUpkeep(now time.Time) error {
	players, err := s.store.AllPlayers()
	if err != nil {
		return err
	}
	for _, p := range players {
		staff, err := s.store.ScholarsByEmployer(p.ID)
		if err != nil {
			return err
		}
		perFaction := map[string]int{}
		for _, sc := range staff {
			faction := sc.Contract.Faction
			if faction == "" {
				faction = "academia"
			}
			perFaction[faction]++
		}
		for faction, count := range perFaction {
			cost := s.cfg.Contract.UpkeepPerScholar * count

			// Old debt first.
			if have := p.Influence[faction]; have > 0 {
				paid, err := s.store.PayDebt(p.ID, faction, model.DebtContract, have)
				if err != nil {
					return err
				}
				p.SpendInfluence(faction, paid)
			}

			paid := cost
			if paid > p.Influence[faction] {
				paid = p.Influence[faction]
			}
			p.SpendInfluence(faction, paid)
			if shortfall := cost - paid; shortfall > 0 {
				if err := s.store.AddDebt(now, p.ID, faction, model.DebtContract, shortfall); err != nil {
					return err
				}
			}
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
	}
	return nil
}

// factionRelationship folds the feelings of a player's scholars in one
// faction into a signed modifier.
func (s *Service) factionRelationship(playerID, faction string, weight float64) (float64, error) {
	staff, err := s.store.ScholarsByEmployer(playerID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, sc := range staff {
		if sc.Contract.Faction == faction {
			total += sc.Memory.Feeling(playerID)
		}
	}
	return total * weight, nil
}

// applySeasonalCommitments charges every due commitment, discounted by
// the player's standing with the faction.
func (s *Service) applySeasonalCommitments(now time.Time) error {
	commitments, err := s.store.ActiveCommitments()
	if err != nil {
		return err
	}
	for _, c := range commitments {
		if c.LastProcessed != nil && now.Sub(*c.LastProcessed) < seasonalMinInterval {
			continue
		}
		relationship, err := s.factionRelationship(c.Player, c.Faction, s.cfg.Seasonal.RelationshipWeight)
		if err != nil {
			return err
		}
		if relationship < s.cfg.Seasonal.MinRelationship {
			relationship = s.cfg.Seasonal.MinRelationship
		}
		cost := int(math.Round(float64(c.BaseCost) * math.Max(0.5, 1-relationship)))

		p, err := s.store.GetPlayer(c.Player)
		if err != nil {
			return err
		}
		if p == nil {
			continue
		}
		paid := cost
		if paid > p.Influence[c.Faction] {
			paid = p.Influence[c.Faction]
		}
		p.SpendInfluence(c.Faction, paid)
		shortfall := cost - paid
		if shortfall > 0 {
			if err := s.store.AddDebt(now, c.Player, c.Faction, model.DebtSeasonal, shortfall); err != nil {
				return err
			}
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}

		c.LastProcessed = &now
		completed := !now.Before(c.EndAt)
		if completed {
			c.Status = model.CommitmentCompleted
		}
		if err := s.store.SaveCommitment(c); err != nil {
			return err
		}

		sctx := press.SeasonalCtx{
			Player:  s.displayName(c.Player),
			Faction: c.Faction,
			Tier:    c.Tier,
			Cost:    cost,
			Debt:    shortfall,
		}
		if completed {
			if _, err := s.publish(now, press.SeasonalCommitmentComplete(sctx)); err != nil {
				return err
			}
		} else if _, err := s.publish(now, press.SeasonalCommitmentUpdate(sctx)); err != nil {
			return err
		}
	}
	return nil
}

// advanceFactionProjects accrues every player's contribution and closes
// projects that reach their target, rewarding contributors.
func (s *Service) advanceFactionProjects(now time.Time) error {
	projects, err := s.store.ActiveProjects()
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return nil
	}
	players, err := s.store.AllPlayers()
	if err != nil {
		return err
	}
	for _, proj := range projects {
		var contributors []string
		for _, p := range players {
			relationship, err := s.factionRelationship(p.ID, proj.Faction, s.cfg.Projects.RelationshipWeight)
			if err != nil {
				return err
			}
			contribution := float64(max(0, p.Influence[proj.Faction]))*s.cfg.Projects.BaseProgressWeight + relationship
			if contribution > 0 {
				proj.Progress += contribution
				contributors = append(contributors, p.ID)
			}
		}
		proj.UpdatedAt = now

		pctx := press.ProjectCtx{
			Name:     proj.Name,
			Faction:  proj.Faction,
			Progress: proj.Progress,
			Target:   proj.Target,
		}
		if proj.Progress >= proj.Target {
			proj.Status = model.ProjectCompleted
			names := make([]string, 0, len(contributors))
			for _, id := range contributors {
				p, err := s.store.GetPlayer(id)
				if err != nil {
					return err
				}
				if p == nil {
					continue
				}
				p.AdjustInfluence(proj.Faction, s.cfg.Projects.CompletionReward, s.influenceCap(p))
				if err := s.store.UpsertPlayer(p); err != nil {
					return err
				}
				names = append(names, p.DisplayName)
			}
			if _, err := s.publish(now, press.FactionProjectComplete(pctx, names)); err != nil {
				return err
			}
		} else if len(contributors) > 0 {
			if _, err := s.publish(now, press.FactionProjectUpdate(pctx)); err != nil {
				return err
			}
		}
		if err := s.store.SaveProject(proj); err != nil {
			return err
		}
	}
	return nil
}

// InvestInFaction sinks influence into a faction program. Scholars of
// the faction warm to the investor.
func (s *Service) InvestInFaction(playerID, faction string, amount int, program string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if amount < s.cfg.Investment.MinAmount {
		return model.PressRelease{}, Errorf(KindInvalidInput, "investment below minimum %d", s.cfg.Investment.MinAmount)
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if !p.SpendInfluence(faction, amount) {
			return Errorf(KindInsufficientInfluence, "%s: have %d, need %d", faction, p.Influence[faction], amount)
		}
		if err := s.store.RecordInvestment(&model.FactionInvestment{
			ID:        uuid.NewString(),
			Player:    playerID,
			Faction:   faction,
			Amount:    amount,
			Program:   program,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}

		// Goodwill accrues per feeling_step units invested.
		bonus := float64(amount/s.cfg.Investment.FeelingStep) * s.cfg.Investment.FeelingBonus
		if bonus > 0 {
			all, err := s.store.AllScholars()
			if err != nil {
				return err
			}
			for _, sc := range all {
				if sc.Contract.Faction == faction {
					sc.Memory.AdjustFeeling(playerID, bonus)
					if err := s.store.SaveScholar(sc); err != nil {
						return err
					}
				}
			}
		}

		if _, err := s.store.AppendEvent(now, "faction_investment", map[string]any{
			"player": playerID, "faction": faction, "amount": amount, "program": program,
		}); err != nil {
			return err
		}
		var err error
		rel, err = s.publish(now, press.FactionInvestmentNotice(press.InvestmentCtx{
			Player:  p.DisplayName,
			Faction: faction,
			Amount:  amount,
			Program: program,
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("investments.recorded", 1)
	return rel, nil
}

// EndowArchive donates influence to the Grand Archive. The donation
// also services the player's symposium and seasonal debts and earns
// reputation per threshold unit given.
func (s *Service) EndowArchive(playerID, faction string, amount int, program string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if amount < s.cfg.Endowment.MinAmount {
		return model.PressRelease{}, Errorf(KindInvalidInput, "endowment below minimum %d", s.cfg.Endowment.MinAmount)
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if !p.SpendInfluence(faction, amount) {
			return Errorf(KindInsufficientInfluence, "%s: have %d, need %d", faction, p.Influence[faction], amount)
		}
		if err := s.store.RecordEndowment(&model.ArchiveEndowment{
			ID:        uuid.NewString(),
			Player:    playerID,
			Faction:   faction,
			Amount:    amount,
			Program:   program,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		// Goodwill services debts: symposium first, then seasonal.
		remaining := amount
		for _, source := range []string{model.DebtSymposium, model.DebtSeasonal} {
			if remaining <= 0 {
				break
			}
			debts, err := s.store.DebtsByPlayer(playerID, source)
			if err != nil {
				return err
			}
			for _, debt := range debts {
				if remaining <= 0 {
					break
				}
				paid, err := s.store.PayDebt(debt.Player, debt.Faction, debt.Source, remaining)
				if err != nil {
					return err
				}
				remaining -= paid
			}
		}

		bonus := (amount / s.cfg.Endowment.ReputationThreshold) * s.cfg.Endowment.ReputationBonus
		if bonus > 0 {
			s.adjustReputation(p, bonus)
		}
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "archive_endowment", map[string]any{
			"player": playerID, "faction": faction, "amount": amount, "program": program,
		}); err != nil {
			return err
		}
		var err error
		rel, err = s.publish(now, press.ArchiveEndowmentNotice(press.InvestmentCtx{
			Player:  p.DisplayName,
			Faction: faction,
			Amount:  amount,
			Program: program,
		}, bonus))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("endowments.recorded", 1)
	return rel, nil
}
