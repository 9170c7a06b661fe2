package service

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// CreateDefectionOffer opens a negotiation for an employed scholar. The
// offered influence is deducted from the rival immediately and held in
// escrow until the negotiation resolves.
func (s *Service) CreateDefectionOffer(rivalID, scholarID, targetFaction string, influenceOffered map[string]int, terms model.OfferTerms) (*model.OfferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return nil, err
	}
	rival, err := s.requirePlayer(rivalID)
	if err != nil {
		return nil, err
	}
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return nil, err
	}
	if !sc.Employed() {
		return nil, Errorf(KindInvalidInput, "scholar %s has no patron to defect from", scholarID)
	}
	if sc.Contract.Employer == rivalID {
		return nil, Errorf(KindInvalidInput, "scholar %s already works for %s", scholarID, rivalID)
	}
	if len(influenceOffered) == 0 {
		return nil, Errorf(KindInvalidInput, "offer carries no influence")
	}

	now := s.clock()
	offer := &model.OfferRecord{
		ID:               uuid.NewString(),
		Scholar:          scholarID,
		TargetFaction:    targetFaction,
		Rival:            rivalID,
		Patron:           sc.Contract.Employer,
		OfferType:        model.OfferInitial,
		InfluenceOffered: influenceOffered,
		Terms:            terms,
		Status:           model.OfferPending,
		CreatedAt:        now,
	}
	// The escrow deduction and the offer row land together or not at
	// all: an offer must never exist without its stake.
	if err := s.store.InTx(func() error {
		if err := s.escrow(rival, influenceOffered); err != nil {
			return err
		}
		if err := s.store.SaveOffer(offer); err != nil {
			return err
		}
		if err := s.store.UpsertPlayer(rival); err != nil {
			return err
		}
		if err := s.schedule(now, model.OrderEvaluateOffer, rivalID, offer.ID, nil, 24*time.Hour); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "defection_offer_created", map[string]any{
			"offer_id": offer.ID,
			"scholar":  scholarID,
			"rival":    rivalID,
			"patron":   offer.Patron,
			"total":    offer.TotalOffered(),
		}); err != nil {
			return err
		}
		_, err := s.publish(now, press.AcademicGossip(press.GossipCtx{
			Scholar: sc.Name,
			Trigger: "an approach from a rival patron",
			Quote:   "I am, of course, entirely content where I am.",
		}))
		return err
	}); err != nil {
		return nil, err
	}
	s.sink.Count("offers.created", 1)
	return offer, nil
}

// CounterOffer lets the current patron outbid a pending offer. The
// parent is superseded and its evaluation order cancelled.
func (s *Service) CounterOffer(patronID, parentOfferID string, influenceOffered map[string]int, terms model.OfferTerms) (*model.OfferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return nil, err
	}
	parent, err := s.store.GetOffer(parentOfferID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, Errorf(KindNotFound, "offer %q", parentOfferID)
	}
	if parent.Status != model.OfferPending {
		return nil, Errorf(KindInvalidInput, "offer %s is %s, not open to counters", parentOfferID, parent.Status)
	}
	if parent.Patron != patronID {
		return nil, Errorf(KindInvalidInput, "only the current patron may counter")
	}
	patron, err := s.requirePlayer(patronID)
	if err != nil {
		return nil, err
	}
	if len(influenceOffered) == 0 {
		return nil, Errorf(KindInvalidInput, "counter carries no influence")
	}

	now := s.clock()
	counter := &model.OfferRecord{
		ID:               uuid.NewString(),
		Scholar:          parent.Scholar,
		TargetFaction:    parent.TargetFaction,
		Rival:            parent.Rival,
		Patron:           parent.Patron,
		OfferType:        model.OfferCounter,
		InfluenceOffered: influenceOffered,
		Terms:            terms,
		Status:           model.OfferPending,
		ParentOfferID:    parent.ID,
		CreatedAt:        now,
	}
	if err := s.store.InTx(func() error {
		if err := s.escrow(patron, influenceOffered); err != nil {
			return err
		}
		parent.Status = model.OfferCountered
		if err := s.store.SaveOffer(parent); err != nil {
			return err
		}
		if _, err := s.store.CancelPendingByType(model.OrderEvaluateOffer, parent.ID, "superseded by counter", now); err != nil {
			return err
		}
		if err := s.store.SaveOffer(counter); err != nil {
			return err
		}
		if err := s.store.UpsertPlayer(patron); err != nil {
			return err
		}
		if err := s.schedule(now, model.OrderEvaluateCounter, patronID, counter.ID, nil, 12*time.Hour); err != nil {
			return err
		}
		_, err := s.store.AppendEvent(now, "defection_counter_created", map[string]any{
			"offer_id": counter.ID,
			"parent":   parent.ID,
			"total":    counter.TotalOffered(),
		})
		return err
	}); err != nil {
		return nil, err
	}
	s.sink.Count("offers.countered", 1)
	return counter, nil
}

// escrow deducts the offered influence from the offering player, or
// fails without mutating.
func (s *Service) escrow(p *model.Player, offered map[string]int) error {
	for faction, amount := range offered {
		if amount <= 0 {
			return Errorf(KindInvalidInput, "non-positive influence for %s", faction)
		}
		if p.Influence[faction] < amount {
			return Errorf(KindInsufficientInfluence, "%s: have %d, need %d", faction, p.Influence[faction], amount)
		}
	}
	for faction, amount := range offered {
		p.SpendInfluence(faction, amount)
	}
	return nil
}

// refundEscrow returns an offer's influence to its offerer.
func (s *Service) refundEscrow(offer *model.OfferRecord) error {
	p, err := s.requirePlayer(offer.Offerer())
	if err != nil {
		return err
	}
	cap := s.influenceCap(p)
	for faction, amount := range offer.InfluenceOffered {
		p.AdjustInfluence(faction, amount, cap)
	}
	return s.store.UpsertPlayer(p)
}

// EvaluateScholarOffer computes the probability the scholar accepts.
// Pure with respect to state; used by negotiation and the odds surface.
func (s *Service) EvaluateScholarOffer(offer *model.OfferRecord) (float64, error) {
	sc, err := s.requireScholar(offer.Scholar)
	if err != nil {
		return 0, err
	}
	quality := math.Min(10, float64(offer.TotalOffered())/10)
	mistreatment := math.Max(0, -sc.Memory.Feeling(offer.Patron)) / 5
	alignment := math.Max(0, sc.Memory.Feeling(offer.Rival)) / 5
	plateau := 0.2
	if s.recentDiscovery(sc, 90*24*time.Hour) {
		plateau = 0
	}

	prob := defectionProbability(sc, quality, mistreatment, alignment, plateau)
	prob += clampF(sc.Memory.Feeling(offer.Rival)*0.02, -0.2, 0.2)
	prob -= clampF(sc.Memory.Feeling(offer.Patron)*0.02, -0.2, 0.2)
	if offer.Terms.ExclusiveResearch {
		prob += 0.10
	}
	if offer.Terms.GuaranteedFunding {
		prob += 0.15
	}
	if offer.Terms.LeadershipRole {
		prob += 0.20
	}
	if offer.OfferType == model.OfferCounter {
		prob -= 0.10
	}
	return clampF(prob, 0.05, 0.95), nil
}

// defectionProbability is the logistic core shared by the contested and
// uncontested paths.
func defectionProbability(sc *model.Scholar, quality, mistreatment, alignment, plateau float64) float64 {
	x := quality + mistreatment + alignment + plateau -
		0.6*(float64(sc.Stats.Loyalty)/10) -
		0.4*(float64(sc.Stats.Integrity)/10)
	return 1 / (1 + math.Exp(-6*(x-0.5)))
}

// recentDiscovery reports whether the scholar shared a triumph within
// the window.
func (s *Service) recentDiscovery(sc *model.Scholar, window time.Duration) bool {
	cutoff := s.clock().Add(-window)
	for _, fact := range sc.Memory.Facts {
		if fact.Type == "shared_triumph" && fact.Timestamp.After(cutoff) {
			return true
		}
	}
	return false
}

// ResolveOfferNegotiation settles a negotiation ladder: the best pending
// offer is rolled against its acceptance probability; escrow moves
// accordingly.
func (s *Service) ResolveOfferNegotiation(offerID string) ([]model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PressRelease
	err := s.store.InTx(func() error {
		var err error
		out, err = s.resolveOfferNegotiation(s.clock(), offerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) resolveOfferNegotiation(now time.Time, offerID string) ([]model.PressRelease, error) {
	chain, err := s.store.OfferChain(offerID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, Errorf(KindNotFound, "offer %q", offerID)
	}
	var pending, superseded []*model.OfferRecord
	for _, o := range chain {
		switch o.Status {
		case model.OfferPending:
			pending = append(pending, o)
		case model.OfferCountered:
			superseded = append(superseded, o)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	best := pending[0]
	bestProb, err := s.EvaluateScholarOffer(best)
	if err != nil {
		return nil, err
	}
	for _, o := range pending[1:] {
		prob, err := s.EvaluateScholarOffer(o)
		if err != nil {
			return nil, err
		}
		if prob > bestProb {
			best, bestProb = o, prob
		}
	}

	sc, err := s.requireScholar(best.Scholar)
	if err != nil {
		return nil, err
	}
	roll := s.src.Float()
	accepted := roll < bestProb

	var out []model.PressRelease
	for _, o := range pending {
		if accepted && o.ID == best.ID {
			// Winner's escrow is consumed.
			if err := s.store.ResolveOffer(o.ID, model.OfferAccepted, now); err != nil {
				return nil, err
			}
			continue
		}
		if err := s.refundEscrow(o); err != nil {
			return nil, err
		}
		if err := s.store.ResolveOffer(o.ID, model.OfferRejected, now); err != nil {
			return nil, err
		}
	}
	// Superseded rungs still hold their escrow; settle them as losers.
	for _, o := range superseded {
		if err := s.refundEscrow(o); err != nil {
			return nil, err
		}
		if err := s.store.ResolveOffer(o.ID, model.OfferRejected, now); err != nil {
			return nil, err
		}
	}

	if accepted && best.OfferType == model.OfferInitial {
		// The rival wins the scholar.
		former := sc.Contract.Employer
		sc.Contract.Employer = best.Rival
		sc.Contract.Faction = best.TargetFaction
		sc.Memory.AddScar("defection")
		sc.Memory.AdjustFeeling(former, -2)
		sc.Memory.AdjustFeeling(best.Rival, 2)
		sc.Memory.RecordFact(model.MemoryFact{
			Timestamp: now, Type: "defected", Subject: best.Rival,
			Details: map[string]string{"former": former},
		})
		if err := s.store.SaveScholar(sc); err != nil {
			return nil, err
		}
		if err := s.schedule(now, model.OrderDefectionReturn, former, sc.ID, map[string]any{
			"former_patron": former,
			"new_patron":    best.Rival,
		}, 72*time.Hour); err != nil {
			return nil, err
		}
		rel, err := s.publish(now, press.DefectionNotice(press.DefectionCtx{
			Scholar:     sc.Name,
			FormerHome:  s.displayName(former),
			NewHome:     s.displayName(best.Rival),
			Probability: bestProb,
		}))
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
		s.planLayers(now, press.EventFacts{
			Kind:    press.TypeDefectionNotice,
			Player:  s.displayName(best.Rival),
			Subject: sc.Name,
		})
	} else if accepted {
		// The counter holds: the scholar stays with the patron.
		sc.Memory.AdjustFeeling(best.Patron, 1)
		sc.Memory.RecordFact(model.MemoryFact{
			Timestamp: now, Type: "retained", Subject: best.Patron,
		})
		if err := s.store.SaveScholar(sc); err != nil {
			return nil, err
		}
		rel, err := s.publish(now, press.AcademicGossip(press.GossipCtx{
			Scholar: sc.Name,
			Trigger: "the recent unpleasantness over their contract",
			Quote:   "Loyalty, properly compensated, is its own reward.",
		}))
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}

	if _, err := s.store.AppendEvent(now, "negotiation_resolved", map[string]any{
		"offer_id":    best.ID,
		"scholar":     best.Scholar,
		"accepted":    accepted,
		"probability": bestProb,
		"offer_type":  string(best.OfferType),
	}); err != nil {
		return nil, err
	}
	s.sink.Count("negotiations.resolved", 1)
	return out, nil
}

// EvaluateDefectionOffer is the direct, uncontested variant used by the
// admin and force paths: the caller supplies the probability inputs and
// the scholar moves to a faction rather than a player.
func (s *Service) EvaluateDefectionOffer(scholarID string, quality, mistreatment, alignment, plateau float64, newFaction string) (bool, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return false, 0, err
	}
	now := s.clock()
	prob := clampF(defectionProbability(sc, quality, mistreatment, alignment, plateau), 0.05, 0.95)
	accepted := s.src.Float() < prob

	former := sc.Contract.Employer
	if err := s.store.InTx(func() error {
		if accepted {
			sc.Contract.Employer = newFaction
			sc.Memory.AddScar("defection")
			if err := s.store.SaveScholar(sc); err != nil {
				return err
			}
			if err := s.schedule(now, model.OrderDefectionReturn, former, sc.ID, map[string]any{
				"former_patron": former,
				"new_patron":    newFaction,
			}, 72*time.Hour); err != nil {
				return err
			}
			if _, err := s.publish(now, press.DefectionNotice(press.DefectionCtx{
				Scholar:     sc.Name,
				FormerHome:  s.displayName(former),
				NewHome:     newFaction,
				Probability: prob,
			})); err != nil {
				return err
			}
		} else {
			if err := s.schedule(now, model.OrderDefectionGrudge, former, sc.ID, map[string]any{
				"suitor": newFaction,
			}, 48*time.Hour); err != nil {
				return err
			}
		}
		_, err := s.store.AppendEvent(now, "defection_evaluated", map[string]any{
			"scholar":     scholarID,
			"accepted":    accepted,
			"probability": prob,
			"new_faction": newFaction,
		})
		return err
	}); err != nil {
		return false, 0, err
	}
	return accepted, prob, nil
}

// displayName resolves a player id to their display name, falling back
// to the raw id for factions and unknowns.
func (s *Service) displayName(id string) string {
	p, err := s.store.GetPlayer(id)
	if err != nil || p == nil {
		return id
	}
	return p.DisplayName
}
