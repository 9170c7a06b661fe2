package service

import (
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// LaunchConference schedules a public defense of a theory. Resolution
// happens at the next digest through the orders queue.
func (s *Service) LaunchConference(playerID string, theoryID int64, confidence string, supporters, opposition []string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireThreshold(p, "conference"); err != nil {
		return model.PressRelease{}, err
	}
	if !model.ValidConfidence(confidence) {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown confidence %q", confidence)
	}
	theory, err := s.store.GetTheory(theoryID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if theory == nil {
		return model.PressRelease{}, Errorf(KindNotFound, "theory %d", theoryID)
	}

	now := s.clock()
	code, err := s.conferenceCode()
	if err != nil {
		return model.PressRelease{}, err
	}
	conf := &model.Conference{
		Code:       code,
		Player:     playerID,
		TheoryID:   theoryID,
		Confidence: model.Confidence(confidence),
		Supporters: supporters,
		Opposition: opposition,
		CreatedAt:  now,
	}
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if err := s.store.SaveConference(conf); err != nil {
			return err
		}
		if _, err := s.store.EnqueueOrder(now, model.OrderConferenceResolution, playerID, code, nil, nil); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "conference_launched", map[string]any{
			"code":      code,
			"player":    playerID,
			"theory_id": theoryID,
		}); err != nil {
			return err
		}
		var err error
		rel, err = s.publish(now, press.ConferenceScheduled(press.ConferenceCtx{
			Code:       code,
			Player:     p.DisplayName,
			Theory:     theory.Theory,
			Supporters: s.scholarNames(supporters),
			Opposition: s.scholarNames(opposition),
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("conferences.launched", 1)
	return rel, nil
}

// conferenceCode rolls CONF-1000..9999 codes until one is free.
func (s *Service) conferenceCode() (string, error) {
	for {
		code := fmt.Sprintf("CONF-%d", s.src.Roll(1000, 9999))
		existing, err := s.store.GetConference(code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
}

// handleConferenceResolution rolls a defense: the base d100 moves five
// points per supporter up and per opponent down.
func (s *Service) handleConferenceResolution(now time.Time, order *model.Order) error {
	conf, err := s.store.GetConference(order.SubjectID)
	if err != nil {
		return err
	}
	if conf == nil || conf.Outcome != "" {
		return nil
	}
	p, err := s.requirePlayer(conf.Player)
	if err != nil {
		return err
	}

	roll := s.src.Roll(1, 100)
	final := roll + 5*len(conf.Supporters) - 5*len(conf.Opposition)
	var outcome model.ExpeditionOutcome
	switch {
	case final >= 60:
		outcome = model.OutcomeSuccess
	case final >= 40:
		outcome = model.OutcomePartial
	default:
		outcome = model.OutcomeFailure
	}
	delta := s.confidenceDelta(conf.Confidence, outcome)

	conf.Outcome = outcome
	conf.ReputationDelta = delta
	conf.Result = map[string]any{"roll": roll, "final": final}
	s.adjustReputation(p, delta)

	if err := s.store.SaveConference(conf); err != nil {
		return err
	}
	if err := s.store.UpsertPlayer(p); err != nil {
		return err
	}
	if _, err := s.store.AppendEvent(now, "conference_resolved", map[string]any{
		"code":             conf.Code,
		"outcome":          string(outcome),
		"roll":             roll,
		"final":            final,
		"reputation_delta": delta,
	}); err != nil {
		return err
	}
	theory, err := s.store.GetTheory(conf.TheoryID)
	if err != nil {
		return err
	}
	theoryText := ""
	if theory != nil {
		theoryText = theory.Theory
	}
	if _, err := s.publish(now, press.ConferenceOutcome(press.ConferenceCtx{
		Code:            conf.Code,
		Player:          p.DisplayName,
		Theory:          theoryText,
		Outcome:         outcome,
		ReputationDelta: delta,
	})); err != nil {
		return err
	}
	s.planLayers(now, press.EventFacts{
		Kind:            press.TypeConferenceOutcome,
		Player:          p.DisplayName,
		Subject:         conf.Code,
		ReputationDelta: delta,
		Confidence:      conf.Confidence,
	})
	s.sink.Count("conferences.resolved", 1)
	return nil
}
