package service

import (
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// SubmitTheory records a player's claim at a chosen confidence and
// publishes the numbered Academic Bulletin.
func (s *Service) SubmitTheory(playerID, theory, confidence string, supporters []string, deadline string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	if theory == "" {
		return model.PressRelease{}, Errorf(KindInvalidInput, "empty theory")
	}
	if !model.ValidConfidence(confidence) {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown confidence %q", confidence)
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireThreshold(p, "theory"); err != nil {
		return model.PressRelease{}, err
	}
	if err := s.requireStakeCooldown(p, confidence); err != nil {
		return model.PressRelease{}, err
	}
	for _, id := range supporters {
		if _, err := s.requireScholar(id); err != nil {
			return model.PressRelease{}, err
		}
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		rec, err := s.store.RecordTheory(model.TheoryRecord{
			Timestamp:  now,
			Player:     playerID,
			Theory:     theory,
			Confidence: model.Confidence(confidence),
			Supporters: supporters,
			Deadline:   deadline,
		})
		if err != nil {
			return err
		}

		// Bulletin numbers track the event log: this submission's event
		// is the (count+1)-th entry.
		count, err := s.store.CountEvents()
		if err != nil {
			return err
		}
		number := count + 1
		if _, err := s.store.AppendEvent(now, "submit_theory", map[string]any{
			"player":     playerID,
			"theory_id":  rec.ID,
			"confidence": confidence,
			"bulletin":   number,
		}); err != nil {
			return err
		}

		names := s.scholarNames(supporters)
		rel, err = s.publish(now, press.AcademicBulletin(press.BulletinCtx{
			Number:     number,
			Player:     p.DisplayName,
			Theory:     theory,
			Confidence: model.Confidence(confidence),
			Supporters: names,
			Deadline:   deadline,
		}))
		if err != nil {
			return err
		}
		s.planLayers(now, press.EventFacts{
			Kind:       press.TypeAcademicBulletin,
			Player:     p.DisplayName,
			Subject:    theory,
			Confidence: model.Confidence(confidence),
		})
		return nil
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("theories.submitted", 1)
	return rel, nil
}

// spawnTheory records a theory forced by field evidence. Deadline is
// two days out, formatted as a plain date.
func (s *Service) spawnTheory(now time.Time, playerID, theory string) (model.TheoryRecord, error) {
	deadline := now.Add(48 * time.Hour).Format("2006-01-02")
	return s.store.RecordTheory(model.TheoryRecord{
		Timestamp:  now,
		Player:     playerID,
		Theory:     theory,
		Confidence: model.ConfidenceSuspect,
		Deadline:   deadline,
	})
}

// scholarNames maps scholar ids to display names, skipping unknowns.
func (s *Service) scholarNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		sc, err := s.store.GetScholar(id)
		if err != nil || sc == nil {
			continue
		}
		names = append(names, sc.Name)
	}
	return names
}
