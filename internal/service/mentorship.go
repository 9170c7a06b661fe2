package service

import (
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
	"time"
)

// QueueMentorship files a mentorship petition. Activation happens at the
// next digest via the orders queue.
func (s *Service) QueueMentorship(playerID, scholarID, track string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if _, ok := model.CareerTiers[model.CareerTrack(track)]; !ok {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown career track %q", track)
	}
	existing, err := s.store.ActiveMentorshipForScholar(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if existing != nil {
		return model.PressRelease{}, Errorf(KindInvalidInput, "scholar %s already has a mentorship (%s)", scholarID, existing.Status)
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		m, err := s.store.CreateMentorship(model.Mentorship{
			Player:    playerID,
			Scholar:   scholarID,
			StartedAt: now,
			Status:    model.MentorshipPending,
			Track:     model.CareerTrack(track),
		})
		if err != nil {
			return err
		}
		if _, err := s.store.EnqueueOrder(now, model.OrderMentorshipActivation, playerID, scholarID, map[string]any{
			"mentorship_id": m.ID,
		}, nil); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "mentorship_queued", map[string]any{
			"mentorship_id": m.ID,
			"player":        playerID,
			"scholar":       scholarID,
			"track":         track,
		}); err != nil {
			return err
		}
		rel, err = s.publish(now, press.MentorshipUpdate(press.MentorshipCtx{
			Player:  p.DisplayName,
			Scholar: sc.Name,
			Track:   model.CareerTrack(track),
			Phase:   "queued",
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("mentorships.queued", 1)
	return rel, nil
}

// AssignLab redirects a mentored scholar's career track. Only the
// active mentor may do this; the scholar restarts at the new track's
// first tier.
func (s *Service) AssignLab(playerID, scholarID, track string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	sc, err := s.requireScholar(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	tiers, ok := model.CareerTiers[model.CareerTrack(track)]
	if !ok {
		return model.PressRelease{}, Errorf(KindInvalidInput, "unknown career track %q", track)
	}
	m, err := s.store.ActiveMentorshipForScholar(scholarID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if m == nil || m.Status != model.MentorshipActive {
		return model.PressRelease{}, Errorf(KindInvalidInput, "scholar %s has no active mentorship", scholarID)
	}
	if m.Player != playerID {
		return model.PressRelease{}, Errorf(KindInvalidInput, "only the active mentor may assign a lab")
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if err := s.store.UpdateMentorshipTrack(m.ID, model.CareerTrack(track)); err != nil {
			return err
		}
		sc.Career.Track = model.CareerTrack(track)
		sc.Career.Tier = tiers[0]
		sc.Career.Ticks = 0
		if err := s.store.SaveScholar(sc); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "career_progression", map[string]any{
			"scholar": scholarID,
			"track":   track,
			"tier":    tiers[0],
			"reason":  "lab_assigned",
		}); err != nil {
			return err
		}
		var err error
		rel, err = s.publish(now, press.MentorshipUpdate(press.MentorshipCtx{
			Player:  p.DisplayName,
			Scholar: sc.Name,
			Track:   model.CareerTrack(track),
			Phase:   "reassigned",
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	return rel, nil
}

// handleMentorshipActivation flips a pending mentorship to active and
// points the scholar down the chosen track.
func (s *Service) handleMentorshipActivation(now time.Time, order *model.Order) error {
	idFloat, _ := order.Payload["mentorship_id"].(float64)
	m, err := s.store.GetMentorship(int64(idFloat))
	if err != nil {
		return err
	}
	if m == nil || m.Status != model.MentorshipPending {
		return nil
	}
	sc, err := s.store.GetScholar(m.Scholar)
	if err != nil {
		return err
	}
	if sc == nil {
		return nil
	}
	if err := s.store.UpdateMentorshipStatus(m.ID, model.MentorshipActive); err != nil {
		return err
	}
	sc.Career.Track = m.Track
	if sc.Career.Tier == "" {
		sc.Career.Tier = model.CareerTiers[m.Track][0]
	}
	sc.Contract.MentorshipHistory = append(sc.Contract.MentorshipHistory, m.Player)
	sc.Memory.AdjustFeeling(m.Player, 1)
	if err := s.store.SaveScholar(sc); err != nil {
		return err
	}
	if _, err := s.store.AppendEvent(now, "mentorship_activated", map[string]any{
		"mentorship_id": m.ID,
		"player":        m.Player,
		"scholar":       m.Scholar,
	}); err != nil {
		return err
	}
	if _, err := s.publish(now, press.MentorshipUpdate(press.MentorshipCtx{
		Player:  s.displayName(m.Player),
		Scholar: sc.Name,
		Track:   m.Track,
		Phase:   "activated",
	})); err != nil {
		return err
	}
	s.planLayers(now, press.EventFacts{
		Kind:    press.TypeMentorshipUpdate,
		Player:  s.displayName(m.Player),
		Subject: sc.Name,
	})
	return nil
}

// progressCareers advances every actively mentored scholar one tick and
// promotes those who have served their time at a tier.
func (s *Service) progressCareers(now time.Time) error {
	active, err := s.store.MentorshipsByStatus(model.MentorshipActive)
	if err != nil {
		return err
	}
	for _, m := range active {
		sc, err := s.store.GetScholar(m.Scholar)
		if err != nil {
			return err
		}
		if sc == nil {
			continue
		}
		sc.Career.Ticks++
		if sc.Career.Ticks >= careerTicksRequired {
			if sc.Career.AtFinalTier() {
				if err := s.store.UpdateMentorshipStatus(m.ID, model.MentorshipCompleted); err != nil {
					return err
				}
				if _, err := s.publish(now, press.MentorshipUpdate(press.MentorshipCtx{
					Player:  s.displayName(m.Player),
					Scholar: sc.Name,
					Track:   sc.Career.Track,
					Phase:   "completed",
					Tier:    sc.Career.Tier,
				})); err != nil {
					return err
				}
			} else {
				sc.Career.Tier = sc.Career.NextTier()
				sc.Career.Ticks = 0
				if _, err := s.store.AppendEvent(now, "career_progression", map[string]any{
					"scholar": sc.ID,
					"tier":    sc.Career.Tier,
					"track":   string(sc.Career.Track),
				}); err != nil {
					return err
				}
			}
		}
		if err := s.store.SaveScholar(sc); err != nil {
			return err
		}
	}
	return nil
}
