package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// Admin operations bypass the pause guard and reputation thresholds but
// still leave a full trail: every one writes an event and an
// admin_action press so the archive shows provenance.

// adminTrail records the event and press common to every admin op.
func (s *Service) adminTrail(now time.Time, admin, action, summary string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["admin"] = admin
	payload["action"] = action
	if _, err := s.store.AppendEvent(now, "admin_action", payload); err != nil {
		return err
	}
	if _, err := s.publish(now, press.AdminAction(admin, summary)); err != nil {
		return err
	}
	s.sink.Count("admin.actions", 1)
	return nil
}

// AdminAdjustReputation applies a clamped reputation delta.
func (s *Service) AdminAdjustReputation(admin, playerID string, delta int, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return 0, err
	}
	now := s.clock()
	var value int
	if err := s.store.InTx(func() error {
		value = s.adjustReputation(p, delta)
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		summary := fmt.Sprintf("By administrative order, %s's standing is adjusted by %+d (%s).", p.DisplayName, delta, reason)
		return s.adminTrail(now, admin, "adjust_reputation", summary, map[string]any{
			"player": playerID, "delta": delta, "reason": reason,
		})
	}); err != nil {
		return 0, err
	}
	return value, nil
}

// AdminAdjustInfluence grants or removes influence, respecting the
// per-faction cap and the non-negative floor.
func (s *Service) AdminAdjustInfluence(admin, playerID, faction string, delta int, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return 0, err
	}
	now := s.clock()
	var value int
	if err := s.store.InTx(func() error {
		value = p.AdjustInfluence(faction, delta, s.influenceCap(p))
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
		summary := fmt.Sprintf("By administrative order, %s's influence with %s is adjusted by %+d (%s).", p.DisplayName, faction, delta, reason)
		return s.adminTrail(now, admin, "adjust_influence", summary, map[string]any{
			"player": playerID, "faction": faction, "delta": delta, "reason": reason,
		})
	}); err != nil {
		return 0, err
	}
	return value, nil
}

// AdminForceDefection puts a scholar through an uncontested defection
// evaluation toward a faction.
func (s *Service) AdminForceDefection(admin, scholarID, newFaction string) (bool, error) {
	accepted, prob, err := s.EvaluateDefectionOffer(scholarID, 8, 2, 2, 0.2, newFaction)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	verdict := "declined"
	if accepted {
		verdict = "accepted"
	}
	summary := fmt.Sprintf("An administrative test of loyalties: scholar %s %s overtures from %s (p=%.2f).", scholarID, verdict, newFaction, prob)
	if err := s.store.InTx(func() error {
		return s.adminTrail(now, admin, "force_defection", summary, map[string]any{
			"scholar": scholarID, "faction": newFaction, "accepted": accepted,
		})
	}); err != nil {
		return accepted, err
	}
	return accepted, nil
}

// AdminCancelExpedition voids a queued expedition before resolution.
func (s *Service) AdminCancelExpedition(admin, code, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.store.GetExpedition(code)
	if err != nil {
		return err
	}
	if rec == nil {
		return Errorf(KindNotFound, "expedition %q", code)
	}
	if rec.Outcome != "" {
		return Errorf(KindInvalidInput, "expedition %s already resolved", code)
	}
	now := s.clock()
	return s.store.InTx(func() error {
		rec.Outcome = model.OutcomeCancelled
		if err := s.store.SaveExpedition(rec); err != nil {
			return err
		}
		summary := fmt.Sprintf("Expedition %s is cancelled by administrative order (%s).", code, reason)
		return s.adminTrail(now, admin, "cancel_expedition", summary, map[string]any{
			"code": code, "reason": reason,
		})
	})
}

// AdminCreateSeasonalCommitment opens a recurring obligation for a
// player, running the configured number of days.
func (s *Service) AdminCreateSeasonalCommitment(admin, playerID, faction, tier string, baseCost int) (*model.SeasonalCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.requirePlayer(playerID); err != nil {
		return nil, err
	}
	if baseCost <= 0 {
		baseCost = s.cfg.Seasonal.BaseCost
	}
	now := s.clock()
	c := &model.SeasonalCommitment{
		ID:       uuid.NewString(),
		Player:   playerID,
		Faction:  faction,
		Tier:     tier,
		BaseCost: baseCost,
		StartAt:  now,
		EndAt:    now.Add(time.Duration(s.cfg.Seasonal.DurationDays) * 24 * time.Hour),
		Status:   model.CommitmentActive,
	}
	if err := s.store.InTx(func() error {
		if err := s.store.SaveCommitment(c); err != nil {
			return err
		}
		summary := fmt.Sprintf("A %s commitment to %s is recorded against %s, payable each beat.", tier, faction, s.displayName(playerID))
		return s.adminTrail(now, admin, "create_seasonal_commitment", summary, map[string]any{
			"commitment": c.ID, "player": playerID, "faction": faction,
		})
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// AdminUpdateSeasonalCommitment changes a commitment's cost or status.
func (s *Service) AdminUpdateSeasonalCommitment(admin, id string, baseCost int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.GetCommitment(id)
	if err != nil {
		return err
	}
	if c == nil {
		return Errorf(KindNotFound, "commitment %q", id)
	}
	if baseCost > 0 {
		c.BaseCost = baseCost
	}
	if status != "" {
		switch status {
		case model.CommitmentActive, model.CommitmentCompleted, model.CommitmentCancelled:
			c.Status = status
		default:
			return Errorf(KindInvalidInput, "unknown commitment status %q", status)
		}
	}
	now := s.clock()
	return s.store.InTx(func() error {
		if err := s.store.SaveCommitment(c); err != nil {
			return err
		}
		summary := fmt.Sprintf("The terms of %s's commitment to %s are revised by administrative order.", s.displayName(c.Player), c.Faction)
		return s.adminTrail(now, admin, "update_seasonal_commitment", summary, map[string]any{
			"commitment": id, "base_cost": c.BaseCost, "status": c.Status,
		})
	})
}

// AdminCreateFactionProject opens a communal goal that accrues player
// contributions each digest.
func (s *Service) AdminCreateFactionProject(admin, name, faction string, target float64) (*model.FactionProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || target <= 0 {
		return nil, Errorf(KindInvalidInput, "project needs a name and a positive target")
	}
	now := s.clock()
	proj := &model.FactionProject{
		ID:        uuid.NewString(),
		Name:      name,
		Faction:   faction,
		Target:    target,
		Status:    model.ProjectActive,
		UpdatedAt: now,
	}
	if err := s.store.InTx(func() error {
		if err := s.store.SaveProject(proj); err != nil {
			return err
		}
		summary := fmt.Sprintf("%s announces the %s, an undertaking inviting subscription from all quarters.", faction, name)
		return s.adminTrail(now, admin, "create_faction_project", summary, map[string]any{
			"project": proj.ID, "name": name, "faction": faction,
		})
	}); err != nil {
		return nil, err
	}
	return proj, nil
}

// AdminUpdateFactionProject adjusts a project's target or closes it.
func (s *Service) AdminUpdateFactionProject(admin, id string, target float64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proj, err := s.store.GetProject(id)
	if err != nil {
		return err
	}
	if proj == nil {
		return Errorf(KindNotFound, "project %q", id)
	}
	if target > 0 {
		proj.Target = target
	}
	if status != "" {
		switch status {
		case model.ProjectActive, model.ProjectCompleted:
			proj.Status = status
		default:
			return Errorf(KindInvalidInput, "unknown project status %q", status)
		}
	}
	now := s.clock()
	proj.UpdatedAt = now
	return s.store.InTx(func() error {
		if err := s.store.SaveProject(proj); err != nil {
			return err
		}
		summary := fmt.Sprintf("The scope of %s's %s is revised by administrative order.", proj.Faction, proj.Name)
		return s.adminTrail(now, admin, "update_faction_project", summary, map[string]any{
			"project": id, "target": proj.Target, "status": proj.Status,
		})
	})
}

// AdminListOrders returns every pending follow-up order.
func (s *Service) AdminListOrders() ([]*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PendingOrders()
}

// AdminCancelOrder voids a pending order so the dispatcher skips it.
func (s *Service) AdminCancelOrder(admin, orderID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return Errorf(KindNotFound, "order %q", orderID)
	}
	if order.Status != model.OrderPending {
		return Errorf(KindInvalidInput, "order %s is %s, not pending", orderID, order.Status)
	}
	now := s.clock()
	return s.store.InTx(func() error {
		if err := s.store.UpdateOrderStatus(orderID, model.OrderCancelled, reason, now); err != nil {
			return err
		}
		summary := fmt.Sprintf("A pending matter (%s) is withdrawn from the docket (%s).", order.OrderType, reason)
		return s.adminTrail(now, admin, "cancel_order", summary, map[string]any{
			"order": orderID, "order_type": order.OrderType, "reason": reason,
		})
	})
}

// PauseGame halts all non-admin handlers until resumed.
func (s *Service) PauseGame(admin, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return Errorf(KindInvalidInput, "game is already paused: %s", s.pauseReason)
	}
	now := s.clock()
	if err := s.store.InTx(func() error {
		if _, err := s.store.AppendEvent(now, "game_paused", map[string]any{
			"reason": reason, "auto": false,
		}); err != nil {
			return err
		}
		summary := fmt.Sprintf("The Gazette suspends publication (%s). Readers are asked for patience.", reason)
		return s.adminTrail(now, admin, "pause_game", summary, map[string]any{"reason": reason})
	}); err != nil {
		return err
	}
	s.paused = true
	s.pausedByOutage = false
	s.pauseReason = reason
	s.sink.Count("game.paused", 1)
	s.log.Warn("game paused by admin", "admin", admin, "reason", reason)
	return nil
}

// ResumeGame lifts a pause, whatever its origin.
func (s *Service) ResumeGame(admin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return Errorf(KindInvalidInput, "game is not paused")
	}
	now := s.clock()
	if err := s.store.InTx(func() error {
		if _, err := s.store.AppendEvent(now, "game_resumed", map[string]any{"auto": false}); err != nil {
			return err
		}
		return s.adminTrail(now, admin, "resume_game",
			"Publication resumes. The editors thank subscribers for their forbearance.",
			nil)
	}); err != nil {
		return err
	}
	s.paused = false
	s.pausedByOutage = false
	s.pauseReason = ""
	s.window.RecordSuccess()
	s.log.Info("game resumed by admin", "admin", admin)
	return nil
}
