package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
	"github.com/tachyon-beep/jubilant-fortnight/internal/scholars"
)

// tableTalkBatchMin is how many table talk posts must accumulate before
// the digest folds them into one column.
const tableTalkBatchMin = 3

// orderHandler resolves one due follow-up order. The dispatcher marks
// the order completed after a nil return; handlers themselves stay
// idempotent against re-runs.
type orderHandler func(s *Service, now time.Time, order *model.Order) error

// orderHandlers is the dispatch table, one handler per order kind.
var orderHandlers = map[string]orderHandler{
	model.OrderEvaluateOffer:         (*Service).handleEvaluateOffer,
	model.OrderEvaluateCounter:       (*Service).handleEvaluateOffer,
	model.OrderDefectionGrudge:       (*Service).handleDefectionGrudge,
	model.OrderDefectionReturn:       (*Service).handleDefectionReturn,
	model.OrderRecruitmentGrudge:     (*Service).handleRecruitmentGrudge,
	model.OrderSidewaysVignette:      (*Service).handleSidewaysVignette,
	model.OrderSymposiumReprimand:    (*Service).handleSymposiumReprimand,
	model.OrderMentorshipActivation:  (*Service).handleMentorshipActivation,
	model.OrderSidecastDebut:         (*Service).handleSidecastPhase,
	model.OrderSidecastIntegration:   (*Service).handleSidecastPhase,
	model.OrderSidecastSpotlight:     (*Service).handleSidecastPhase,
	model.OrderSymposiumVoteReminder: (*Service).handleSymposiumVoteReminder,
	model.OrderConferenceResolution:  (*Service).handleConferenceResolution,
}

// generalOrderTypes are dispatched in the main order-resolution step.
// Reminders and conferences get their own later steps in the beat.
var generalOrderTypes = []string{
	model.OrderEvaluateOffer,
	model.OrderEvaluateCounter,
	model.OrderDefectionGrudge,
	model.OrderDefectionReturn,
	model.OrderRecruitmentGrudge,
	model.OrderSidewaysVignette,
	model.OrderSymposiumReprimand,
	model.OrderMentorshipActivation,
	model.OrderSidecastDebut,
	model.OrderSidecastIntegration,
	model.OrderSidecastSpotlight,
}

// DigestReport summarises what one beat accomplished.
type DigestReport struct {
	PressReleased   int      `json:"press_released"`
	OrdersResolved  int      `json:"orders_resolved"`
	ReprisalsTaken  int      `json:"reprisals_taken"`
	YearsElapsed    int      `json:"years_elapsed"`
	ExpeditionCodes []string `json:"expedition_codes,omitempty"`
}

// AdvanceDigest runs one Gazette beat: housekeeping, order resolution,
// the economy sweep, and the release of everything the beat scheduled.
// The external timer calls it on a cadence; it refuses while paused,
// except that allow-listed scheduled press (administrative notices and
// symposium reminders) still escapes the queue on schedule. The whole
// beat runs in one transaction.
func (s *Service) AdvanceDigest() (*DigestReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if err := s.guardPaused(); err != nil {
		if txErr := s.store.InTx(func() error {
			released, relErr := s.releasePress(now, pausedPressAllowed)
			if relErr == nil && released > 0 {
				s.log.Info("released press during pause", "count", released)
			}
			return relErr
		}); txErr != nil {
			return nil, txErr
		}
		return nil, err
	}
	started := time.Now()
	report := &DigestReport{}
	if err := s.store.InTx(func() error {
		return s.runBeat(now, report)
	}); err != nil {
		return nil, err
	}

	s.sink.Latency("digest.duration", time.Since(started))
	s.log.Info("digest complete",
		"press_released", report.PressReleased,
		"orders_resolved", report.OrdersResolved,
		"reprisals", report.ReprisalsTaken,
		"expeditions", len(report.ExpeditionCodes),
	)
	return report, nil
}

func (s *Service) runBeat(now time.Time, report *DigestReport) error {
	if err := s.expireProposals(now); err != nil {
		return err
	}

	released, err := s.releaseScheduledPress(now)
	if err != nil {
		return err
	}
	report.PressReleased += released

	years, currentYear, err := s.store.AdvanceTimeline(now, s.cfg.Timeline.DaysPerYear)
	if err != nil {
		return err
	}
	if years > 0 {
		report.YearsElapsed = years
		if _, err := s.store.AppendEvent(now, "timeline_advanced", map[string]any{
			"years_elapsed": years,
			"current_year":  currentYear,
		}); err != nil {
			return err
		}
		if _, err := s.publish(now, press.TimelineUpdate(years, currentYear)); err != nil {
			return err
		}
	}

	if err := s.tickAllCooldowns(); err != nil {
		return err
	}
	if err := s.decayScholarFeelings(); err != nil {
		return err
	}
	if err := s.ensureRoster(now); err != nil {
		return err
	}
	if err := s.progressCareers(now); err != nil {
		return err
	}

	resolved, err := s.dispatchOrders(now, generalOrderTypes)
	if err != nil {
		return err
	}
	report.OrdersResolved += resolved

	codes, err := s.resolveDueExpeditions(now)
	if err != nil {
		return err
	}
	report.ExpeditionCodes = codes

	reminders, err := s.dispatchOrders(now, []string{model.OrderSymposiumVoteReminder})
	if err != nil {
		return err
	}
	report.OrdersResolved += reminders

	if err := s.applyContractUpkeep(now); err != nil {
		return err
	}
	if err := s.applySeasonalCommitments(now); err != nil {
		return err
	}
	reprisals, err := s.processDebts(now)
	if err != nil {
		return err
	}
	report.ReprisalsTaken = reprisals

	if err := s.advanceFactionProjects(now); err != nil {
		return err
	}

	conferences, err := s.dispatchOrders(now, []string{model.OrderConferenceResolution})
	if err != nil {
		return err
	}
	report.OrdersResolved += conferences

	if err := s.flushTableTalk(now); err != nil {
		return err
	}

	released, err = s.releaseScheduledPress(now)
	if err != nil {
		return err
	}
	report.PressReleased += released

	if report.PressReleased+report.OrdersResolved+report.ReprisalsTaken+report.YearsElapsed > 0 || len(report.ExpeditionCodes) > 0 {
		if _, err := s.publish(now, press.DigestHighlights(press.DigestHighlightsCtx{
			PressReleased:   report.PressReleased,
			OrdersResolved:  report.OrdersResolved,
			ReprisalsTaken:  report.ReprisalsTaken,
			YearsElapsed:    report.YearsElapsed,
			ExpeditionCodes: report.ExpeditionCodes,
		})); err != nil {
			return err
		}
	}
	if _, err := s.store.AppendEvent(now, "digest_completed", map[string]any{
		"press_released":  report.PressReleased,
		"orders_resolved": report.OrdersResolved,
		"reprisals":       report.ReprisalsTaken,
	}); err != nil {
		return err
	}
	return nil
}

// dispatchOrders resolves due orders of the given kinds in created_at
// order and marks each completed exactly once. Each order runs in its
// own nested transaction: a failed handler's partial writes roll back,
// the order stays pending, and the beat moves on.
func (s *Service) dispatchOrders(now time.Time, types []string) (int, error) {
	resolved := 0
	for _, orderType := range types {
		handler, ok := orderHandlers[orderType]
		if !ok {
			s.log.Warn("no handler for order type", "type", orderType)
			continue
		}
		due, err := s.store.DueOrders(orderType, now)
		if err != nil {
			return resolved, err
		}
		for _, order := range due {
			order := order
			err := s.store.InTx(func() error {
				if err := handler(s, now, order); err != nil {
					return err
				}
				return s.store.UpdateOrderStatus(order.ID, model.OrderCompleted, "ok", now)
			})
			if err != nil {
				s.log.Error("order handler failed", "type", orderType, "order", order.ID, "error", err)
				continue
			}
			resolved++
		}
	}
	if resolved > 0 {
		s.sink.Count("orders.resolved", resolved)
	}
	return resolved, nil
}

// resolveDueExpeditions closes out every pending expedition and returns
// their codes for the beat's highlights.
func (s *Service) resolveDueExpeditions(now time.Time) ([]string, error) {
	pending, err := s.store.PendingExpeditions()
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(pending))
	for _, rec := range pending {
		codes = append(codes, rec.Code)
	}
	if _, err := s.resolvePendingExpeditions(now); err != nil {
		return nil, err
	}
	return codes, nil
}

// pausedPressAllowed are the scheduled press types that still publish
// while the game is paused: administrative notices keep their moment
// and symposium reminders keep their escalation clock honest.
var pausedPressAllowed = map[string]bool{
	press.TypeAdminAction:       true,
	press.TypeAdminUpdate:       true,
	press.TypeSymposiumReminder: true,
}

// releaseScheduledPress moves every due queued release into the archive.
func (s *Service) releaseScheduledPress(now time.Time) (int, error) {
	return s.releasePress(now, nil)
}

// releasePress archives due queued releases. A non-nil allow set
// restricts the release to those types; everything else stays queued
// for a later beat.
func (s *Service) releasePress(now time.Time, allow map[string]bool) (int, error) {
	due, err := s.store.DueQueuedPress(now)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, qp := range due {
		if allow != nil && !allow[qp.Release.Type] {
			continue
		}
		if _, err := s.store.RecordPress(now, qp.Release); err != nil {
			return released, err
		}
		if err := s.store.ClearQueuedPress(qp.ID); err != nil {
			return released, err
		}
		if _, err := s.store.AppendEvent(now, "scheduled_press_released", map[string]any{
			"type": qp.Release.Type,
		}); err != nil {
			return released, err
		}
		released++
	}
	if released > 0 {
		s.sink.Count("press.released", released)
	}
	return released, nil
}

func (s *Service) tickAllCooldowns() error {
	players, err := s.store.AllPlayers()
	if err != nil {
		return err
	}
	for _, p := range players {
		if len(p.Cooldowns) == 0 {
			continue
		}
		p.TickCooldowns()
		if err := s.store.UpsertPlayer(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) decayScholarFeelings() error {
	all, err := s.store.AllScholars()
	if err != nil {
		return err
	}
	for _, sc := range all {
		if len(sc.Memory.Feelings) == 0 {
			continue
		}
		sc.Memory.DecayFeelings()
		if err := s.store.SaveScholar(sc); err != nil {
			return err
		}
	}
	return nil
}

// ensureRoster tops the roster up to its floor and retires surplus
// scholars past its ceiling, least-attached first.
func (s *Service) ensureRoster(now time.Time) error {
	count, err := s.store.CountScholars()
	if err != nil {
		return err
	}
	for count < s.cfg.Roster.Min {
		sc := s.roster.Generate()
		if err := s.store.SaveScholar(&sc); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "scholar_generated", map[string]any{
			"scholar": sc.ID, "name": sc.Name,
		}); err != nil {
			return err
		}
		count++
	}
	if count <= s.cfg.Roster.Max {
		return nil
	}
	all, err := s.store.AllScholars()
	if err != nil {
		return err
	}
	pool := make([]model.Scholar, 0, len(all))
	for _, sc := range all {
		pool = append(pool, *sc)
	}
	for _, sc := range scholars.RetirementOrder(pool) {
		if count <= s.cfg.Roster.Max {
			break
		}
		if err := s.store.DeleteScholar(sc.ID); err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "scholar_retired", map[string]any{
			"scholar": sc.ID, "name": sc.Name,
		}); err != nil {
			return err
		}
		count--
	}
	return nil
}

// flushTableTalk folds accumulated posts into one digest column once
// enough have piled up.
func (s *Service) flushTableTalk(now time.Time) error {
	if len(s.tableTalk) < tableTalkBatchMin {
		return nil
	}
	posts := s.tableTalk
	s.tableTalk = nil
	if _, err := s.publish(now, press.TableTalkDigest(posts)); err != nil {
		return err
	}
	return nil
}

// --- dispatch handlers ---

func (s *Service) handleEvaluateOffer(now time.Time, order *model.Order) error {
	_, err := s.resolveOfferNegotiation(now, order.SubjectID)
	return err
}

// handleDefectionGrudge is a scholar's delayed resentment at being
// courted by a rival faction and refusing.
func (s *Service) handleDefectionGrudge(now time.Time, order *model.Order) error {
	sc, err := s.store.GetScholar(order.SubjectID)
	if err != nil || sc == nil {
		return err
	}
	suitor, _ := order.Payload["suitor"].(string)
	sc.Memory.AdjustFeeling(suitor, -2)
	sc.Memory.RecordFact(model.MemoryFact{
		Timestamp: now,
		Type:      "grudge",
		Subject:   suitor,
		Details:   map[string]string{"reason": "unwanted courtship"},
	})
	if err := s.store.SaveScholar(sc); err != nil {
		return err
	}
	if _, err := s.store.AppendEvent(now, "defection_grudge", map[string]any{
		"scholar": sc.ID, "suitor": suitor,
	}); err != nil {
		return err
	}
	_, err = s.publish(now, press.AcademicGossip(press.GossipCtx{
		Scholar: sc.Name,
		Quote:   "Some doors, once knocked on, stay shut.",
		Trigger: fmt.Sprintf("overtures from %s", s.displayName(suitor)),
	}))
	return err
}

// handleDefectionReturn revisits a defection after the dust settles. A
// minority of scholars reconcile with their former patron; the rest
// nurse the grudge in public.
func (s *Service) handleDefectionReturn(now time.Time, order *model.Order) error {
	sc, err := s.store.GetScholar(order.SubjectID)
	if err != nil || sc == nil {
		return err
	}
	former, _ := order.Payload["former_patron"].(string)
	newPatron, _ := order.Payload["new_patron"].(string)

	scenario := "grudge"
	if s.src.Float() < 0.25 {
		scenario = "reconciliation"
		sc.Contract.Employer = former
		sc.Memory.AdjustFeeling(former, 2)
		sc.Memory.AdjustFeeling(newPatron, -1)
		sc.Memory.RecordFact(model.MemoryFact{
			Timestamp: now,
			Type:      "returned",
			Subject:   former,
		})
	} else {
		sc.Memory.AdjustFeeling(former, -1)
	}
	if err := s.store.SaveScholar(sc); err != nil {
		return err
	}
	if _, err := s.store.AppendEvent(now, "defection_return", map[string]any{
		"scholar":  sc.ID,
		"scenario": scenario,
		"former":   former,
	}); err != nil {
		return err
	}
	if _, err := s.publish(now, press.DefectionEpilogue(press.DefectionCtx{
		Scholar:    sc.Name,
		FormerHome: s.displayName(former),
		NewHome:    s.displayName(newPatron),
		Scenario:   scenario,
	})); err != nil {
		return err
	}
	s.planLayers(now, press.EventFacts{
		Kind:    press.TypeDefectionEpilogue,
		Player:  s.displayName(former),
		Subject: sc.Name,
	})
	return nil
}

// handleRecruitmentGrudge lets a failed recruitment fester into gossip.
func (s *Service) handleRecruitmentGrudge(now time.Time, order *model.Order) error {
	sc, err := s.store.GetScholar(order.SubjectID)
	if err != nil || sc == nil {
		return err
	}
	sc.Memory.AdjustFeeling(order.ActorID, -1)
	sc.Memory.RecordFact(model.MemoryFact{
		Timestamp: now,
		Type:      "snubbed",
		Subject:   order.ActorID,
	})
	if err := s.store.SaveScholar(sc); err != nil {
		return err
	}
	quote := "I was not aware I was for hire."
	if len(s.cat.Recruitment.Gossip) > 0 {
		quote = fillTemplate(rng.Choice(s.src, s.cat.Recruitment.Gossip), map[string]string{
			"player":  s.displayName(order.ActorID),
			"scholar": sc.Name,
		})
	}
	if _, err := s.store.AppendEvent(now, "recruitment_grudge", map[string]any{
		"scholar": sc.ID, "player": order.ActorID,
	}); err != nil {
		return err
	}
	_, err = s.publish(now, press.AcademicGossip(press.GossipCtx{
		Scholar: sc.Name,
		Quote:   quote,
		Trigger: "a rebuffed recruitment",
	}))
	return err
}

// handleSidewaysVignette releases the delayed scene a sideways
// discovery promised.
func (s *Service) handleSidewaysVignette(now time.Time, order *model.Order) error {
	objective, _ := order.Payload["objective"].(string)
	description, _ := order.Payload["description"].(string)
	player := s.displayName(order.ActorID)

	headline := ""
	body := description
	if len(s.cat.Vignettes) > 0 {
		v := rng.Choice(s.src, s.cat.Vignettes)
		headline = v.Headline
		body = fillTemplate(v.Body, map[string]string{
			"player":    player,
			"objective": objective,
		})
	}
	if _, err := s.store.AppendEvent(now, "sideways_vignette", map[string]any{
		"code": order.SubjectID, "player": order.ActorID,
	}); err != nil {
		return err
	}
	_, err := s.publish(now, press.SidewaysVignette(press.VignetteCtx{
		Player:    player,
		Objective: objective,
		Headline:  headline,
		Body:      body,
		Tag:       order.SubjectID,
	}))
	return err
}

// handleSymposiumReprimand publishes the formal consequence of a debt
// that persisted past its reprisal threshold.
func (s *Service) handleSymposiumReprimand(now time.Time, order *model.Order) error {
	source, _ := order.Payload["source"].(string)
	missStreak := 0
	if part, err := s.store.Participation(order.ActorID); err == nil && part != nil {
		missStreak = part.MissStreak
	}
	topic := fmt.Sprintf("%s dues owed to %s", source, order.SubjectID)
	if active, err := s.store.ActiveTopic(); err == nil && active != nil && source == model.DebtSymposium {
		topic = active.Topic
	}
	if _, err := s.store.AppendEvent(now, "symposium_reprimand_published", map[string]any{
		"player": order.ActorID, "source": source,
	}); err != nil {
		return err
	}
	_, err := s.publish(now, press.SymposiumReprimand(s.displayName(order.ActorID), topic, missStreak))
	return err
}

// handleSidecastPhase runs one beat of a spawned scholar's arc and
// queues the next phase.
func (s *Service) handleSidecastPhase(now time.Time, order *model.Order) error {
	sc, err := s.store.GetScholar(order.SubjectID)
	if err != nil || sc == nil {
		return err
	}
	arcName, _ := order.Payload["arc"].(string)
	expeditionCode, _ := order.Payload["expedition"].(string)
	sponsor, _ := order.Payload["sponsor"].(string)
	phase := strings.TrimPrefix(order.OrderType, "followup:sidecast_")

	arc := s.sidecastArc(arcName)
	if arc == nil {
		return fmt.Errorf("unknown sidecast arc %q", arcName)
	}
	body := fillTemplate(arc.Phases[phase], map[string]string{
		"scholar":    sc.Name,
		"sponsor":    s.displayName(sponsor),
		"expedition": expeditionCode,
	})
	ctx := press.SidecastCtx{
		Scholar:    sc.Name,
		Sponsor:    s.displayName(sponsor),
		Expedition: expeditionCode,
		Arc:        arcName,
		Body:       body,
	}

	var rel model.PressRelease
	var next string
	var nextDelay time.Duration
	switch phase {
	case "debut":
		rel = press.SidecastDebut(ctx)
		next, nextDelay = model.OrderSidecastIntegration, 24*time.Hour
	case "integration":
		rel = press.SidecastIntegration(ctx)
		next, nextDelay = model.OrderSidecastSpotlight, 48*time.Hour
	case "spotlight":
		rel = press.SidecastSpotlight(ctx)
	default:
		return fmt.Errorf("unknown sidecast phase %q", phase)
	}

	if _, err := s.store.AppendEvent(now, "sidecast_phase", map[string]any{
		"scholar": sc.ID, "arc": arcName, "phase": phase,
	}); err != nil {
		return err
	}
	if _, err := s.publish(now, rel); err != nil {
		return err
	}
	s.planLayers(now, press.EventFacts{
		Kind:    rel.Type,
		Player:  s.displayName(sponsor),
		Subject: sc.Name,
	})
	if next != "" {
		return s.schedule(now, next, sponsor, sc.ID, order.Payload, nextDelay)
	}
	return nil
}

func (s *Service) sidecastArc(name string) *catalog.SidecastArc {
	for i := range s.cat.SidecastArcs {
		if s.cat.SidecastArcs[i].Name == name {
			return &s.cat.SidecastArcs[i]
		}
	}
	return nil
}
