// Package service is the orchestrator: it validates commands, applies
// state mutations with event-log appends, builds and archives press,
// plans layered coverage, enqueues follow-up orders, and runs the
// digest tick. All mutating paths run under one lock; the engine is
// single-writer by construction.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/catalog"
	"github.com/tachyon-beep/jubilant-fortnight/internal/config"
	"github.com/tachyon-beep/jubilant-fortnight/internal/enhance"
	"github.com/tachyon-beep/jubilant-fortnight/internal/expedition"
	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
	"github.com/tachyon-beep/jubilant-fortnight/internal/scholars"
	"github.com/tachyon-beep/jubilant-fortnight/internal/store"
	"github.com/tachyon-beep/jubilant-fortnight/internal/telemetry"
)

// careerTicksRequired is how many digests a mentored scholar spends at a
// tier before moving up.
const careerTicksRequired = 3

// Service owns all mutable game state. Safe for concurrent use; every
// public method takes the single writer lock.
type Service struct {
	mu sync.Mutex

	cfg      *config.Settings
	store    *store.Store
	cat      *catalog.Catalog
	src      *rng.Source
	roster   *scholars.Repository
	resolver *expedition.Resolver
	enhancer enhance.Enhancer
	window   *enhance.FailureWindow
	sink     telemetry.Sink
	log      *slog.Logger
	tone     *catalog.TonePack

	clock func() time.Time

	paused         bool
	pauseReason    string
	pausedByOutage bool

	// table talk posts accumulated since the last digest flush
	tableTalk []string
}

// New wires the service and bootstraps a fresh game: the timeline is
// initialised and the scholar roster seeded up to its floor. enhancer
// and sink may be nil (enhancement off, metrics to logs).
func New(cfg *config.Settings, st *store.Store, cat *catalog.Catalog, enhancer enhance.Enhancer, sink telemetry.Sink, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if sink == nil {
		sink = telemetry.NewLogSink(log)
	}
	src := rng.New(cfg.Game.Seed)
	s := &Service{
		cfg:      cfg,
		store:    st,
		cat:      cat,
		src:      src,
		roster:   scholars.NewRepository(cat, src),
		resolver: expedition.NewResolver(src),
		enhancer: enhancer,
		window:   &enhance.FailureWindow{},
		sink:     sink,
		log:      log,
		tone:     cat.TonePackByName(cfg.Enhancer.TonePack),
		clock:    time.Now,
	}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) bootstrap() error {
	now := s.clock()
	if err := s.store.InitTimeline(s.cfg.Timeline.StartYear, now); err != nil {
		return err
	}
	count, err := s.store.CountScholars()
	if err != nil {
		return err
	}
	if count == 0 {
		for _, sc := range s.roster.SeedBase() {
			sc := sc
			if err := s.store.SaveScholar(&sc); err != nil {
				return err
			}
		}
		count, err = s.store.CountScholars()
		if err != nil {
			return err
		}
	}
	for count < s.cfg.Roster.Min {
		sc := s.roster.Generate()
		if err := s.store.SaveScholar(&sc); err != nil {
			return err
		}
		count++
	}
	s.log.Info("game ready",
		"seed", s.cfg.Game.Seed,
		"scholars", count,
		"start_year", s.cfg.Timeline.StartYear,
	)
	return nil
}

// SetClock replaces the time source. Test hook; the default is time.Now.
func (s *Service) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Paused reports the pause state and its reason.
func (s *Service) Paused() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused, s.pauseReason
}

// guardPaused is step one of every non-admin handler.
func (s *Service) guardPaused() error {
	if s.paused {
		return Errorf(KindGamePaused, "game is paused: %s", s.pauseReason)
	}
	return nil
}

func (s *Service) bounds() model.ReputationBounds {
	return model.ReputationBounds{Min: s.cfg.Reputation.Min, Max: s.cfg.Reputation.Max}
}

func (s *Service) influenceCap(p *model.Player) int {
	return p.InfluenceCap(s.cfg.Influence.Base, s.cfg.Influence.PerReputation)
}

// requirePlayer resolves a player id or fails NotFound.
func (s *Service) requirePlayer(id string) (*model.Player, error) {
	p, err := s.store.GetPlayer(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, Errorf(KindNotFound, "player %q", id)
	}
	return p, nil
}

// requireScholar resolves a scholar id or fails NotFound.
func (s *Service) requireScholar(id string) (*model.Scholar, error) {
	sc, err := s.store.GetScholar(id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, Errorf(KindNotFound, "scholar %q", id)
	}
	return sc, nil
}

// requireThreshold gates an action on the player's reputation.
func (s *Service) requireThreshold(p *model.Player, action string) error {
	required, ok := s.cfg.Threshold(action)
	if !ok {
		return nil
	}
	if p.Reputation < required {
		return Errorf(KindThresholdNotMet, "%s requires reputation %d, %s has %d", action, required, p.ID, p.Reputation)
	}
	return nil
}

// requireStakeCooldown refuses a career-staking wager while the
// player's last staked failure is still being lived down.
func (s *Service) requireStakeCooldown(p *model.Player, confidence string) error {
	if model.Confidence(confidence) != model.ConfidenceStakeMyCareer {
		return nil
	}
	if ticks := p.Cooldowns[string(model.ConfidenceStakeMyCareer)]; ticks > 0 {
		return Errorf(KindCooldownActive, "%s may not stake their career for %d more digests", p.ID, ticks)
	}
	return nil
}

// adjustReputation applies a clamped delta and returns the new value.
func (s *Service) adjustReputation(p *model.Player, delta int) int {
	p.Reputation = s.bounds().Clamp(p.Reputation + delta)
	return p.Reputation
}

// EnsurePlayer creates the player if absent and returns it. Idempotent.
func (s *Service) EnsurePlayer(id, displayName string) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.store.GetPlayer(id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	if id == "" {
		return nil, Errorf(KindInvalidInput, "empty player id")
	}
	if displayName == "" {
		displayName = id
	}
	p = model.NewPlayer(id, displayName)
	if err := s.store.UpsertPlayer(p); err != nil {
		return nil, err
	}
	s.sink.Count("players.created", 1)
	return p, nil
}

// publish runs a release through enhancement and archives it. The
// template body always survives an enhancer failure; sustained failures
// flip the game to paused.
func (s *Service) publish(now time.Time, rel model.PressRelease) (model.PressRelease, error) {
	press.ApplyTone(&rel, s.tone)

	if s.enhancer != nil && s.enhancer.Enabled() {
		toneSeed, _ := rel.Metadata["tone_seed"].(string)
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.Enhancer.CallTimeoutSeconds)*time.Second)
		enhanced, err := s.enhancer.Enhance(ctx, rel, toneSeed)
		cancel()
		if err != nil {
			s.window.RecordFailure(now, err.Error())
			s.sink.Count("enhancer.failures", 1)
			s.log.Warn("enhancer failed, keeping template body", "press_type", rel.Type, "error", err)
			s.maybePauseOnOutage(now)
		} else {
			rel.Body = enhanced
			s.window.RecordSuccess()
			s.maybeResumeAfterOutage(now)
		}
	}

	if _, err := s.store.RecordPress(now, rel); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("press.archived", 1, slog.String("type", rel.Type))
	return rel, nil
}

func (s *Service) maybePauseOnOutage(now time.Time) {
	timeout := time.Duration(s.cfg.Enhancer.PauseTimeoutSeconds) * time.Second
	if s.paused || !s.window.ShouldPause(now, timeout) {
		return
	}
	_, failures, detail := s.window.Failing()
	s.paused = true
	s.pausedByOutage = true
	s.pauseReason = fmt.Sprintf("narrative enhancer failing (%d consecutive: %s)", failures, detail)
	if _, err := s.store.AppendEvent(now, "game_paused", map[string]any{
		"reason": s.pauseReason,
		"auto":   true,
	}); err != nil {
		s.log.Error("record pause event", "error", err)
	}
	s.sink.Count("game.paused", 1)
	s.log.Warn("game paused", "reason", s.pauseReason)
}

func (s *Service) maybeResumeAfterOutage(now time.Time) {
	if !s.paused || !s.pausedByOutage {
		return
	}
	s.paused = false
	s.pausedByOutage = false
	s.pauseReason = ""
	if _, err := s.store.AppendEvent(now, "game_resumed", map[string]any{"auto": true}); err != nil {
		s.log.Error("record resume event", "error", err)
	}
	rel := press.AdminAction("system", "Normal service resumes. The narrative desk apologises for the interruption.")
	if _, err := s.store.RecordPress(now, rel); err != nil {
		s.log.Error("record resume press", "error", err)
	}
	s.log.Info("game resumed after enhancer recovery")
}

// planLayers grades an event and schedules its follow-on coverage.
func (s *Service) planLayers(now time.Time, facts press.EventFacts) {
	depth := press.Classify(facts)
	for _, layer := range press.PlanCoverage(depth) {
		rel := press.RenderLayer(layer, facts)
		press.ApplyTone(&rel, s.tone)
		releaseAt := now.Add(layer.Delay)
		if _, err := s.store.EnqueuePress(now, rel, releaseAt); err != nil {
			s.sink.Count("press.schedule_failures", 1)
			s.log.Error("schedule layered press", "type", rel.Type, "error", err)
			continue
		}
		if _, err := s.store.AppendEvent(now, "press_scheduled", map[string]any{
			"type":       rel.Type,
			"release_at": releaseAt.Format(time.RFC3339),
			"depth":      depth.String(),
		}); err != nil {
			s.log.Error("record press_scheduled", "error", err)
		}
	}
	s.sink.Gauge("press.depth", float64(depth), slog.String("kind", facts.Kind))
}

// schedule enqueues a follow-up order at now + delay.
func (s *Service) schedule(now time.Time, orderType, actorID, subjectID string, payload map[string]any, delay time.Duration) error {
	at := now.Add(delay)
	_, err := s.store.EnqueueOrder(now, orderType, actorID, subjectID, payload, &at)
	if err == nil {
		s.sink.Count("orders.scheduled", 1, slog.String("type", orderType))
	}
	return err
}
