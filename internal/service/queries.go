package service

import (
	"strings"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
)

// FactionStanding pairs a holding with its reputation-derived ceiling.
type FactionStanding struct {
	Amount int `json:"amount"`
	Cap    int `json:"cap"`
}

// PlayerStatus is the read-only projection adapters show a player.
type PlayerStatus struct {
	ID          string                     `json:"id"`
	DisplayName string                     `json:"display_name"`
	Reputation  int                        `json:"reputation"`
	Influence   map[string]FactionStanding `json:"influence"`
	Cooldowns   map[string]int             `json:"cooldowns,omitempty"`
	Debts       []model.InfluenceDebt      `json:"debts,omitempty"`
	Commitments []*model.SeasonalCommitment `json:"commitments,omitempty"`
	Paused      bool                       `json:"paused"`
}

// Status assembles a player's current standing, holdings, cooldowns,
// and outstanding obligations.
func (s *Service) Status(playerID string) (*PlayerStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return nil, err
	}
	cap := s.influenceCap(p)
	status := &PlayerStatus{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Reputation:  p.Reputation,
		Influence:   make(map[string]FactionStanding, len(p.Influence)),
		Cooldowns:   p.Cooldowns,
		Paused:      s.paused,
	}
	for faction, amount := range p.Influence {
		status.Influence[faction] = FactionStanding{Amount: amount, Cap: cap}
	}
	for _, source := range []string{model.DebtSymposium, model.DebtContract, model.DebtSeasonal} {
		debts, err := s.store.DebtsByPlayer(playerID, source)
		if err != nil {
			return nil, err
		}
		status.Debts = append(status.Debts, debts...)
	}
	commitments, err := s.store.ActiveCommitments()
	if err != nil {
		return nil, err
	}
	for _, c := range commitments {
		if c.Player == playerID {
			status.Commitments = append(status.Commitments, c)
		}
	}
	return status, nil
}

// PostTableTalk archives a free-text remark as table_talk press. Posts
// are also batched into a digest column once enough accumulate.
func (s *Service) PostTableTalk(playerID, message string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return model.PressRelease{}, Errorf(KindInvalidInput, "empty table talk post")
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		if _, err := s.store.AppendEvent(now, "table_talk_post", map[string]any{
			"player":  playerID,
			"message": message,
		}); err != nil {
			return err
		}
		var err error
		rel, err = s.publish(now, press.TableTalk(p.DisplayName, message))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.tableTalk = append(s.tableTalk, message)
	s.sink.Count("table_talk.posts", 1)
	return rel, nil
}

// PressArchive returns the full published archive in id order.
func (s *Service) PressArchive() ([]model.PressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PressArchive()
}

// UpcomingPress returns releases still waiting on their moment.
func (s *Service) UpcomingPress() ([]model.QueuedPress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListQueuedPress()
}

// EventLog returns the most recent events, newest first.
func (s *Service) EventLog(limit int) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RecentEvents(limit)
}

// Roster returns every scholar currently in play.
func (s *Service) Roster() ([]*model.Scholar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.AllScholars()
}

// CurrentYear reports the in-fiction year.
func (s *Service) CurrentYear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tl, err := s.store.GetTimeline()
	if err != nil {
		return 0, err
	}
	return tl.CurrentYear, nil
}
