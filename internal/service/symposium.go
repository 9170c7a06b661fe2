package service

import (
	"fmt"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
	"github.com/tachyon-beep/jubilant-fortnight/internal/press"
	"github.com/tachyon-beep/jubilant-fortnight/internal/rng"
)

// symposiumOptions are the three positions every topic is voted on.
var symposiumOptions = []string{"In favour", "Against", "Table the question"}

// houseTopics cover symposia started with an empty proposal backlog.
var houseTopics = []struct{ Topic, Description string }{
	{"On the ethics of sponsored findings", "Whether a result can be trusted when its funding could not be."},
	{"The proper custody of field notes", "Who owns an observation: the observer, the patron, or the archive."},
	{"Priority disputes and the gentleman's agreement", "Whether first-to-publish should remain first-in-honour."},
}

// SubmitSymposiumProposal files a topic for future symposia, subject to
// the global and per-player backlog caps.
func (s *Service) SubmitSymposiumProposal(playerID, topic, description string) (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	p, err := s.requirePlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if topic == "" {
		return model.PressRelease{}, Errorf(KindInvalidInput, "empty topic")
	}
	backlog, err := s.store.PendingProposals()
	if err != nil {
		return model.PressRelease{}, err
	}
	if len(backlog) >= s.cfg.Symposium.MaxBacklog {
		return model.PressRelease{}, Errorf(KindInvalidInput, "proposal backlog is full (%d)", s.cfg.Symposium.MaxBacklog)
	}
	mine, err := s.store.CountPendingProposalsByPlayer(playerID)
	if err != nil {
		return model.PressRelease{}, err
	}
	if mine >= s.cfg.Symposium.MaxPerPlayer {
		return model.PressRelease{}, Errorf(KindInvalidInput, "player %s already has %d pending proposals", playerID, mine)
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		proposal, err := s.store.SubmitProposal(model.SymposiumProposal{
			Player:      playerID,
			Topic:       topic,
			Description: description,
			CreatedAt:   now,
			ExpireAt:    now.AddDate(0, 0, s.cfg.Symposium.ProposalExpiryDays),
			Status:      model.ProposalPending,
		})
		if err != nil {
			return err
		}
		if _, err := s.store.AppendEvent(now, "symposium_proposal_submitted", map[string]any{
			"proposal_id": proposal.ID,
			"player":      playerID,
			"topic":       topic,
		}); err != nil {
			return err
		}
		rel, err = s.publish(now, press.SymposiumProposalNotice(p.DisplayName, topic))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	return rel, nil
}

// StartSymposium opens voting on the highest-scoring proposal, or a
// house topic when the backlog is empty. Pledges are taken from every
// player and reminders scheduled.
func (s *Service) StartSymposium() (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	active, err := s.store.ActiveTopic()
	if err != nil {
		return model.PressRelease{}, err
	}
	if active != nil {
		return model.PressRelease{}, Errorf(KindInvalidInput, "a symposium is already in progress: %s", active.Topic)
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		topicText, description, err := s.pickTopic(now)
		if err != nil {
			return err
		}
		topic, err := s.store.CreateTopic(model.SymposiumTopic{
			Date:        now,
			Topic:       topicText,
			Description: description,
			Status:      model.TopicVoting,
		})
		if err != nil {
			return err
		}

		players, err := s.store.AllPlayers()
		if err != nil {
			return err
		}
		for _, p := range players {
			amount, faction, err := s.pledgeTerms(p)
			if err != nil {
				return err
			}
			if _, err := s.store.CreatePledge(model.SymposiumPledge{
				TopicID: topic.ID,
				Player:  p.ID,
				Amount:  amount,
				Faction: faction,
				Status:  model.PledgePending,
			}); err != nil {
				return err
			}
			first := time.Duration(s.cfg.Symposium.FirstReminderHours) * time.Hour
			escalation := time.Duration(s.cfg.Symposium.EscalationHours) * time.Hour
			if err := s.schedule(now, model.OrderSymposiumVoteReminder, p.ID, p.ID, map[string]any{
				"topic_id": topic.ID, "tier": "first",
			}, first); err != nil {
				return err
			}
			if err := s.schedule(now, model.OrderSymposiumVoteReminder, p.ID, p.ID, map[string]any{
				"topic_id": topic.ID, "tier": "escalation",
			}, escalation); err != nil {
				return err
			}
		}

		if _, err := s.store.AppendEvent(now, "symposium_started", map[string]any{
			"topic_id": topic.ID,
			"topic":    topicText,
			"players":  len(players),
		}); err != nil {
			return err
		}
		rel, err = s.publish(now, press.SymposiumAnnouncement(press.SymposiumCtx{
			Topic:       topicText,
			Description: description,
			Options:     symposiumOptions,
			Pledge:      s.cfg.Symposium.PledgeBase,
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("symposia.started", 1)
	return rel, nil
}

// pickTopic selects the highest-scoring pending proposal, marking it
// selected, or draws a house topic when none are pending.
func (s *Service) pickTopic(now time.Time) (string, string, error) {
	proposals, err := s.store.PendingProposals()
	if err != nil {
		return "", "", err
	}
	if len(proposals) == 0 {
		house := rng.Choice(s.src, houseTopics)
		return house.Topic, house.Description, nil
	}
	recent, err := s.store.RecentSelectedProposers(s.cfg.Symposium.RecentWindow)
	if err != nil {
		return "", "", err
	}
	recentSet := make(map[string]bool, len(recent))
	for _, player := range recent {
		recentSet[player] = true
	}

	best := proposals[0]
	bestScore := s.proposalScore(now, proposals[0], recentSet)
	for _, prop := range proposals[1:] {
		score := s.proposalScore(now, prop, recentSet)
		// Ties keep the earliest submission, which sorts first.
		if score > bestScore {
			best, bestScore = prop, score
		}
	}
	if err := s.store.UpdateProposalStatus(best.ID, model.ProposalSelected); err != nil {
		return "", "", err
	}
	return best.Topic, best.Description, nil
}

// proposalScore ages a proposal linearly toward max_age_days and
// rewards players absent from the recent-selection window.
func (s *Service) proposalScore(now time.Time, prop model.SymposiumProposal, recent map[string]bool) float64 {
	ageDays := now.Sub(prop.CreatedAt).Hours() / 24
	maxAge := float64(s.cfg.Symposium.MaxAgeDays)
	ageFrac := ageDays / maxAge
	if ageFrac > 1 {
		ageFrac = 1
	}
	score := s.cfg.Symposium.AgeWeight * ageFrac
	if recent[prop.Player] {
		score -= s.cfg.Symposium.RepeatPenalty
	} else {
		score += s.cfg.Symposium.FreshBonus
	}
	return score
}

// pledgeTerms computes a player's stake for the round: the base amount
// escalated by their miss streak and standing symposium debt, pledged
// against their dominant faction.
func (s *Service) pledgeTerms(p *model.Player) (int, string, error) {
	part, err := s.store.Participation(p.ID)
	if err != nil {
		return 0, "", err
	}
	amount := s.cfg.Symposium.PledgeBase
	escalation := part.MissStreak
	if escalation > s.cfg.Symposium.PledgeEscalationCap {
		escalation = s.cfg.Symposium.PledgeEscalationCap
	}
	amount += escalation

	debts, err := s.store.DebtsByPlayer(p.ID, model.DebtSymposium)
	if err != nil {
		return 0, "", err
	}
	if len(debts) > 0 {
		amount += s.cfg.Symposium.DebtPenalty
	}

	faction := p.DominantFaction()
	if faction == "" {
		faction = "academia"
	}
	return amount, faction, nil
}

// VoteSymposium records a player's position, fulfils their pledge, and
// clears their scheduled reminders.
func (s *Service) VoteSymposium(playerID string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return err
	}
	if _, err := s.requirePlayer(playerID); err != nil {
		return err
	}
	if option < 1 || option > len(symposiumOptions) {
		return Errorf(KindInvalidInput, "vote option %d out of range", option)
	}
	topic, err := s.store.ActiveTopic()
	if err != nil {
		return err
	}
	if topic == nil {
		return Errorf(KindNotFound, "no symposium in progress")
	}

	now := s.clock()
	if err := s.store.InTx(func() error {
		if err := s.store.RecordVote(model.SymposiumVote{
			TopicID: topic.ID,
			Player:  playerID,
			Option:  option,
			VotedAt: now,
		}); err != nil {
			return err
		}

		part, err := s.store.Participation(playerID)
		if err != nil {
			return err
		}
		part.MissStreak = 0
		part.LastVotedAt = &now
		if err := s.store.SaveParticipation(part); err != nil {
			return err
		}

		pledges, err := s.store.PledgesForTopic(topic.ID)
		if err != nil {
			return err
		}
		for _, pledge := range pledges {
			if pledge.Player == playerID && pledge.Status == model.PledgePending {
				if err := s.store.UpdatePledgeStatus(pledge.ID, model.PledgeFulfilled, now); err != nil {
					return err
				}
			}
		}
		if _, err := s.store.CancelPendingByType(model.OrderSymposiumVoteReminder, playerID, "voted", now); err != nil {
			return err
		}
		_, err = s.store.AppendEvent(now, "symposium_vote", map[string]any{
			"topic_id": topic.ID,
			"player":   playerID,
			"option":   option,
		})
		return err
	}); err != nil {
		return err
	}
	s.sink.Count("symposium.votes", 1)
	return nil
}

// ResolveSymposium closes voting: the winning option is stamped, and
// every non-voter's pledge is waived (grace permitting), forfeited, or
// converted to debt.
func (s *Service) ResolveSymposium() (model.PressRelease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guardPaused(); err != nil {
		return model.PressRelease{}, err
	}
	topic, err := s.store.ActiveTopic()
	if err != nil {
		return model.PressRelease{}, err
	}
	if topic == nil {
		return model.PressRelease{}, Errorf(KindNotFound, "no symposium in progress")
	}

	now := s.clock()
	var rel model.PressRelease
	if err := s.store.InTx(func() error {
		votes, err := s.store.VotesForTopic(topic.ID)
		if err != nil {
			return err
		}
		tally := map[int]int{}
		voted := map[string]bool{}
		for _, v := range votes {
			tally[v.Option]++
			voted[v.Player] = true
		}
		winner := 1
		for option := 2; option <= len(symposiumOptions); option++ {
			if tally[option] > tally[winner] {
				winner = option
			}
		}
		if err := s.store.ResolveTopic(topic.ID, winner); err != nil {
			return err
		}

		pledges, err := s.store.PledgesForTopic(topic.ID)
		if err != nil {
			return err
		}
		for _, pledge := range pledges {
			if voted[pledge.Player] || pledge.Status != model.PledgePending {
				continue
			}
			if err := s.settleMissedPledge(now, pledge); err != nil {
				return err
			}
		}

		// The selected proposal, if any, is now resolved.
		if _, err := s.store.AppendEvent(now, "symposium_resolved", map[string]any{
			"topic_id": topic.ID,
			"winner":   winner,
			"votes":    len(votes),
		}); err != nil {
			return err
		}
		rel, err = s.publish(now, press.SymposiumResolution(press.SymposiumCtx{
			Topic:   topic.Topic,
			Options: symposiumOptions,
			Winner:  symposiumOptions[winner-1],
			Tally:   tally,
		}))
		return err
	}); err != nil {
		return model.PressRelease{}, err
	}
	s.sink.Count("symposia.resolved", 1)
	return rel, nil
}

// settleMissedPledge applies the grace-then-forfeit ladder to one
// non-voter's pledge.
func (s *Service) settleMissedPledge(now time.Time, pledge model.SymposiumPledge) error {
	part, err := s.store.Participation(pledge.Player)
	if err != nil {
		return err
	}
	part.MissStreak++

	// The grace window resets after grace_window_days of quiet.
	windowLen := time.Duration(s.cfg.Symposium.GraceWindowDays) * 24 * time.Hour
	if part.GraceWindowStart == nil || now.Sub(*part.GraceWindowStart) > windowLen {
		start := now
		part.GraceWindowStart = &start
		part.GraceMissConsumed = 0
	}

	if part.GraceMissConsumed < s.cfg.Symposium.GraceMisses {
		part.GraceMissConsumed++
		if err := s.store.SaveParticipation(part); err != nil {
			return err
		}
		return s.store.UpdatePledgeStatus(pledge.ID, model.PledgeWaived, now)
	}

	p, err := s.requirePlayer(pledge.Player)
	if err != nil {
		return err
	}
	have := p.Influence[pledge.Faction]
	paid := pledge.Amount
	if paid > have {
		paid = have
	}
	p.SpendInfluence(pledge.Faction, paid)
	shortfall := pledge.Amount - paid

	status := model.PledgeForfeited
	if shortfall > 0 {
		status = model.PledgeDebt
		if err := s.store.AddDebt(now, pledge.Player, pledge.Faction, model.DebtSymposium, shortfall); err != nil {
			return err
		}
	}
	if err := s.store.UpsertPlayer(p); err != nil {
		return err
	}
	if err := s.store.SaveParticipation(part); err != nil {
		return err
	}
	return s.store.UpdatePledgeStatus(pledge.ID, status, now)
}

// handleSymposiumVoteReminder nudges a player who has not voted. The
// escalation tier names the stakes.
func (s *Service) handleSymposiumVoteReminder(now time.Time, order *model.Order) error {
	topic, err := s.store.ActiveTopic()
	if err != nil {
		return err
	}
	if topic == nil {
		return nil
	}
	votes, err := s.store.VotesForTopic(topic.ID)
	if err != nil {
		return err
	}
	for _, v := range votes {
		if v.Player == order.SubjectID {
			return nil
		}
	}

	tier, _ := order.Payload["tier"].(string)
	name := s.displayName(order.SubjectID)
	var rel model.PressRelease
	if tier == "escalation" {
		part, err := s.store.Participation(order.SubjectID)
		if err != nil {
			return err
		}
		graceLeft := s.cfg.Symposium.GraceMisses - part.GraceMissConsumed
		if graceLeft < 0 {
			graceLeft = 0
		}
		rel = model.PressRelease{
			Type:     press.TypeSymposiumReminder,
			Headline: fmt.Sprintf("Final Notice: %s", name),
			Body: fmt.Sprintf("%s has still not voted on %q. The pledge will be collected. Grace remaining: %d.",
				name, topic.Topic, graceLeft),
			Metadata: map[string]any{"player": order.SubjectID, "tier": tier, "grace_remaining": graceLeft},
		}
	} else {
		rel = press.SymposiumReminder(name, topic.Topic)
		rel.WithMeta("tier", "first")
	}
	if _, err := s.publish(now, rel); err != nil {
		return err
	}
	_, err = s.store.AppendEvent(now, "symposium_vote_reminder", map[string]any{
		"player": order.SubjectID,
		"tier":   tier,
	})
	return err
}

// expireProposals retires proposals past their expiry and flags them
// for the admins.
func (s *Service) expireProposals(now time.Time) error {
	proposals, err := s.store.PendingProposals()
	if err != nil {
		return err
	}
	for _, prop := range proposals {
		if now.Before(prop.ExpireAt) {
			continue
		}
		if err := s.store.UpdateProposalStatus(prop.ID, model.ProposalExpired); err != nil {
			return err
		}
		s.log.Info("symposium proposal expired", "proposal_id", prop.ID, "player", prop.Player)
		s.sink.Count("symposium.proposals_expired", 1)
	}
	return nil
}
