// Package config loads and validates the Gazette engine TOML configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings is the complete engine configuration. Every knob is an explicit
// field; unknown keys in the file are load-time errors.
type Settings struct {
	Reputation ReputationSettings          `toml:"reputation"`
	Wagers     map[string]ConfidenceWager  `toml:"confidence_wagers"`
	Thresholds map[string]int              `toml:"action_thresholds"`
	Influence  InfluenceSettings           `toml:"influence_caps"`
	Contract   ContractSettings            `toml:"contract"`
	Seasonal   SeasonalSettings            `toml:"seasonal_commitment"`
	Projects   ProjectSettings             `toml:"faction_project"`
	Investment InvestmentSettings          `toml:"faction_investment"`
	Endowment  EndowmentSettings           `toml:"archive_endowment"`
	Symposium  SymposiumSettings           `toml:"symposium"`
	Timeline   TimelineSettings            `toml:"timeline"`
	Roster     RosterSettings              `toml:"roster"`
	Enhancer   EnhancerSettings            `toml:"enhancer"`
	Game       GameSettings                `toml:"game"`
}

type ReputationSettings struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

// ConfidenceWager maps a confidence level to its reward and penalty.
type ConfidenceWager struct {
	Reward                      int  `toml:"reward"`
	Penalty                     int  `toml:"penalty"`
	TriggersRecruitmentCooldown bool `toml:"triggers_recruitment_cooldown"`
}

type InfluenceSettings struct {
	Base          int `toml:"base"`
	PerReputation int `toml:"per_reputation"`
}

type ContractSettings struct {
	UpkeepPerScholar     int `toml:"upkeep_per_scholar"`
	ReprisalThreshold    int `toml:"debt_reprisal_threshold"`
	ReprisalPenalty      int `toml:"debt_reprisal_penalty"`
	ReprisalCooldownDays int `toml:"debt_reprisal_cooldown_days"`
}

type SeasonalSettings struct {
	BaseCost             int     `toml:"base_cost"`
	DurationDays         int     `toml:"duration_days"`
	MinRelationship      float64 `toml:"min_relationship"`
	RelationshipWeight   float64 `toml:"relationship_weight"`
	ReprisalThreshold    int     `toml:"reprisal_threshold"`
	ReprisalPenalty      int     `toml:"reprisal_penalty"`
	ReprisalCooldownDays int     `toml:"reprisal_cooldown_days"`
}

type ProjectSettings struct {
	BaseProgressWeight float64 `toml:"base_progress_weight"`
	RelationshipWeight float64 `toml:"relationship_weight"`
	CompletionReward   int     `toml:"completion_reward"`
}

type InvestmentSettings struct {
	MinAmount    int     `toml:"min_amount"`
	FeelingStep  int     `toml:"feeling_step"`
	FeelingBonus float64 `toml:"feeling_bonus"`
}

type EndowmentSettings struct {
	MinAmount           int `toml:"min_amount"`
	ReputationThreshold int `toml:"reputation_threshold"`
	ReputationBonus     int `toml:"reputation_bonus"`
}

type SymposiumSettings struct {
	PledgeBase          int     `toml:"pledge_base"`
	PledgeEscalationCap int     `toml:"pledge_escalation_cap"`
	GraceMisses         int     `toml:"grace_misses"`
	GraceWindowDays     int     `toml:"grace_window_days"`
	FirstReminderHours  int     `toml:"first_reminder_hours"`
	EscalationHours     int     `toml:"escalation_hours"`
	MaxBacklog          int     `toml:"max_backlog"`
	MaxPerPlayer        int     `toml:"max_per_player"`
	ProposalExpiryDays  int     `toml:"proposal_expiry_days"`
	RecentWindow        int     `toml:"recent_window"`
	FreshBonus          float64 `toml:"scoring_fresh_bonus"`
	RepeatPenalty       float64 `toml:"scoring_repeat_penalty"`
	AgeWeight           float64 `toml:"scoring_age_weight"`
	MaxAgeDays          int     `toml:"scoring_max_age_days"`
	DebtThreshold       int     `toml:"debt_reprisal_threshold"`
	DebtPenalty         int     `toml:"debt_reprisal_penalty"`
	DebtCooldownDays    int     `toml:"debt_reprisal_cooldown_days"`
}

type TimelineSettings struct {
	StartYear   int `toml:"start_year"`
	DaysPerYear int `toml:"time_scale_days_per_year"`
}

type RosterSettings struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

type EnhancerSettings struct {
	PauseTimeoutSeconds int    `toml:"pause_timeout_seconds"`
	CallTimeoutSeconds  int    `toml:"call_timeout_seconds"`
	TonePack            string `toml:"tone_pack"`
}

type GameSettings struct {
	Seed   int64  `toml:"seed"`
	DBPath string `toml:"db_path"`
}

// Load reads a TOML settings file, applies defaults, and validates.
// Unknown keys are errors so misspelled knobs fail loudly at startup.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse decodes settings from TOML text.
func Parse(text string) (*Settings, error) {
	cfg := Defaults()
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown settings keys: %s", strings.Join(keys, ", "))
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating settings: %w", err)
	}
	return cfg, nil
}

// Defaults returns the stock configuration of a fresh game.
func Defaults() *Settings {
	return &Settings{
		Reputation: ReputationSettings{Min: -50, Max: 50},
		Wagers: map[string]ConfidenceWager{
			"suspect":         {Reward: 2, Penalty: 1},
			"certain":         {Reward: 5, Penalty: 7},
			"stake_my_career": {Reward: 15, Penalty: 25, TriggersRecruitmentCooldown: true},
		},
		Thresholds: map[string]int{
			"theory":                   -10,
			"expedition_think_tank":    -5,
			"expedition_field":         0,
			"expedition_great_project": 10,
			"recruitment":              -5,
			"conference":               0,
		},
		Influence: InfluenceSettings{Base: 10, PerReputation: 1},
		Contract: ContractSettings{
			UpkeepPerScholar:     1,
			ReprisalThreshold:    4,
			ReprisalPenalty:      2,
			ReprisalCooldownDays: 3,
		},
		Seasonal: SeasonalSettings{
			BaseCost:             4,
			DurationDays:         30,
			MinRelationship:      -2,
			RelationshipWeight:   0.1,
			ReprisalThreshold:    4,
			ReprisalPenalty:      2,
			ReprisalCooldownDays: 3,
		},
		Projects: ProjectSettings{
			BaseProgressWeight: 0.25,
			RelationshipWeight: 0.5,
			CompletionReward:   3,
		},
		Investment: InvestmentSettings{MinAmount: 1, FeelingStep: 2, FeelingBonus: 0.5},
		Endowment:  EndowmentSettings{MinAmount: 5, ReputationThreshold: 10, ReputationBonus: 1},
		Symposium: SymposiumSettings{
			PledgeBase:          2,
			PledgeEscalationCap: 4,
			GraceMisses:         1,
			GraceWindowDays:     28,
			FirstReminderHours:  24,
			EscalationHours:     48,
			MaxBacklog:          10,
			MaxPerPlayer:        2,
			ProposalExpiryDays:  14,
			RecentWindow:        3,
			FreshBonus:          1.5,
			RepeatPenalty:       0.75,
			AgeWeight:           1.0,
			MaxAgeDays:          14,
			DebtThreshold:       5,
			DebtPenalty:         2,
			DebtCooldownDays:    2,
		},
		Timeline: TimelineSettings{StartYear: 1766, DaysPerYear: 365},
		Roster:   RosterSettings{Min: 20, Max: 30},
		Enhancer: EnhancerSettings{
			PauseTimeoutSeconds: 600,
			CallTimeoutSeconds:  30,
			TonePack:            "",
		},
		Game: GameSettings{Seed: 42, DBPath: "data/gazette.db"},
	}
}

func validate(cfg *Settings) error {
	if cfg.Reputation.Min >= cfg.Reputation.Max {
		return fmt.Errorf("reputation bounds inverted: [%d, %d]", cfg.Reputation.Min, cfg.Reputation.Max)
	}
	for _, level := range []string{"suspect", "certain", "stake_my_career"} {
		if _, ok := cfg.Wagers[level]; !ok {
			return fmt.Errorf("missing confidence wager for %q", level)
		}
	}
	if cfg.Timeline.DaysPerYear <= 0 {
		return fmt.Errorf("time_scale_days_per_year must be positive, got %d", cfg.Timeline.DaysPerYear)
	}
	if cfg.Roster.Min <= 0 || cfg.Roster.Max < cfg.Roster.Min {
		return fmt.Errorf("roster bounds invalid: [%d, %d]", cfg.Roster.Min, cfg.Roster.Max)
	}
	if cfg.Symposium.MaxAgeDays <= 0 {
		return fmt.Errorf("symposium scoring_max_age_days must be positive")
	}
	return nil
}

// Threshold returns the reputation gate for an action, or the zero gate
// when the action has no configured threshold.
func (s *Settings) Threshold(action string) (int, bool) {
	v, ok := s.Thresholds[action]
	return v, ok
}

// Wager returns the reward/penalty pair for a confidence level.
func (s *Settings) Wager(confidence string) (ConfidenceWager, bool) {
	w, ok := s.Wagers[confidence]
	return w, ok
}
