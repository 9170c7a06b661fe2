// Package model defines the game's domain entities: players, scholars,
// theories, expeditions, offers, orders, symposia, and the economy rows
// that hang off them. Entities are plain structs with json tags; the
// store persists them and the service enforces the cross-entity rules.
package model

// ReputationBounds clamps player reputation after every mutation.
type ReputationBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Clamp returns v limited to the bounds.
func (b ReputationBounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Player is a participant in the Great Work.
type Player struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Reputation  int            `json:"reputation"`
	Influence   map[string]int `json:"influence"` // faction → amount, never negative
	Cooldowns   map[string]int `json:"cooldowns"` // name → digest ticks remaining
}

// NewPlayer creates a player with empty influence and cooldown maps.
func NewPlayer(id, displayName string) *Player {
	return &Player{
		ID:          id,
		DisplayName: displayName,
		Influence:   make(map[string]int),
		Cooldowns:   make(map[string]int),
	}
}

// InfluenceCap is the per-faction ceiling derived from reputation.
func (p *Player) InfluenceCap(base, perReputation int) int {
	cap := base + perReputation*p.Reputation
	if cap < 0 {
		return 0
	}
	return cap
}

// AdjustInfluence adds delta to the faction's influence, clamping to
// [0, cap]. Returns the amount actually applied.
func (p *Player) AdjustInfluence(faction string, delta, cap int) int {
	if p.Influence == nil {
		p.Influence = make(map[string]int)
	}
	cur := p.Influence[faction]
	next := cur + delta
	if next < 0 {
		next = 0
	}
	if next > cap {
		next = cap
	}
	p.Influence[faction] = next
	return next - cur
}

// SpendInfluence deducts amount from the faction if the player holds
// enough. Returns false without mutating when the holding is short.
func (p *Player) SpendInfluence(faction string, amount int) bool {
	if amount < 0 {
		return false
	}
	if p.Influence[faction] < amount {
		return false
	}
	p.Influence[faction] -= amount
	return true
}

// TickCooldowns decrements every cooldown by one and removes entries
// that reach zero. Runs once per digest.
func (p *Player) TickCooldowns() {
	for name, ticks := range p.Cooldowns {
		ticks--
		if ticks <= 0 {
			delete(p.Cooldowns, name)
		} else {
			p.Cooldowns[name] = ticks
		}
	}
}

// DominantFaction returns the faction with the largest positive holding,
// breaking ties alphabetically. Empty string when the player holds nothing.
func (p *Player) DominantFaction() string {
	best := ""
	bestAmount := 0
	for faction, amount := range p.Influence {
		if amount <= 0 {
			continue
		}
		if amount > bestAmount || (amount == bestAmount && (best == "" || faction < best)) {
			best = faction
			bestAmount = amount
		}
	}
	return best
}
