package tracker

import (
	"sort"

	"github.com/duelboard/duelboard/internal/catalog"
)

// Participant holds one player's mutable tracking record: the kill counter,
// the set of played operators, and the chronological play history.
//
// The played set and history stay in lockstep: an operator appears in the
// history at most once, and only when it is in the played set. Replays are
// rejected, not recorded.
type Participant struct {
	name    string
	kills   int
	played  map[string]struct{}
	history []string
}

// NewParticipant creates an empty participant record.
func NewParticipant(name string) *Participant {
	return &Participant{
		name:   name,
		played: make(map[string]struct{}),
	}
}

// restoreParticipant rebuilds a participant from persisted fields. The played
// set is derived as the union of the recorded set and the history so that an
// anomalous record cannot desync the two.
func restoreParticipant(name string, kills int, played, history []string) *Participant {
	p := NewParticipant(name)
	if kills > 0 {
		p.kills = kills
	}
	p.history = append(p.history, history...)
	for _, op := range history {
		p.played[op] = struct{}{}
	}
	for _, op := range played {
		p.played[op] = struct{}{}
	}
	return p
}

// Name returns the participant's display name.
func (p *Participant) Name() string { return p.name }

// Kills returns the current kill count.
func (p *Participant) Kills() int { return p.kills }

// RecordPlay marks an operator as played. It returns false and leaves state
// unchanged when the operator was already played.
func (p *Participant) RecordPlay(op string) bool {
	if _, ok := p.played[op]; ok {
		return false
	}
	p.played[op] = struct{}{}
	p.history = append(p.history, op)
	return true
}

// AddKills adjusts the kill counter by delta, clamping at zero.
func (p *Participant) AddKills(delta int) {
	p.kills += delta
	if p.kills < 0 {
		p.kills = 0
	}
}

// HasPlayed reports whether the participant already played an operator.
func (p *Participant) HasPlayed(op string) bool {
	_, ok := p.played[op]
	return ok
}

// PlayedCount returns how many operators the participant has played.
func (p *Participant) PlayedCount() int { return len(p.played) }

// Played returns the played operators sorted by name.
func (p *Participant) Played() []string {
	out := make([]string, 0, len(p.played))
	for op := range p.played {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// History returns a copy of the chronological play history, oldest first.
func (p *Participant) History() []string {
	return append([]string(nil), p.history...)
}

// Remaining returns the unplayed operators for one role, sorted by name.
func (p *Participant) Remaining(cat *catalog.Catalog, role catalog.Role) []string {
	var out []string
	for _, op := range cat.Operators(role) {
		if _, ok := p.played[op]; !ok {
			out = append(out, op)
		}
	}
	sort.Strings(out)
	return out
}

// RemainingCounts returns the unplayed operator counts per role.
func (p *Participant) RemainingCounts(cat *catalog.Catalog) (attackers, defenders int) {
	for op := range p.played {
		switch role, _ := cat.RoleOf(op); role {
		case catalog.RoleAttacker:
			attackers++
		case catalog.RoleDefender:
			defenders++
		}
	}
	return cat.RoleSize(catalog.RoleAttacker) - attackers, cat.RoleSize(catalog.RoleDefender) - defenders
}

// PlayedCounts returns the played operator counts per role.
func (p *Participant) PlayedCounts(cat *catalog.Catalog) (attackers, defenders int) {
	remAtt, remDef := p.RemainingCounts(cat)
	return cat.RoleSize(catalog.RoleAttacker) - remAtt, cat.RoleSize(catalog.RoleDefender) - remDef
}

// RecentPlays walks the history newest-first and returns up to limit distinct
// operators belonging to role. The distinctness guard keeps the view stable
// even if a restored history carries duplicates.
func (p *Participant) RecentPlays(cat *catalog.Catalog, role catalog.Role, limit int) []string {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for i := len(p.history) - 1; i >= 0 && len(out) < limit; i-- {
		op := p.history[i]
		if r, ok := cat.RoleOf(op); !ok || r != role {
			continue
		}
		if _, ok := seen[op]; ok {
			continue
		}
		seen[op] = struct{}{}
		out = append(out, op)
	}
	return out
}
