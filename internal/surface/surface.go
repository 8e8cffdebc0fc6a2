// Package surface defines the presentation collaborator boundary: the core
// hands it structured display payloads and never formats user-facing text
// itself. Rendering and layout belong to the surface implementation.
package surface

import (
	"context"

	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/tracker"
)

// recentLimit caps the per-role recent-play feed in the display payload.
const recentLimit = 5

// Surface delivers display payload updates for a scope.
type Surface interface {
	Update(ctx context.Context, scope string, payload Payload) error
}

// Payload is the structured display model for one session.
type Payload struct {
	SessionKey string     `json:"session_key"`
	SessionID  string     `json:"session_id"`
	Player1    PlayerView `json:"player1"`
	Player2    PlayerView `json:"player2"`
}

// PlayerView summarizes one participant for display.
type PlayerView struct {
	Name               string   `json:"name"`
	Kills              int      `json:"kills"`
	Played             int      `json:"played"`
	Remaining          int      `json:"remaining"`
	PlayedAttackers    int      `json:"played_attackers"`
	PlayedDefenders    int      `json:"played_defenders"`
	RemainingAttackers int      `json:"remaining_attackers"`
	RemainingDefenders int      `json:"remaining_defenders"`
	RecentAttackers    []string `json:"recent_attackers"`
	RecentDefenders    []string `json:"recent_defenders"`
}

// NewPayload builds the display payload for a session. The caller holds the
// session lock.
func NewPayload(sess *tracker.Session) Payload {
	return Payload{
		SessionKey: sess.Key,
		SessionID:  sess.ID,
		Player1:    newPlayerView(sess.Catalog(), sess.Participant(tracker.SlotP1)),
		Player2:    newPlayerView(sess.Catalog(), sess.Participant(tracker.SlotP2)),
	}
}

func newPlayerView(cat *catalog.Catalog, p *tracker.Participant) PlayerView {
	remAtt, remDef := p.RemainingCounts(cat)
	playedAtt, playedDef := p.PlayedCounts(cat)
	return PlayerView{
		Name:               p.Name(),
		Kills:              p.Kills(),
		Played:             p.PlayedCount(),
		Remaining:          cat.Size() - p.PlayedCount(),
		PlayedAttackers:    playedAtt,
		PlayedDefenders:    playedDef,
		RemainingAttackers: remAtt,
		RemainingDefenders: remDef,
		RecentAttackers:    p.RecentPlays(cat, catalog.RoleAttacker, recentLimit),
		RecentDefenders:    p.RecentPlays(cat, catalog.RoleDefender, recentLimit),
	}
}

// Noop discards every update. It backs tests and headless deployments.
type Noop struct{}

// Update implements Surface.
func (Noop) Update(context.Context, string, Payload) error { return nil }
