// Package service orchestrates session mutations: every trigger entry point
// locks the target session for the full mutate, display-refresh and
// snapshot-request sequence before returning.
package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/snapshot"
	"github.com/duelboard/duelboard/internal/surface"
	"github.com/duelboard/duelboard/internal/tracker"
)

var (
	// ErrNoSession indicates no session is registered for the scope.
	ErrNoSession = errors.New("no active session for scope")
	// ErrUnknownPlayer indicates the player token matched neither slot.
	ErrUnknownPlayer = errors.New("player token does not match a participant")
)

// maxChoices caps autocomplete candidate lists, matching the platform limit.
const maxChoices = 25

// Service owns the registry and the persistence/presentation collaborators.
type Service struct {
	cat       *catalog.Catalog
	registry  *tracker.Registry
	surface   surface.Surface
	snapshots *snapshot.Store
	tracer    trace.Tracer
}

// New creates a service over its collaborators.
func New(cat *catalog.Catalog, registry *tracker.Registry, surf surface.Surface, snapshots *snapshot.Store) *Service {
	return &Service{
		cat:       cat,
		registry:  registry,
		surface:   surf,
		snapshots: snapshots,
		tracer:    otel.Tracer("duelboard/service"),
	}
}

// StartSession creates a fresh two-player session for the scope, replacing
// any prior session unconditionally, and forces an initial snapshot.
func (s *Service) StartSession(ctx context.Context, scope, ownerID, player1, player2 string) *tracker.Session {
	ctx, span := s.tracer.Start(ctx, "service.start_session",
		trace.WithAttributes(attribute.String("session.scope", scope)))
	defer span.End()

	sess := tracker.NewSession(s.cat, scope, ownerID, player1, player2)
	s.registry.Put(sess)
	log.Printf("session started scope=%s session_id=%s player1=%s player2=%s", scope, sess.ID, player1, player2)

	sess.Lock()
	defer sess.Unlock()
	s.refresh(ctx, sess)
	s.snapshots.Request(ctx, sess, true)
	return sess
}

// ApplyPlay records an operator play for the resolved participant. The
// rejection kinds come back as outcomes, not errors; only a missing session
// or an unresolvable player token is an error.
func (s *Service) ApplyPlay(ctx context.Context, scope, playerToken, operator string) (tracker.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "service.apply_play",
		trace.WithAttributes(attribute.String("session.scope", scope), attribute.String("operator", operator)))
	defer span.End()

	sess, ok := s.registry.Get(scope)
	if !ok {
		return 0, ErrNoSession
	}

	sess.Lock()
	defer sess.Unlock()

	slot, ok := sess.ResolveSlot(playerToken)
	if !ok {
		return 0, ErrUnknownPlayer
	}

	outcome := sess.ApplyPlay(slot, operator)
	if outcome == tracker.OutcomeRecorded {
		s.refresh(ctx, sess)
		s.snapshots.Request(ctx, sess, false)
	}
	return outcome, nil
}

// AdjustKills applies a clamped kill delta and returns the resulting count.
func (s *Service) AdjustKills(ctx context.Context, scope, playerToken string, delta int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "service.adjust_kills",
		trace.WithAttributes(attribute.String("session.scope", scope), attribute.Int("delta", delta)))
	defer span.End()

	sess, ok := s.registry.Get(scope)
	if !ok {
		return 0, ErrNoSession
	}

	sess.Lock()
	defer sess.Unlock()

	slot, ok := sess.ResolveSlot(playerToken)
	if !ok {
		return 0, ErrUnknownPlayer
	}

	kills := sess.AdjustKills(slot, delta)
	s.refresh(ctx, sess)
	s.snapshots.Request(ctx, sess, false)
	return kills, nil
}

// BindDisplay records where the live tracker message lives on the surface.
func (s *Service) BindDisplay(ctx context.Context, scope, channelID, messageID string) error {
	sess, ok := s.registry.Get(scope)
	if !ok {
		return ErrNoSession
	}

	sess.Lock()
	defer sess.Unlock()
	sess.SetDisplay(channelID, messageID)
	s.refresh(ctx, sess)
	s.snapshots.Request(ctx, sess, false)
	return nil
}

// RemainingView lists a participant's unplayed operators per role.
type RemainingView struct {
	Player    string   `json:"player"`
	Attackers []string `json:"attackers"`
	Defenders []string `json:"defenders"`
}

// Remaining returns the unplayed operators for the resolved participant.
func (s *Service) Remaining(ctx context.Context, scope, playerToken string) (RemainingView, error) {
	sess, ok := s.registry.Get(scope)
	if !ok {
		return RemainingView{}, ErrNoSession
	}

	sess.Lock()
	defer sess.Unlock()

	slot, ok := sess.ResolveSlot(playerToken)
	if !ok {
		return RemainingView{}, ErrUnknownPlayer
	}

	p := sess.Participant(slot)
	return RemainingView{
		Player:    p.Name(),
		Attackers: p.Remaining(s.cat, catalog.RoleAttacker),
		Defenders: p.Remaining(s.cat, catalog.RoleDefender),
	}, nil
}

// PlayerDetail lists one participant's full played and remaining operators.
type PlayerDetail struct {
	Name               string   `json:"name"`
	PlayedAttackers    []string `json:"played_attackers"`
	PlayedDefenders    []string `json:"played_defenders"`
	RemainingAttackers []string `json:"remaining_attackers"`
	RemainingDefenders []string `json:"remaining_defenders"`
}

// OverviewView is the comprehensive session view behind the show trigger.
type OverviewView struct {
	Summary surface.Payload `json:"summary"`
	Details []PlayerDetail  `json:"details"`
}

// Overview refreshes the live display, forces a snapshot, and returns the
// full session view.
func (s *Service) Overview(ctx context.Context, scope string) (OverviewView, error) {
	ctx, span := s.tracer.Start(ctx, "service.overview",
		trace.WithAttributes(attribute.String("session.scope", scope)))
	defer span.End()

	sess, ok := s.registry.Get(scope)
	if !ok {
		return OverviewView{}, ErrNoSession
	}

	sess.Lock()
	defer sess.Unlock()

	s.refresh(ctx, sess)
	s.snapshots.Request(ctx, sess, true)

	view := OverviewView{Summary: surface.NewPayload(sess)}
	for _, slot := range []tracker.Slot{tracker.SlotP1, tracker.SlotP2} {
		p := sess.Participant(slot)
		detail := PlayerDetail{
			Name:               p.Name(),
			RemainingAttackers: p.Remaining(s.cat, catalog.RoleAttacker),
			RemainingDefenders: p.Remaining(s.cat, catalog.RoleDefender),
		}
		for _, op := range p.Played() {
			switch role, _ := s.cat.RoleOf(op); role {
			case catalog.RoleAttacker:
				detail.PlayedAttackers = append(detail.PlayedAttackers, op)
			case catalog.RoleDefender:
				detail.PlayedDefenders = append(detail.PlayedDefenders, op)
			}
		}
		view.Details = append(view.Details, detail)
	}
	return view, nil
}

// PlayerTokens returns the accepted player tokens for a scope, for
// autocomplete suggestions. Without a session only the slot tokens apply.
func (s *Service) PlayerTokens(scope string) []string {
	sess, ok := s.registry.Get(scope)
	if !ok {
		return []string{"p1", "p2"}
	}

	sess.Lock()
	defer sess.Unlock()
	return []string{
		sess.Participant(tracker.SlotP1).Name(),
		sess.Participant(tracker.SlotP2).Name(),
		"p1", "p2",
	}
}

// OperatorChoices returns remaining-operator candidates for the resolved
// participant, filtered by a case-insensitive substring query and capped at
// the platform's choice limit. An unresolvable token falls back to the full
// catalog so suggestions never go empty mid-typing.
func (s *Service) OperatorChoices(scope, playerToken, query string) []string {
	pool := append(s.cat.Operators(catalog.RoleAttacker), s.cat.Operators(catalog.RoleDefender)...)

	if sess, ok := s.registry.Get(scope); ok {
		sess.Lock()
		if slot, ok := sess.ResolveSlot(playerToken); ok {
			p := sess.Participant(slot)
			pool = append(p.Remaining(s.cat, catalog.RoleAttacker), p.Remaining(s.cat, catalog.RoleDefender)...)
		}
		sess.Unlock()
	}
	sort.Strings(pool)

	query = strings.ToLower(strings.TrimSpace(query))
	var out []string
	for _, op := range pool {
		if query != "" && !strings.Contains(strings.ToLower(op), query) {
			continue
		}
		out = append(out, op)
		if len(out) == maxChoices {
			break
		}
	}
	return out
}

// RestoreAll reconstructs sessions from storage into the registry.
func (s *Service) RestoreAll(ctx context.Context) {
	s.snapshots.RestoreAll(ctx, s.registry)
}

// refresh initiates a display update while the session lock is held. Surface
// failures are logged and swallowed; they never affect the mutation outcome.
func (s *Service) refresh(ctx context.Context, sess *tracker.Session) {
	if err := s.surface.Update(ctx, sess.Key, surface.NewPayload(sess)); err != nil {
		log.Printf("display refresh failed scope=%s err=%v", sess.Key, err)
	}
}
