package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/snapshot"
	"github.com/duelboard/duelboard/internal/storechan/memory"
	"github.com/duelboard/duelboard/internal/surface"
	"github.com/duelboard/duelboard/internal/tracker"
)

// recordingSurface captures every display update it receives.
type recordingSurface struct {
	updates []surface.Payload
	err     error
}

func (r *recordingSurface) Update(_ context.Context, _ string, payload surface.Payload) error {
	r.updates = append(r.updates, payload)
	return r.err
}

type fixture struct {
	svc     *Service
	surface *recordingSurface
	channel *memory.Channel
	clock   *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	surf := &recordingSurface{}
	channel := memory.New()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := snapshot.NewStore(channel, cat, snapshot.WithClock(clock.Now))
	return &fixture{
		svc:     New(cat, tracker.NewRegistry(), surf, store),
		surface: surf,
		channel: channel,
		clock:   clock,
	}
}

func TestStartSessionForcesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess := f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	if sess.Key != "scope-1" {
		t.Fatalf("session key = %q, want scope-1", sess.Key)
	}
	if len(f.surface.updates) != 1 {
		t.Fatalf("display updates = %d, want 1", len(f.surface.updates))
	}

	names, err := f.channel.List(ctx, "scope-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("snapshot records = %d, want 1", len(names))
	}
}

func TestStartSessionReplacesPriorSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	if _, err := f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace"); err != nil {
		t.Fatalf("apply play: %v", err)
	}

	second := f.svc.StartSession(ctx, "scope-1", "owner-2", "Cleo", "Dian")
	if second.ID == first.ID {
		t.Fatal("restart reused the prior session")
	}

	// The replacement starts empty: the same play is accepted again.
	outcome, err := f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	if err != nil {
		t.Fatalf("apply play after restart: %v", err)
	}
	if outcome != tracker.OutcomeRecorded {
		t.Fatalf("outcome = %v, want recorded", outcome)
	}
}

func TestApplyPlayScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")

	outcome, err := f.svc.ApplyPlay(ctx, "scope-1", "Ama", "Ace")
	if err != nil {
		t.Fatalf("apply play: %v", err)
	}
	if outcome != tracker.OutcomeRecorded {
		t.Fatalf("first outcome = %v, want recorded", outcome)
	}

	outcome, err = f.svc.ApplyPlay(ctx, "scope-1", "Ama", "Ace")
	if err != nil {
		t.Fatalf("apply play: %v", err)
	}
	if outcome != tracker.OutcomeAlreadyPlayed {
		t.Fatalf("replay outcome = %v, want already_played", outcome)
	}

	// Case-insensitive display-name resolution.
	outcome, err = f.svc.ApplyPlay(ctx, "scope-1", "beto", "Mute")
	if err != nil {
		t.Fatalf("apply play: %v", err)
	}
	if outcome != tracker.OutcomeRecorded {
		t.Fatalf("beto outcome = %v, want recorded", outcome)
	}

	if _, err := f.svc.ApplyPlay(ctx, "scope-1", "p9", "Ace"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("unknown token err = %v, want ErrUnknownPlayer", err)
	}

	outcome, err = f.svc.ApplyPlay(ctx, "scope-1", "p1", "NotAnOperator")
	if err != nil {
		t.Fatalf("apply play: %v", err)
	}
	if outcome != tracker.OutcomeUnknownOperator {
		t.Fatalf("unknown operator outcome = %v, want unknown_operator", outcome)
	}
}

func TestApplyPlayWithoutSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.ApplyPlay(context.Background(), "scope-9", "p1", "Ace"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestApplyPlayRefreshesOnlyOnRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	start := len(f.surface.updates)

	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	if got := len(f.surface.updates); got != start+1 {
		t.Fatalf("updates after recorded play = %d, want %d", got, start+1)
	}

	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	f.svc.ApplyPlay(ctx, "scope-1", "p1", "NotAnOperator")
	if got := len(f.surface.updates); got != start+1 {
		t.Fatalf("updates after rejected plays = %d, want %d", got, start+1)
	}
}

func TestAdjustKills(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")

	kills, err := f.svc.AdjustKills(ctx, "scope-1", "p2", 3)
	if err != nil {
		t.Fatalf("adjust kills: %v", err)
	}
	if kills != 3 {
		t.Fatalf("kills = %d, want 3", kills)
	}

	kills, err = f.svc.AdjustKills(ctx, "scope-1", "p2", -10)
	if err != nil {
		t.Fatalf("adjust kills: %v", err)
	}
	if kills != 0 {
		t.Fatalf("kills = %d, want 0 (clamped)", kills)
	}
}

func TestSurfaceFailureDoesNotAffectOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	f.surface.err = errors.New("surface offline")

	outcome, err := f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	if err != nil {
		t.Fatalf("apply play: %v", err)
	}
	if outcome != tracker.OutcomeRecorded {
		t.Fatalf("outcome = %v, want recorded", outcome)
	}
}

func TestRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")

	view, err := f.svc.Remaining(ctx, "scope-1", "ama")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if view.Player != "Ama" {
		t.Fatalf("player = %q, want Ama", view.Player)
	}
	for _, op := range view.Attackers {
		if op == "Ace" {
			t.Fatal("remaining attackers still contain Ace")
		}
	}
	if len(view.Attackers)+len(view.Defenders) != 75 {
		t.Fatalf("remaining total = %d, want 75", len(view.Attackers)+len(view.Defenders))
	}
}

func TestOverviewForcesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	f.clock.Advance(time.Second)

	before, _ := f.channel.List(ctx, "scope-1", 0)
	view, err := f.svc.Overview(ctx, "scope-1")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	after, _ := f.channel.List(ctx, "scope-1", 0)
	if len(after) != len(before)+1 {
		t.Fatalf("records = %d, want %d (forced snapshot)", len(after), len(before)+1)
	}

	if len(view.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(view.Details))
	}
	if got := view.Details[0].PlayedAttackers; len(got) != 1 || got[0] != "Ace" {
		t.Fatalf("p1 played attackers = %v, want [Ace]", got)
	}
	if view.Summary.Player1.Kills != 0 || view.Summary.Player1.Played != 1 {
		t.Fatalf("summary p1 = %+v, want played 1", view.Summary.Player1)
	}
}

func TestBindDisplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	before := len(f.surface.updates)

	if err := f.svc.BindDisplay(ctx, "scope-1", "chan-1", "msg-1"); err != nil {
		t.Fatalf("bind display: %v", err)
	}
	loc, ok := sess.DisplayLocation()
	if !ok || loc.ChannelID != "chan-1" || loc.MessageID != "msg-1" {
		t.Fatalf("display = %+v %v, want chan-1/msg-1 true", loc, ok)
	}
	// Binding changes observable state, so it refreshes the display too.
	if got := len(f.surface.updates); got != before+1 {
		t.Fatalf("updates after bind = %d, want %d", got, before+1)
	}

	if err := f.svc.BindDisplay(ctx, "scope-9", "c", "m"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("bind on missing scope = %v, want ErrNoSession", err)
	}
}

func TestPlayerTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tokens := f.svc.PlayerTokens("scope-1")
	if len(tokens) != 2 {
		t.Fatalf("tokens without session = %v, want slot tokens only", tokens)
	}

	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	tokens = f.svc.PlayerTokens("scope-1")
	if len(tokens) != 4 || tokens[0] != "Ama" || tokens[1] != "Beto" {
		t.Fatalf("tokens = %v, want [Ama Beto p1 p2]", tokens)
	}
}

func TestOperatorChoices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")

	choices := f.svc.OperatorChoices("scope-1", "p1", "")
	if len(choices) != maxChoices {
		t.Fatalf("choices = %d, want %d", len(choices), maxChoices)
	}
	for _, op := range choices {
		if op == "Ace" {
			t.Fatal("choices still contain the played operator")
		}
	}

	choices = f.svc.OperatorChoices("scope-1", "p1", "jä")
	if len(choices) != 1 || choices[0] != "Jäger" {
		t.Fatalf("filtered choices = %v, want [Jäger]", choices)
	}

	// Unresolvable token falls back to the full catalog.
	choices = f.svc.OperatorChoices("scope-1", "p9", "ace")
	found := false
	for _, op := range choices {
		if op == "Ace" {
			found = true
		}
	}
	if !found {
		t.Fatalf("fallback choices = %v, want to include Ace", choices)
	}
}

func TestRestoreAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.StartSession(ctx, "scope-1", "owner-1", "Ama", "Beto")
	f.svc.ApplyPlay(ctx, "scope-1", "p1", "Ace")
	f.svc.AdjustKills(ctx, "scope-1", "p1", 4)
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Overview(ctx, "scope-1"); err != nil {
		t.Fatalf("overview: %v", err)
	}

	// A fresh service over the same channel simulates a process restart.
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	restored := New(cat, tracker.NewRegistry(), &recordingSurface{}, snapshot.NewStore(f.channel, cat))
	restored.RestoreAll(ctx)

	view, err := restored.Remaining(ctx, "scope-1", "Ama")
	if err != nil {
		t.Fatalf("remaining after restore: %v", err)
	}
	if len(view.Attackers)+len(view.Defenders) != 75 {
		t.Fatalf("remaining after restore = %d, want 75", len(view.Attackers)+len(view.Defenders))
	}

	kills, err := restored.AdjustKills(ctx, "scope-1", "p1", 0)
	if err != nil {
		t.Fatalf("adjust kills after restore: %v", err)
	}
	if kills != 4 {
		t.Fatalf("restored kills = %d, want 4", kills)
	}
}
