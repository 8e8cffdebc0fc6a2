// Package tracker holds the per-session tracking domain: participants, the
// two-player session aggregate, mutation outcomes, and the process-wide
// session registry.
package tracker

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/duelboard/duelboard/internal/catalog"
)

// Slot identifies one of the two fixed participant positions in a session.
type Slot int

const (
	// SlotP1 is the first participant position.
	SlotP1 Slot = iota
	// SlotP2 is the second participant position.
	SlotP2
)

// String returns the canonical token for a slot.
func (s Slot) String() string {
	if s == SlotP2 {
		return "p2"
	}
	return "p1"
}

// Display references the live tracker message on the external surface.
type Display struct {
	ChannelID string
	MessageID string
}

// Session aggregates exactly two participants under one container scope.
//
// The mutex serializes every read-modify-write sequence for the session:
// callers hold it for the full mutate, display-refresh and snapshot-request
// span so two concurrent triggers never interleave their effects. Sessions
// for different scopes never contend.
type Session struct {
	mu sync.Mutex

	// Key is the opaque container-scope identifier the session is registered under.
	Key string
	// ID identifies this session instance across restarts.
	ID string
	// OwnerID references whoever started the session.
	OwnerID string

	p1  *Participant
	p2  *Participant
	cat *catalog.Catalog

	display *Display
}

// NewSession creates a session with two empty participants.
func NewSession(cat *catalog.Catalog, key, ownerID, name1, name2 string) *Session {
	return &Session{
		Key:     key,
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		p1:      NewParticipant(name1),
		p2:      NewParticipant(name2),
		cat:     cat,
	}
}

// RestoreInput carries the persisted fields needed to rebuild a session.
type RestoreInput struct {
	Key     string
	ID      string
	OwnerID string
	Display *Display
	P1      RestoreParticipantInput
	P2      RestoreParticipantInput
}

// RestoreParticipantInput carries the persisted fields for one participant.
type RestoreParticipantInput struct {
	Name    string
	Kills   int
	Played  []string
	History []string
}

// RestoreSession rebuilds a session from a decoded snapshot record.
func RestoreSession(cat *catalog.Catalog, in RestoreInput) *Session {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		Key:     in.Key,
		ID:      id,
		OwnerID: in.OwnerID,
		p1:      restoreParticipant(in.P1.Name, in.P1.Kills, in.P1.Played, in.P1.History),
		p2:      restoreParticipant(in.P2.Name, in.P2.Kills, in.P2.Played, in.P2.History),
		cat:     cat,
	}
	if in.Display != nil {
		d := *in.Display
		s.display = &d
	}
	return s
}

// Lock acquires the session mutex. Callers hold it for the full duration of a
// mutate-refresh-persist sequence.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session mutex.
func (s *Session) Unlock() { s.mu.Unlock() }

// Catalog returns the catalog the session validates plays against.
func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Participant returns the participant in a slot.
func (s *Session) Participant(slot Slot) *Participant {
	if slot == SlotP2 {
		return s.p2
	}
	return s.p1
}

// SetDisplay records the location of the live tracker message.
func (s *Session) SetDisplay(channelID, messageID string) {
	s.display = &Display{ChannelID: channelID, MessageID: messageID}
}

// DisplayLocation returns the live message location, if one has been set.
func (s *Session) DisplayLocation() (Display, bool) {
	if s.display == nil {
		return Display{}, false
	}
	return *s.display, true
}

// ResolveSlot matches a player token against the slot aliases first and then
// against either participant's display name, case-insensitively. The first
// match in that priority order wins.
func (s *Session) ResolveSlot(token string) (Slot, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "p1", "1", "player1":
		return SlotP1, true
	case "p2", "2", "player2":
		return SlotP2, true
	}
	if strings.EqualFold(strings.TrimSpace(token), s.p1.Name()) {
		return SlotP1, true
	}
	if strings.EqualFold(strings.TrimSpace(token), s.p2.Name()) {
		return SlotP2, true
	}
	return SlotP1, false
}

// ApplyPlay validates the operator against the catalog and records the play
// for the slot's participant. Callers hold the session lock.
func (s *Session) ApplyPlay(slot Slot, op string) Outcome {
	if !s.cat.Contains(op) {
		return OutcomeUnknownOperator
	}
	if !s.Participant(slot).RecordPlay(op) {
		return OutcomeAlreadyPlayed
	}
	return OutcomeRecorded
}

// AdjustKills applies a clamped kill delta to the slot's participant and
// returns the resulting count. Callers hold the session lock.
func (s *Session) AdjustKills(slot Slot, delta int) int {
	p := s.Participant(slot)
	p.AddKills(delta)
	return p.Kills()
}
