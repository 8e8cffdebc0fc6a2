package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/tracker"
)

var (
	// ErrUnsupportedVersion indicates a record with an unrecognized schema version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot schema version")
	// ErrMalformedPayload indicates a record missing required fields or of the wrong shape.
	ErrMalformedPayload = errors.New("malformed snapshot payload")
)

// Encode captures a session as a record. The caller holds the session lock.
func Encode(s *tracker.Session) Record {
	rec := Record{
		SchemaVersion: SchemaVersion,
		SessionKey:    s.Key,
		SessionID:     s.ID,
		OwnerID:       s.OwnerID,
		Player1:       encodePlayer(s.Participant(tracker.SlotP1)),
		Player2:       encodePlayer(s.Participant(tracker.SlotP2)),
	}
	if loc, ok := s.DisplayLocation(); ok {
		rec.Display = &DisplayRef{ChannelID: loc.ChannelID, MessageID: loc.MessageID}
	}
	return rec
}

func encodePlayer(p *tracker.Participant) *Player {
	return &Player{
		Name:    p.Name(),
		Kills:   p.Kills(),
		Played:  p.Played(),
		History: p.History(),
	}
}

// Decode reconstructs a session from serialized record bytes. It fails with
// ErrUnsupportedVersion or ErrMalformedPayload and never produces a partial
// session: either the full state decodes or nothing is returned.
func Decode(data []byte, cat *catalog.Catalog) (*tracker.Session, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if probe.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.SchemaVersion)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if rec.SessionKey == "" {
		return nil, fmt.Errorf("%w: missing session_key", ErrMalformedPayload)
	}
	if rec.Player1 == nil || rec.Player2 == nil {
		return nil, fmt.Errorf("%w: missing player records", ErrMalformedPayload)
	}
	if rec.Player1.Name == "" || rec.Player2.Name == "" {
		return nil, fmt.Errorf("%w: missing player names", ErrMalformedPayload)
	}

	in := tracker.RestoreInput{
		Key:     rec.SessionKey,
		ID:      rec.SessionID,
		OwnerID: rec.OwnerID,
		P1:      restorePlayer(rec.Player1),
		P2:      restorePlayer(rec.Player2),
	}
	if rec.Display != nil {
		in.Display = &tracker.Display{ChannelID: rec.Display.ChannelID, MessageID: rec.Display.MessageID}
	}
	return tracker.RestoreSession(cat, in), nil
}

func restorePlayer(p *Player) tracker.RestoreParticipantInput {
	return tracker.RestoreParticipantInput{
		Name:    p.Name,
		Kills:   p.Kills,
		Played:  p.Played,
		History: p.History,
	}
}
