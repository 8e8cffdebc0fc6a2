// Package snapshot converts sessions to versioned durable records and manages
// their debounced persistence, retention and cold-start restoration.
package snapshot

// SchemaVersion is the current snapshot record schema.
const SchemaVersion = 1

// Record is an immutable point-in-time serialization of a session. Many
// records may exist per session in storage, ordered by creation time.
type Record struct {
	SchemaVersion int         `json:"schema_version"`
	SessionKey    string      `json:"session_key"`
	SessionID     string      `json:"session_id,omitempty"`
	OwnerID       string      `json:"owner_id,omitempty"`
	Display       *DisplayRef `json:"display,omitempty"`
	Player1       *Player     `json:"player1"`
	Player2       *Player     `json:"player2"`
}

// DisplayRef locates the live tracker message on the external surface.
type DisplayRef struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// Player carries one participant's persisted fields. Played is kept sorted
// for a stable serialized form; History preserves chronological play order.
type Player struct {
	Name    string   `json:"name"`
	Kills   int      `json:"kills"`
	Played  []string `json:"played"`
	History []string `json:"history"`
}
