package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/platform/metrics"
	"github.com/duelboard/duelboard/internal/storechan"
	"github.com/duelboard/duelboard/internal/tracker"
)

const (
	// DefaultMinInterval is the minimum time between accepted non-forced saves per scope.
	DefaultMinInterval = 10 * time.Second
	// DefaultRetention is how many records are kept per scope after pruning.
	DefaultRetention = 5
	// DefaultSearchWindow bounds the newest-first scan for a decodable record on restore.
	DefaultSearchWindow = 50
)

// Store persists session snapshots to a storage channel with per-scope
// debouncing and retention pruning.
//
// Every failure inside Store is swallowed at this boundary: saves and prunes
// are best effort and must never interrupt the mutation that triggered them.
type Store struct {
	channel storechan.Channel
	cat     *catalog.Catalog

	minInterval  time.Duration
	retention    int
	searchWindow int
	clock        func() time.Time
	tracer       trace.Tracer

	mu       sync.Mutex
	lastSave map[string]time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMinInterval sets the debounce interval between non-forced saves.
func WithMinInterval(interval time.Duration) Option {
	return func(s *Store) {
		s.minInterval = interval
	}
}

// WithRetention sets how many records survive pruning per scope.
func WithRetention(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.retention = limit
		}
	}
}

// WithSearchWindow bounds how many records restore inspects per scope.
func WithSearchWindow(window int) Option {
	return func(s *Store) {
		if window > 0 {
			s.searchWindow = window
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates a snapshot store over a channel.
func NewStore(channel storechan.Channel, cat *catalog.Catalog, opts ...Option) *Store {
	s := &Store{
		channel:      channel,
		cat:          cat,
		minInterval:  DefaultMinInterval,
		retention:    DefaultRetention,
		searchWindow: DefaultSearchWindow,
		clock:        time.Now,
		tracer:       otel.Tracer("duelboard/snapshot"),
		lastSave:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordName builds the storage name for a save: the scope plus a zero-padded
// millisecond timestamp, so lexical order over names is chronological.
func RecordName(scope string, at time.Time) string {
	return fmt.Sprintf("%s-%020d.json", scope, at.UTC().UnixMilli())
}

// Request persists the session if the debounce allows it. Non-forced requests
// inside the minimum interval are dropped outright; the next mutation will
// re-trigger persistence. The caller holds the session lock, so the encoded
// state is consistent.
func (s *Store) Request(ctx context.Context, sess *tracker.Session, force bool) {
	ctx, span := s.tracer.Start(ctx, "snapshot.save",
		trace.WithAttributes(attribute.String("session.key", sess.Key), attribute.Bool("forced", force)))
	defer span.End()

	scope := sess.Key
	now := s.clock()

	s.mu.Lock()
	if !force {
		if last, ok := s.lastSave[scope]; ok && now.Sub(last) < s.minInterval {
			s.mu.Unlock()
			metrics.SnapshotDrops.Inc()
			return
		}
	}
	// The save timestamp is recorded before the write is attempted so a slow
	// or failing append cannot cause a burst of near-simultaneous writes.
	s.lastSave[scope] = now
	s.mu.Unlock()

	data, err := json.Marshal(Encode(sess))
	if err != nil {
		metrics.SnapshotFailures.Inc()
		log.Printf("snapshot encode failed scope=%s err=%v", scope, err)
		return
	}

	name := RecordName(scope, now)
	if err := s.channel.Append(ctx, scope, name, data); err != nil {
		metrics.SnapshotFailures.Inc()
		log.Printf("snapshot append failed scope=%s name=%s err=%v", scope, name, err)
		return
	}
	metrics.SnapshotSaves.Inc()

	s.prune(ctx, scope)
}

// prune deletes everything beyond the newest retention records for a scope.
// Enumeration and deletion failures are swallowed; pruning is best effort and
// is never retried.
func (s *Store) prune(ctx context.Context, scope string) {
	names, err := s.channel.List(ctx, scope, 0)
	if err != nil {
		log.Printf("snapshot prune list failed scope=%s err=%v", scope, err)
		return
	}
	if len(names) <= s.retention {
		return
	}
	for _, name := range names[s.retention:] {
		if err := s.channel.Delete(ctx, scope, name); err != nil {
			metrics.SnapshotPruneFailures.Inc()
			log.Printf("snapshot prune delete failed scope=%s name=%s err=%v", scope, name, err)
		}
	}
}

// Restore scans a scope's records newest-first, bounded by the search window,
// and reconstructs the first one that decodes. Older or malformed records are
// skipped, never repaired.
func (s *Store) Restore(ctx context.Context, scope string) (*tracker.Session, bool) {
	ctx, span := s.tracer.Start(ctx, "snapshot.restore",
		trace.WithAttributes(attribute.String("session.scope", scope)))
	defer span.End()

	names, err := s.channel.List(ctx, scope, s.searchWindow)
	if err != nil {
		log.Printf("restore list failed scope=%s err=%v", scope, err)
		return nil, false
	}

	for _, name := range names {
		data, err := s.channel.Fetch(ctx, scope, name)
		if err != nil {
			metrics.RestoreSkips.Inc()
			log.Printf("restore fetch failed scope=%s name=%s err=%v", scope, name, err)
			continue
		}
		sess, err := Decode(data, s.cat)
		if err != nil {
			metrics.RestoreSkips.Inc()
			log.Printf("restore decode failed scope=%s name=%s err=%v", scope, name, err)
			continue
		}
		metrics.RestoreHits.Inc()
		return sess, true
	}
	return nil, false
}

// RestoreAll restores every scope known to the channel into the registry.
// Each restored session is installed keyed by its embedded session key via a
// plain replace, so an explicit start racing a restore simply wins by arriving
// last.
func (s *Store) RestoreAll(ctx context.Context, reg *tracker.Registry) {
	scopes, err := s.channel.Scopes(ctx)
	if err != nil {
		log.Printf("restore scope enumeration failed err=%v", err)
		return
	}
	for _, scope := range scopes {
		if sess, ok := s.Restore(ctx, scope); ok {
			reg.Put(sess)
			log.Printf("session restored scope=%s session_id=%s", sess.Key, sess.ID)
		}
	}
}
