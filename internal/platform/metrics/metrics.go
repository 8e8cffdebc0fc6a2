// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotSaves counts snapshot records successfully appended.
	SnapshotSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_snapshot_saves_total",
		Help: "Snapshot records successfully appended to the storage channel.",
	})
	// SnapshotDrops counts non-forced save requests dropped by the debounce.
	SnapshotDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_snapshot_drops_total",
		Help: "Save requests dropped because the debounce interval had not elapsed.",
	})
	// SnapshotFailures counts encode or append failures swallowed at the store boundary.
	SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_snapshot_failures_total",
		Help: "Snapshot encode/append failures swallowed at the store boundary.",
	})
	// SnapshotPruneFailures counts best-effort deletions that failed during retention pruning.
	SnapshotPruneFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_snapshot_prune_failures_total",
		Help: "Retention prune deletions that failed and were skipped.",
	})
	// RestoreHits counts sessions reconstructed from a stored record at startup.
	RestoreHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_restore_hits_total",
		Help: "Sessions reconstructed from a stored snapshot record.",
	})
	// RestoreSkips counts stored records skipped during restore because they failed to decode.
	RestoreSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duelboard_restore_skips_total",
		Help: "Snapshot records skipped during restore due to fetch or decode failures.",
	})
)
