package views

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_reconcile_runs_total",
		Help: "Profile-view reconciliation runs by outcome.",
	}, []string{"outcome"})

	reconciledViewers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "legacy_reconciled_viewers_total",
		Help: "Distinct viewers returned by reconciliation runs.",
	})

	prunedViewEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "legacy_pruned_view_events_total",
		Help: "View events deleted during reconciliation or cleanup, by reason.",
	}, []string{"reason"})

	pruneFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "legacy_prune_failures_total",
		Help: "Best-effort view-event deletions that failed.",
	})
)

const (
	pruneReasonMissingViewer = "missing_viewer"
	pruneReasonDuplicate     = "duplicate"
	pruneReasonInvalidViewer = "invalid_viewer"
)
