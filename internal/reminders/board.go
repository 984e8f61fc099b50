package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/podology-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// Source fetches the notifications a board refresh classifies.
type Source interface {
	Fetch(ctx context.Context, now time.Time, horizon time.Duration) ([]Notification, error)
}

// FullLister returns every stored notification.
type FullLister interface {
	List(ctx context.Context) ([]Notification, error)
}

// BucketLister returns the store's own pending and upcoming views.
type BucketLister interface {
	ListPending(ctx context.Context, asOf time.Time) ([]Notification, error)
	ListUpcoming(ctx context.Context, asOf time.Time, horizon time.Duration) ([]Notification, error)
}

// ListSource adapts a full-list store. Every record is re-derived locally.
type ListSource struct {
	Lister FullLister
}

func (s ListSource) Fetch(ctx context.Context, _ time.Time, _ time.Duration) ([]Notification, error) {
	return s.Lister.List(ctx)
}

// BucketSource adapts a store that pre-filters by time. Both lists are
// merged and classified again, so server-side clock drift cannot put one
// record in both buckets.
type BucketSource struct {
	Lister BucketLister
}

func (s BucketSource) Fetch(ctx context.Context, now time.Time, horizon time.Duration) ([]Notification, error) {
	pending, err := s.Lister.ListPending(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}
	upcoming, err := s.Lister.ListUpcoming(ctx, now, horizon)
	if err != nil {
		return nil, fmt.Errorf("upcoming: %w", err)
	}
	return append(pending, upcoming...), nil
}

// Marker marks a notification sent.
type Marker interface {
	MarkSent(ctx context.Context, id uuid.UUID) (MarkResult, error)
}

// Snapshot is the last successful classification plus refresh status.
type Snapshot struct {
	Buckets
	FetchedAt time.Time `json:"fetched_at"`
	LastError string    `json:"last_error,omitempty"`
}

// Board keeps the reminder buckets fresh by polling its source.
type Board struct {
	source     Source
	classifier *Classifier
	marker     Marker
	metrics    *metrics.ReminderMetrics
	logger     *logging.Logger
	interval   time.Duration
	now        func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

// NewBoard creates a board refreshing every 5 minutes. marker may be nil
// for read-only boards.
func NewBoard(source Source, classifier *Classifier, marker Marker, m *metrics.ReminderMetrics, logger *logging.Logger) *Board {
	if logger == nil {
		logger = logging.Default()
	}
	if classifier == nil {
		classifier = NewClassifier(DefaultHorizon)
	}
	return &Board{
		source:     source,
		classifier: classifier,
		marker:     marker,
		metrics:    m,
		logger:     logger,
		interval:   5 * time.Minute,
		now:        time.Now,
		snap: Snapshot{Buckets: Buckets{
			Pending:  []Entry{},
			Upcoming: []Entry{},
		}},
	}
}

func (b *Board) WithInterval(d time.Duration) *Board {
	if d > 0 {
		b.interval = d
	}
	return b
}

// WithClock replaces the wall clock.
func (b *Board) WithClock(now func() time.Time) *Board {
	if now != nil {
		b.now = now
	}
	return b
}

// Run refreshes immediately and then on every tick until ctx is done.
func (b *Board) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	b.refreshQuietly(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.refreshQuietly(ctx)
		}
	}
}

func (b *Board) refreshQuietly(ctx context.Context) {
	if _, err := b.Refresh(ctx); err != nil {
		b.logger.Error("board refresh failed", "error", err)
	}
}

// Refresh fetches and classifies. On failure the previous buckets are kept
// and the error is recorded on the snapshot.
func (b *Board) Refresh(ctx context.Context) (Snapshot, error) {
	now := b.now()
	start := time.Now()
	list, err := b.source.Fetch(ctx, now, b.classifier.Horizon())
	if err != nil {
		b.metrics.ObserveRefresh(false, time.Since(start).Seconds())
		b.mu.Lock()
		b.snap.LastError = err.Error()
		snap := b.snap
		b.mu.Unlock()
		return snap, fmt.Errorf("reminders: refresh: %w", err)
	}

	buckets := b.classifier.Classify(list, now)
	b.metrics.ObserveRefresh(true, time.Since(start).Seconds())
	for _, a := range buckets.Anomalies {
		b.metrics.ObserveAnomaly(a.Field)
		b.logger.Warn("notification excluded from board", "notification_id", a.NotificationID, "field", a.Field, "reason", a.Reason)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Before(b.snap.EvaluatedAt) {
		// A newer refresh already landed.
		return b.snap, nil
	}
	b.snap = Snapshot{Buckets: buckets, FetchedAt: now}
	b.metrics.SetBuckets(len(buckets.Pending), len(buckets.Upcoming))
	return b.snap, nil
}

// Snapshot returns the current buckets.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// MarkSent marks id sent and then refreshes. A failed refresh after a
// successful mark is logged and does not fail the call.
func (b *Board) MarkSent(ctx context.Context, id uuid.UUID) (MarkResult, error) {
	if b.marker == nil {
		return MarkResult{ID: id}, fmt.Errorf("reminders: board is read-only")
	}
	res, err := b.marker.MarkSent(ctx, id)
	if err != nil {
		return res, err
	}
	if _, err := b.Refresh(ctx); err != nil {
		b.logger.Warn("board refresh after mark sent failed", "error", err, "notification_id", id)
	}
	return res, nil
}
