package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/wolfman30/podology-frontdesk/internal/observability/metrics"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// SentStore performs the persistent false→true transition.
type SentStore interface {
	MarkSent(ctx context.Context, id uuid.UUID) (bool, error)
}

// Claimer serializes mark-sent across processes.
type Claimer interface {
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// MarkResult describes a mark-sent call. Changed is false when the
// notification was already sent.
type MarkResult struct {
	ID      uuid.UUID `json:"id"`
	Changed bool      `json:"changed"`
}

// Tracker marks notifications sent. Concurrent calls for one id share a
// single store round trip; the optional claimer extends that across replicas.
type Tracker struct {
	store   SentStore
	claims  Claimer
	group   singleflight.Group
	metrics *metrics.ReminderMetrics
	logger  *logging.Logger
}

// NewTracker creates a tracker. claims and m may be nil.
func NewTracker(store SentStore, claims Claimer, m *metrics.ReminderMetrics, logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{store: store, claims: claims, metrics: m, logger: logger}
}

// MarkSent transitions id to sent. Marking an already-sent id succeeds with
// Changed=false, and of several concurrent calls for one id only one reports
// Changed=true. ErrNotFound and store failures leave the record untouched.
func (t *Tracker) MarkSent(ctx context.Context, id uuid.UUID) (MarkResult, error) {
	leader := false
	v, err, shared := t.group.Do(id.String(), func() (any, error) {
		leader = true
		return t.markOnce(ctx, id)
	})
	res, _ := v.(MarkResult)
	res.ID = id
	if shared && !leader {
		res.Changed = false
	}
	switch {
	case err == nil && res.Changed:
		t.metrics.ObserveMarkSent(metrics.OutcomeMarked)
	case err == nil:
		t.metrics.ObserveMarkSent(metrics.OutcomeAlreadySent)
	case errors.Is(err, ErrNotFound):
		t.metrics.ObserveMarkSent(metrics.OutcomeNotFound)
	default:
		t.metrics.ObserveMarkSent(metrics.OutcomeError)
	}
	return res, err
}

// markOnce takes the cross-replica claim when one is configured. A claim held
// elsewhere does not fail the call: the conditional update decides which
// replica flips the flag.
func (t *Tracker) markOnce(ctx context.Context, id uuid.UUID) (MarkResult, error) {
	if t.claims != nil {
		ok, err := t.claims.Claim(ctx, id)
		switch {
		case err != nil:
			t.metrics.ObserveClaim(metrics.ClaimUnavailable)
			t.logger.Warn("mark sent claim unavailable, continuing unguarded", "error", err, "notification_id", id)
		case !ok:
			t.metrics.ObserveClaim(metrics.ClaimContended)
			t.logger.Debug("mark sent claim held by another replica", "notification_id", id)
		default:
			t.metrics.ObserveClaim(metrics.ClaimAcquired)
			defer func() {
				if err := t.claims.Release(context.WithoutCancel(ctx), id); err != nil {
					t.logger.Warn("mark sent claim release failed", "error", err, "notification_id", id)
				}
			}()
		}
	}

	changed, err := t.store.MarkSent(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.logger.Error("mark sent failed", "error", err, "notification_id", id)
		}
		return MarkResult{}, err
	}
	t.logger.Info("notification marked sent", "notification_id", id, "changed", changed)
	return MarkResult{Changed: changed}, nil
}

// RedisClaimer holds a short-lived SET NX key per notification.
type RedisClaimer struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisClaimer creates a claimer. A zero ttl defaults to 30s.
func NewRedisClaimer(client *redis.Client, ttl time.Duration) *RedisClaimer {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisClaimer{client: client, ttl: ttl, prefix: "frontdesk:mark_sent:"}
}

func (c *RedisClaimer) key(id uuid.UUID) string { return c.prefix + id.String() }

// Claim returns true when this caller acquired the key.
func (c *RedisClaimer) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.key(id), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reminders: claim: %w", err)
	}
	return ok, nil
}

// Release drops the key.
func (c *RedisClaimer) Release(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("reminders: release claim: %w", err)
	}
	return nil
}
