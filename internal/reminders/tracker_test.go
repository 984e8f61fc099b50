package reminders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/podology-frontdesk/internal/observability/metrics"
)

type memorySentStore struct {
	mu    sync.Mutex
	sent  map[uuid.UUID]bool
	calls atomic.Int32
	delay time.Duration
	err   error
}

func newMemorySentStore(ids ...uuid.UUID) *memorySentStore {
	s := &memorySentStore{sent: map[uuid.UUID]bool{}}
	for _, id := range ids {
		s.sent[id] = false
	}
	return s
}

func (s *memorySentStore) MarkSent(_ context.Context, id uuid.UUID) (bool, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sent, ok := s.sent[id]
	if !ok {
		return false, ErrNotFound
	}
	if sent {
		return false, nil
	}
	s.sent[id] = true
	return true, nil
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestTrackerMarkSentIsIdempotent(t *testing.T) {
	id := uuid.New()
	store := newMemorySentStore(id)
	tracker := NewTracker(store, nil, nil, nil)

	first, err := tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, id, first.ID)

	second, err := tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.True(t, store.sent[id])
}

func TestTrackerUnknownAndFailingStore(t *testing.T) {
	tracker := NewTracker(newMemorySentStore(), nil, nil, nil)
	_, err := tracker.MarkSent(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	id := uuid.New()
	failing := newMemorySentStore(id)
	failing.err = errors.New("db down")
	_, err = NewTracker(failing, nil, nil, nil).MarkSent(context.Background(), id)
	require.Error(t, err)
	assert.False(t, failing.sent[id], "failure must not change state")
}

func TestTrackerCollapsesConcurrentCalls(t *testing.T) {
	id := uuid.New()
	store := newMemorySentStore(id)
	store.delay = 50 * time.Millisecond
	tracker := NewTracker(store, nil, nil, nil)

	var wg sync.WaitGroup
	var changed atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := tracker.MarkSent(context.Background(), id)
			assert.NoError(t, err)
			if res.Changed {
				changed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.True(t, store.sent[id])
	assert.Less(t, int(store.calls.Load()), 8)
	assert.Equal(t, int32(1), changed.Load(), "exactly one caller observes the transition")
}

func TestTrackerSharedCallCountsOneMark(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReminderMetrics(reg)
	id := uuid.New()
	store := newMemorySentStore(id)
	store.delay = 50 * time.Millisecond
	tracker := NewTracker(store, nil, m, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.MarkSent(context.Background(), id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	outcomes := markOutcomes(t, reg)
	assert.Equal(t, 1.0, outcomes[metrics.OutcomeMarked])
	assert.Equal(t, 3.0, outcomes[metrics.OutcomeAlreadySent])
}

func TestTrackerRedisClaim(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	id := uuid.New()
	store := newMemorySentStore(id)
	claimer := NewRedisClaimer(client, time.Minute)
	tracker := NewTracker(store, claimer, nil, nil)

	ok, err := claimer.Claim(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)

	res, err := tracker.MarkSent(context.Background(), id)
	require.NoError(t, err, "a claim held elsewhere is not a failure")
	assert.True(t, res.Changed)
	assert.True(t, store.sent[id])
	assert.True(t, mr.Exists("frontdesk:mark_sent:"+id.String()), "foreign claim is left alone")

	require.NoError(t, claimer.Release(context.Background(), id))
	res, err = tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.False(t, mr.Exists("frontdesk:mark_sent:"+id.String()), "own claim released after mark")
}

func TestTrackerSecondReplicaIsIdempotentRepeat(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	id := uuid.New()
	store := newMemorySentStore(id)
	replicaA := NewTracker(store, NewRedisClaimer(client, time.Minute), nil, nil)
	replicaB := NewTracker(store, NewRedisClaimer(client, time.Minute), nil, nil)

	holder := NewRedisClaimer(client, time.Minute)
	ok, err := holder.Claim(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)

	first, err := replicaA.MarkSent(context.Background(), id)
	require.NoError(t, err)
	second, err := replicaB.MarkSent(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.True(t, store.sent[id])
}

func TestTrackerClaimExpires(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	id := uuid.New()
	claimer := NewRedisClaimer(client, 10*time.Second)
	ok, err := claimer.Claim(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(11 * time.Second)
	ok, err = claimer.Claim(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTrackerRedisDownFallsThrough(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	id := uuid.New()
	store := newMemorySentStore(id)
	tracker := NewTracker(store, NewRedisClaimer(client, time.Second), nil, nil)

	res, err := tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestTrackerRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewReminderMetrics(reg)
	id := uuid.New()
	tracker := NewTracker(newMemorySentStore(id), nil, m, nil)

	_, _ = tracker.MarkSent(context.Background(), id)
	_, _ = tracker.MarkSent(context.Background(), id)
	_, _ = tracker.MarkSent(context.Background(), uuid.New())

	outcomes := markOutcomes(t, reg)
	assert.Equal(t, 1.0, outcomes[metrics.OutcomeMarked])
	assert.Equal(t, 1.0, outcomes[metrics.OutcomeAlreadySent])
	assert.Equal(t, 1.0, outcomes[metrics.OutcomeNotFound])
}

func TestTrackerCountsClaimResults(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	reg := prometheus.NewRegistry()
	m := metrics.NewReminderMetrics(reg)
	id := uuid.New()
	claimer := NewRedisClaimer(client, time.Minute)
	tracker := NewTracker(newMemorySentStore(id), claimer, m, nil)

	_, err := tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)

	ok, err := claimer.Claim(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = tracker.MarkSent(context.Background(), id)
	require.NoError(t, err)

	results := labelCounts(t, reg, "frontdesk_reminders_mark_sent_claims_total", "result")
	assert.Equal(t, 1.0, results[metrics.ClaimAcquired])
	assert.Equal(t, 1.0, results[metrics.ClaimContended])
}

func markOutcomes(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	return labelCounts(t, reg, "frontdesk_reminders_mark_sent_total", "outcome")
}

func labelCounts(t *testing.T, reg *prometheus.Registry, name, label string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == label {
					counts[l.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	return counts
}
