package reminders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientRoundTrip(t *testing.T) {
	due := notif(DayBefore, testNow.Add(-time.Hour), false)
	soon := notif(HourAndHalfBefore, testNow.Add(2*time.Hour), false)
	lister := &memoryLister{list: []Notification{due, soon}}
	_, router := newTestServer(t, lister, false)

	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		router.ServeHTTP(w, r)
	}))
	defer srv.Close()

	client, err := NewAPIClient(ClientConfig{BaseURL: srv.URL + "/", Token: "staff-token"})
	require.NoError(t, err)

	pending, err := client.ListPending(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ID, pending[0].ID)
	assert.Equal(t, "Bearer staff-token", gotAuth.Load())

	board := NewBoard(BucketSource{Lister: client}, nil, client, nil, nil).WithClock(fixedClock(testNow))
	snap, err := board.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{due.ID}, ids(snap.Pending))
	assert.Equal(t, []uuid.UUID{soon.ID}, ids(snap.Upcoming))

	res, err := board.MarkSent(context.Background(), due.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Empty(t, board.Snapshot().Pending)

	_, err = client.MarkSent(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAPIClientErrors(t *testing.T) {
	_, err := NewAPIClient(ClientConfig{})
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewAPIClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = client.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")

	_, err = client.MarkSent(context.Background(), uuid.New())
	require.Error(t, err)
}
