package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aurora/internal/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetOrCreateStartsWithoutSource(t *testing.T) {
	store := session.NewStore()

	sess := store.GetOrCreate(7)
	require.Equal(t, int64(7), sess.UserID)
	require.Equal(t, session.NoSource, sess.State)
	require.False(t, sess.HasSource())
	require.Equal(t, 1, store.Len())

	again := store.GetOrCreate(7)
	require.Equal(t, sess.CreatedAt, again.CreatedAt)
	require.Equal(t, 1, store.Len())
}

func TestSetSourceOverwritesFromAnyState(t *testing.T) {
	store := session.NewStore()

	store.SetSource(1, "https://youtu.be/first1")
	store.SetState(1, session.AwaitingQualityChoice)

	sess := store.SetSource(1, " https://youtu.be/second ")
	require.Equal(t, "https://youtu.be/second", sess.Source)
	require.Equal(t, session.SourceSelected, sess.State)
}

func TestSetStateWithoutSourceStaysNoSource(t *testing.T) {
	store := session.NewStore()

	sess := store.SetState(3, session.AwaitingLanguageChoice)
	require.Equal(t, session.NoSource, sess.State)
}

func TestClearUnsetsSource(t *testing.T) {
	store := session.NewStore()
	store.SetSource(1, "https://youtu.be/abc123")

	sess := store.Clear(1)
	require.False(t, sess.HasSource())
	require.Equal(t, session.NoSource, sess.State)

	got, ok := store.Get(1)
	require.True(t, ok)
	require.Equal(t, sess, got)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	store := session.NewStore()
	store.SetSource(1, "https://youtu.be/abc123")

	other := store.GetOrCreate(2)
	require.False(t, other.HasSource())

	_, ok := store.Get(3)
	require.False(t, ok)
}

func TestSnapshotsDoNotAliasStoredSession(t *testing.T) {
	store := session.NewStore()
	sess := store.SetSource(1, "https://youtu.be/abc123")
	sess.Source = "mutated"

	got, _ := store.Get(1)
	require.Equal(t, "https://youtu.be/abc123", got.Source)
}

func TestEvictDropsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := session.NewStore(session.WithClock(clock.Now))

	store.GetOrCreate(1)
	clock.Advance(30 * time.Minute)
	store.SetSource(2, "https://youtu.be/abc123")
	clock.Advance(45 * time.Minute)

	removed := store.Evict(time.Hour)
	require.Equal(t, 1, removed)
	_, ok := store.Get(1)
	require.False(t, ok)
	_, ok = store.Get(2)
	require.True(t, ok)
}

func TestEvictSkipsLockedUsers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := session.NewStore(session.WithClock(clock.Now))
	store.GetOrCreate(1)

	release, err := store.Lock(context.Background(), 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	require.Equal(t, 0, store.Evict(time.Hour))

	release()
	require.Equal(t, 1, store.Evict(time.Hour))
}

func TestLockSerializesSameUser(t *testing.T) {
	store := session.NewStore()

	release, err := store.Lock(context.Background(), 9)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := store.Lock(context.Background(), 9)
		if err == nil {
			close(acquired)
			second()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLockDifferentUsersDoNotBlock(t *testing.T) {
	store := session.NewStore()

	first, err := store.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer first()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	second, err := store.Lock(ctx, 2)
	require.NoError(t, err)
	second()
}

func TestLockHonoursContext(t *testing.T) {
	store := session.NewStore()
	release, err := store.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = store.Lock(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseIsIdempotent(t *testing.T) {
	store := session.NewStore()
	release, err := store.Lock(context.Background(), 1)
	require.NoError(t, err)
	release()
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := store.Lock(ctx, 1)
	require.NoError(t, err)
	again()
}

func TestConcurrentAccess(t *testing.T) {
	store := session.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			release, err := store.Lock(context.Background(), id%5)
			if err != nil {
				return
			}
			defer release()
			store.SetSource(id%5, "https://youtu.be/abc123")
			store.SetState(id%5, session.AwaitingQualityChoice)
			store.GetOrCreate(id % 5)
		}(int64(i))
	}
	wg.Wait()
	require.Equal(t, 5, store.Len())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "awaiting_quality", session.AwaitingQualityChoice.String())
	require.Equal(t, "state(42)", session.State(42).String())
}
