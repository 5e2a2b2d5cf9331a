package favorites

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giveme-app/giveme-api/client"
)

type fakeSession struct{ authenticated bool }

func (s fakeSession) IsAuthenticated() bool { return s.authenticated }

type fakeRemote struct {
	mu        sync.Mutex
	calls     []string
	addErr    error
	removeErr error
}

func (r *fakeRemote) AddFavorite(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "add:"+itemID)
	return r.addErr
}

func (r *fakeRemote) RemoveFavorite(ctx context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "remove:"+itemID)
	return r.removeErr
}

func (r *fakeRemote) callList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func awaitResults(t *testing.T, results <-chan Result, n int) []Result {
	t.Helper()
	collected := make([]Result, 0, n)
	for len(collected) < n {
		select {
		case result := <-results:
			collected = append(collected, result)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for result %d of %d", len(collected)+1, n)
		}
	}
	return collected
}

func newTestCoordinator(remote Remote, authenticated bool) (*Coordinator, chan Result) {
	results := make(chan Result, 16)
	coordinator := New(remote, fakeSession{authenticated: authenticated}, func(r Result) {
		results <- r
	})
	return coordinator, results
}

func TestToggleRequiresSession(t *testing.T) {
	remote := &fakeRemote{}
	coordinator, _ := newTestCoordinator(remote, false)

	_, err := coordinator.Toggle("i1")
	require.ErrorIs(t, err, client.ErrNotAuthenticated)
	assert.False(t, coordinator.IsFavorited("i1"))
	assert.Empty(t, remote.callList())
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	remote := &fakeRemote{}
	coordinator, results := newTestCoordinator(remote, true)

	favorited, err := coordinator.Toggle("i1")
	require.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, coordinator.IsFavorited("i1"))

	favorited, err = coordinator.Toggle("i1")
	require.NoError(t, err)
	assert.False(t, favorited)
	assert.False(t, coordinator.IsFavorited("i1"))

	settled := awaitResults(t, results, 2)
	for _, result := range settled {
		assert.NoError(t, result.Err)
	}
	assert.Equal(t, []string{"add:i1", "remove:i1"}, remote.callList())
}

func TestFailedAddRollsBack(t *testing.T) {
	remote := &fakeRemote{addErr: errors.New("network down")}
	coordinator, results := newTestCoordinator(remote, true)

	favorited, err := coordinator.Toggle("i1")
	require.NoError(t, err)
	assert.True(t, favorited, "optimistic state shows favorited immediately")

	settled := awaitResults(t, results, 1)
	require.Error(t, settled[0].Err)
	assert.False(t, settled[0].Favorited)
	assert.False(t, coordinator.IsFavorited("i1"), "rolled back after the failure resolved")
}

func TestRemoveOfAbsentFavoriteIsSuccess(t *testing.T) {
	remote := &fakeRemote{removeErr: &client.APIError{StatusCode: http.StatusNotFound}}
	coordinator, results := newTestCoordinator(remote, true)
	coordinator.Load([]client.Favorite{{ItemID: "i1"}})

	favorited, err := coordinator.Toggle("i1")
	require.NoError(t, err)
	assert.False(t, favorited)

	settled := awaitResults(t, results, 1)
	assert.NoError(t, settled[0].Err)
	assert.False(t, coordinator.IsFavorited("i1"))
}

func TestRapidTogglesSerializePerItem(t *testing.T) {
	remote := &fakeRemote{}
	coordinator, results := newTestCoordinator(remote, true)

	for i := 0; i < 4; i++ {
		_, err := coordinator.Toggle("i1")
		require.NoError(t, err)
	}

	awaitResults(t, results, 4)
	assert.Equal(t, []string{"add:i1", "remove:i1", "add:i1", "remove:i1"}, remote.callList())
	assert.False(t, coordinator.IsFavorited("i1"))
}

func TestStaleFailureDoesNotRollBackNewerToggle(t *testing.T) {
	// The first add fails, but by the time it settles the user has toggled
	// twice more; the most recent optimistic state must win.
	release := make(chan struct{})
	remote := &blockingRemote{release: release, addErr: errors.New("boom")}
	results := make(chan Result, 16)
	coordinator := New(remote, fakeSession{authenticated: true}, func(r Result) {
		results <- r
	})

	_, err := coordinator.Toggle("i1") // add, will fail once released
	require.NoError(t, err)
	_, err = coordinator.Toggle("i1") // remove
	require.NoError(t, err)
	_, err = coordinator.Toggle("i1") // add again, now the latest intent
	require.NoError(t, err)
	assert.True(t, coordinator.IsFavorited("i1"))

	close(release)
	awaitResults(t, results, 3)
	assert.True(t, coordinator.IsFavorited("i1"), "stale failure must not revert the latest toggle")
}

type blockingRemote struct {
	release <-chan struct{}
	addErr  error
	first   sync.Once
}

func (r *blockingRemote) AddFavorite(ctx context.Context, itemID string) error {
	var failed bool
	r.first.Do(func() {
		<-r.release
		failed = true
	})
	if failed {
		return r.addErr
	}
	return nil
}

func (r *blockingRemote) RemoveFavorite(ctx context.Context, itemID string) error {
	return nil
}
