// Package favorites keeps the local favorited set in sync with the server
// while giving immediate feedback. A toggle flips local state first, then
// issues the mutation; on failure the flip is rolled back unless a later
// toggle already superseded it.
package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/giveme-app/giveme-api/client"
)

const mutationTimeout = 10 * time.Second

// Remote is the slice of the API client the coordinator mutates through
type Remote interface {
	AddFavorite(ctx context.Context, itemID string) error
	RemoveFavorite(ctx context.Context, itemID string) error
}

// Authenticator gates mutations on a live session
type Authenticator interface {
	IsAuthenticated() bool
}

// Result reports the outcome of one settled mutation
type Result struct {
	ItemID    string
	Favorited bool
	Err       error
}

type operation struct {
	add     bool
	version uint64
}

// Coordinator serializes mutations per item so rapid toggles on the same
// item reach the server in order, while different items proceed in parallel.
type Coordinator struct {
	remote   Remote
	session  Authenticator
	onResult func(Result)

	mu      sync.Mutex
	set     map[string]bool
	version map[string]uint64
	pending map[string][]operation
	running map[string]bool
}

// New creates a Coordinator. onResult may be nil; when set it is called
// after every settled mutation, including rollbacks.
func New(remote Remote, session Authenticator, onResult func(Result)) *Coordinator {
	return &Coordinator{
		remote:   remote,
		session:  session,
		onResult: onResult,
		set:      make(map[string]bool),
		version:  make(map[string]uint64),
		pending:  make(map[string][]operation),
		running:  make(map[string]bool),
	}
}

// Load seeds the local set from a fetched favorites list
func (c *Coordinator) Load(favorites []client.Favorite) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = make(map[string]bool, len(favorites))
	for _, favorite := range favorites {
		c.set[favorite.ItemID] = true
	}
}

// IsFavorited reports the current local state for an item
func (c *Coordinator) IsFavorited(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set[itemID]
}

// Snapshot returns the current local set
func (c *Coordinator) Snapshot() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(map[string]bool, len(c.set))
	for itemID := range c.set {
		snapshot[itemID] = true
	}
	return snapshot
}

// Toggle flips the local state for an item and queues the matching remote
// mutation. Without an authenticated session it changes nothing and returns
// ErrNotAuthenticated. The returned bool is the new local state.
func (c *Coordinator) Toggle(itemID string) (bool, error) {
	if !c.session.IsAuthenticated() {
		return false, client.ErrNotAuthenticated
	}

	c.mu.Lock()
	favorited := !c.set[itemID]
	if favorited {
		c.set[itemID] = true
	} else {
		delete(c.set, itemID)
	}
	c.version[itemID]++
	c.pending[itemID] = append(c.pending[itemID], operation{add: favorited, version: c.version[itemID]})

	if !c.running[itemID] {
		c.running[itemID] = true
		go c.drain(itemID)
	}
	c.mu.Unlock()

	return favorited, nil
}

// drain runs queued mutations for one item in order until the queue empties
func (c *Coordinator) drain(itemID string) {
	for {
		c.mu.Lock()
		queue := c.pending[itemID]
		if len(queue) == 0 {
			c.running[itemID] = false
			delete(c.pending, itemID)
			c.mu.Unlock()
			return
		}
		op := queue[0]
		c.pending[itemID] = queue[1:]
		c.mu.Unlock()

		c.settle(itemID, op)
	}
}

func (c *Coordinator) settle(itemID string, op operation) {
	ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
	defer cancel()

	var err error
	if op.add {
		err = c.remote.AddFavorite(ctx, itemID)
	} else {
		err = c.remote.RemoveFavorite(ctx, itemID)
		// Removing a favorite that never reached the server is still a
		// successful removal from the user's point of view
		if client.IsNotFound(err) {
			err = nil
		}
	}

	result := Result{ItemID: itemID, Favorited: op.add, Err: err}

	if err != nil {
		c.mu.Lock()
		// Roll back only if no later toggle changed the intent
		if c.version[itemID] == op.version {
			if op.add {
				delete(c.set, itemID)
			} else {
				c.set[itemID] = true
			}
			result.Favorited = !op.add
		}
		c.mu.Unlock()
	}

	if c.onResult != nil {
		c.onResult(result)
	}
}
