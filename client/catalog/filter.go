// Package catalog derives the filtered item view for the home screen.
// Filtering is a pure function over the current snapshot; the Engine adds
// memoization so the view is recomputed only when an input changes.
package catalog

import (
	"strings"
	"sync"

	"github.com/giveme-app/giveme-api/client"
)

// Type filter sentinels as shown in the UI. TypeAll disables the stage.
const (
	TypeAll       = "Todos"
	TypeTrades    = "Trocas"
	TypeDonations = "Doações"
)

// CategoryAll disables the category stage
const CategoryAll = "Todas"

// typeForLabel maps a UI label to the wire value of Item.Type.
// The API emits the capitalized enum (Sell, Donation, Trade).
var typeForLabel = map[string]string{
	TypeTrades:    "Trade",
	TypeDonations: "Donation",
}

// Filters are the three independent filter inputs
type Filters struct {
	Type     string
	Category string
	Query    string
}

// Apply runs the three stages in sequence: type, then category, then
// case-insensitive substring search over title and description. Each stage
// narrows the previous one, and the original relative order is preserved.
func Apply(items []client.Item, filters Filters) []client.Item {
	result := make([]client.Item, 0, len(items))

	wantType := ""
	if filters.Type != "" && filters.Type != TypeAll {
		mapped, known := typeForLabel[filters.Type]
		if !known {
			// Unknown label matches nothing
			return result
		}
		wantType = mapped
	}

	wantCategory := ""
	if filters.Category != "" && filters.Category != CategoryAll {
		wantCategory = filters.Category
	}

	query := strings.ToLower(strings.TrimSpace(filters.Query))

	for _, item := range items {
		if wantType != "" && item.Type != wantType {
			continue
		}
		if wantCategory != "" && item.ResolvedCategoryName() != wantCategory {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Title), query) &&
			!strings.Contains(strings.ToLower(item.Description), query) {
			continue
		}
		result = append(result, item)
	}

	return result
}

// Engine memoizes Apply. SetItems and SetFilters mark the derivation dirty;
// Items recomputes at most once per change.
type Engine struct {
	mu      sync.Mutex
	items   []client.Item
	filters Filters
	view    []client.Item
	dirty   bool
}

// NewEngine creates an Engine with the stage-disabling sentinels active
func NewEngine() *Engine {
	return &Engine{
		filters: Filters{Type: TypeAll, Category: CategoryAll},
		dirty:   true,
	}
}

// SetItems replaces the unfiltered collection
func (e *Engine) SetItems(items []client.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = items
	e.dirty = true
}

// SetFilters replaces the filter inputs
func (e *Engine) SetFilters(filters Filters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if filters == e.filters {
		return
	}
	e.filters = filters
	e.dirty = true
}

// Filters returns the active filter inputs
func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

// Items returns the filtered view, recomputing only if an input changed
// since the last call
func (e *Engine) Items() []client.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dirty {
		e.view = Apply(e.items, e.filters)
		e.dirty = false
	}
	return e.view
}
