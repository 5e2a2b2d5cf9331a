package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giveme-app/giveme-api/client"
)

// Item.Type carries the API's capitalized enum
func sampleItems() []client.Item {
	price := 50.0
	return []client.Item{
		{ID: "i1", Title: "Bicicleta aro 29", Description: "pouco usada", Type: "Sell", Price: &price, CategoryName: "Esportes"},
		{ID: "i2", Title: "Sofá 3 lugares", Description: "doação para retirada", Type: "Donation", CategoryName: "Móveis"},
		{ID: "i3", Title: "Guitarra", Description: "troco por violão", Type: "Trade", CategoryName: "Música"},
		{ID: "i4", Title: "Livros infantis", Description: "caixa completa", Type: "Donation", CategoryName: "Livros"},
		{ID: "i5", Title: "Violão", Description: "cordas novas", Type: "Sell", Price: &price, CategoryName: "Música"},
	}
}

func ids(items []client.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestApplySentinelsDisableStages(t *testing.T) {
	items := sampleItems()

	result := Apply(items, Filters{Type: TypeAll, Category: CategoryAll})
	assert.Equal(t, ids(items), ids(result))

	result = Apply(items, Filters{Type: TypeAll, Category: CategoryAll, Query: "  "})
	assert.Equal(t, ids(items), ids(result))
}

func TestApplyTypeFilter(t *testing.T) {
	items := sampleItems()

	t.Run("donations", func(t *testing.T) {
		result := Apply(items, Filters{Type: TypeDonations, Category: CategoryAll})
		assert.Equal(t, []string{"i2", "i4"}, ids(result))
	})

	t.Run("trades", func(t *testing.T) {
		result := Apply(items, Filters{Type: TypeTrades, Category: CategoryAll})
		assert.Equal(t, []string{"i3"}, ids(result))
	})

	t.Run("unknown label matches nothing", func(t *testing.T) {
		result := Apply(items, Filters{Type: "Vendas?", Category: CategoryAll})
		assert.Empty(t, result)
	})
}

func TestApplyTypeFilterOverDecodedItems(t *testing.T) {
	// Items exactly as the API serializes them
	payload := `[
		{"id": "i1", "title": "Bicicleta", "type": "Sell", "price": 50, "status": "used", "listing_state": "active"},
		{"id": "i2", "title": "Sofá", "type": "Donation", "status": "used", "listing_state": "active"},
		{"id": "i3", "title": "Guitarra", "type": "Trade", "status": "used", "listing_state": "active"},
		{"id": "i4", "title": "Livros", "type": "Donation", "status": "new", "listing_state": "active"},
		{"id": "i5", "title": "Violão", "type": "Sell", "price": 80, "status": "new", "listing_state": "active"}
	]`

	var items []client.Item
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 5)

	result := Apply(items, Filters{Type: TypeDonations, Category: CategoryAll})
	assert.Equal(t, []string{"i2", "i4"}, ids(result))

	result = Apply(items, Filters{Type: TypeTrades, Category: CategoryAll})
	assert.Equal(t, []string{"i3"}, ids(result))
}

func TestApplyCategoryFilter(t *testing.T) {
	items := sampleItems()

	result := Apply(items, Filters{Type: TypeAll, Category: "Música"})
	assert.Equal(t, []string{"i3", "i5"}, ids(result))

	result = Apply(items, Filters{Type: TypeAll, Category: "Inexistente"})
	assert.Empty(t, result)
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	items := sampleItems()

	result := Apply(items, Filters{Type: TypeAll, Category: CategoryAll, Query: "VIOLÃO"})
	assert.Equal(t, []string{"i3", "i5"}, ids(result))
}

func TestApplyStagesAreConjunctive(t *testing.T) {
	items := sampleItems()

	result := Apply(items, Filters{Type: TypeTrades, Category: "Música", Query: "violão"})
	assert.Equal(t, []string{"i3"}, ids(result))

	result = Apply(items, Filters{Type: TypeDonations, Category: "Música"})
	assert.Empty(t, result)
}

func TestApplyIsStableAndIdempotent(t *testing.T) {
	items := sampleItems()
	filters := Filters{Type: TypeDonations, Category: CategoryAll, Query: "a"}

	first := Apply(items, filters)
	second := Apply(items, filters)
	assert.Equal(t, ids(first), ids(second))

	// Output must be an order-preserving subset of the input
	position := 0
	for _, item := range first {
		for position < len(items) && items[position].ID != item.ID {
			position++
		}
		require.Less(t, position, len(items), "item %s out of original order", item.ID)
	}
}

func TestEngineRecomputesOnChange(t *testing.T) {
	engine := NewEngine()
	engine.SetItems(sampleItems())

	all := engine.Items()
	require.Len(t, all, 5)

	engine.SetFilters(Filters{Type: TypeDonations, Category: CategoryAll})
	assert.Equal(t, []string{"i2", "i4"}, ids(engine.Items()))

	// Same inputs return the same memoized slice
	first := engine.Items()
	second := engine.Items()
	assert.Equal(t, ids(first), ids(second))

	engine.SetItems(sampleItems()[:2])
	assert.Equal(t, []string{"i2"}, ids(engine.Items()))
}
