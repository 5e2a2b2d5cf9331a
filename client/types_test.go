package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringAndNumber(t *testing.T) {
	var fromString FlexID
	require.NoError(t, json.Unmarshal([]byte(`"abc-123"`), &fromString))
	assert.Equal(t, "abc-123", fromString.String())

	var fromNumber FlexID
	require.NoError(t, json.Unmarshal([]byte(`42`), &fromNumber))
	assert.Equal(t, "42", fromNumber.String())

	// Large numeric ids must not lose precision through a float round trip
	var large FlexID
	require.NoError(t, json.Unmarshal([]byte(`9007199254740993`), &large))
	assert.Equal(t, "9007199254740993", large.String())
}

func TestCategoryUnionDecoding(t *testing.T) {
	var fromName Category
	require.NoError(t, json.Unmarshal([]byte(`"Móveis"`), &fromName))
	assert.Equal(t, "Móveis", fromName.Name)
	assert.Empty(t, fromName.ID)

	var fromObject Category
	require.NoError(t, json.Unmarshal([]byte(`{"id": "c1", "name": "Móveis", "slug": "moveis"}`), &fromObject))
	assert.Equal(t, "c1", fromObject.ID)
	assert.Equal(t, "Móveis", fromObject.Name)
}

func TestResolvedCategoryName(t *testing.T) {
	assert.Equal(t, "Livros", Item{CategoryName: "Livros"}.ResolvedCategoryName())
	assert.Equal(t, "Livros", Item{Category: &Category{Name: "Livros"}}.ResolvedCategoryName())
	assert.Equal(t, "Plano B", Item{CategoryName: "Plano B", Category: &Category{Name: "Plano A"}}.ResolvedCategoryName())
	assert.Empty(t, Item{}.ResolvedCategoryName())
}

func TestItemDecodesMixedCategoryShapes(t *testing.T) {
	payload := `[
		{"id": "i1", "title": "Sofá", "type": "donation", "category": "Móveis", "status": "used", "listing_state": "active"},
		{"id": "i2", "title": "Bike", "type": "sell", "price": 350.5, "category": {"id": "c2", "name": "Esportes"}, "status": "new", "listing_state": "active"}
	]`

	var items []Item
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Móveis", items[0].ResolvedCategoryName())
	assert.Equal(t, "Esportes", items[1].ResolvedCategoryName())
	require.NotNil(t, items[1].Price)
	assert.Equal(t, "350.50", items[1].PriceString())
	assert.Empty(t, items[0].PriceString())
}
