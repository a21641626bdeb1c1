package torn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestParseInventory
func TestParseInventory(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		items, err := ParseInventory([]byte(`{"inventory":{"206":{"name":"Xanax","quantity":3},"180":{"name":"Beer","quantity":12}}}`))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, InventoryItem{ID: "206", Name: "Xanax", Quantity: 3}, items[0])
		assert.Equal(t, InventoryItem{ID: "180", Name: "Beer", Quantity: 12}, items[1])
	})

	t.Run("array", func(t *testing.T) {
		items, err := ParseInventory([]byte(`{"inventory":[{"ID":206,"name":"Xanax","quantity":3}]}`))
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "206", items[0].ID)
	})

	t.Run("empty", func(t *testing.T) {
		items, err := ParseInventory([]byte(`{"inventory":null}`))
		require.NoError(t, err)
		assert.Empty(t, items)

		items, err = ParseInventory([]byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseInventory([]byte(`{`))
		assert.Error(t, err)
	})
}

// go test -v --run TestParseMarketItems
func TestParseMarketItems(t *testing.T) {
	items, err := ParseMarketItems([]byte(`{"items":{
		"18":{"market_price":1500,"item":{"name":"Beer","value":2000}},
		"3":{"market_price":null,"item":{"name":"Rock","value":1}}
	}}`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "3", items[0].ID)
	assert.True(t, items[0].MarketPrice.IsZero())
	assert.Equal(t, "Beer", items[1].Name)
	assert.True(t, items[1].MarketPrice.Equal(decimal.NewFromInt(1500)))
	assert.True(t, items[1].Value.Equal(decimal.NewFromInt(2000)))
}

// go test -v --run TestParseTravel
func TestParseTravel(t *testing.T) {
	items, err := ParseTravel([]byte(`{"travel":{
		"mexico":{"258":{"name":"Jaguar Plushie","cost":10000,"market_price":14000}},
		"canada":{"261":{"name":"Wolverine Plushie","cost":30,"market_price":20}}
	}}`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "canada", items[0].Country)
	assert.Equal(t, "mexico", items[1].Country)
	assert.Equal(t, "Jaguar Plushie", items[1].Name)
	assert.True(t, items[1].Cost.Equal(decimal.NewFromInt(10000)))
}

// go test -v --run TestLessID
func TestLessID(t *testing.T) {
	assert.True(t, lessID("2", "10"))
	assert.False(t, lessID("10", "2"))
	assert.True(t, lessID("9", "abc"))
	assert.True(t, lessID("abc", "abd"))
}
