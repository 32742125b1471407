package cache

import (
	"context"
	"testing"
	"time"

	"xapi-connector/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *SymbolCache {
	t.Helper()
	c, err := NewSymbolCache(context.Background(), 10*time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSymbolRoundTrip(t *testing.T) {
	c := newCache(t)

	_, ok := c.Get("EURUSD")
	assert.False(t, ok)

	exemode := 1
	in := models.MSymbol{
		Symbol: "EURUSD", Description: "Euro to American Dollar", Currency: "USD",
		Ask: 1.0851, Bid: 1.0849, Precision: 5, ContractSize: 100000,
		Exemode: &exemode, Time: 1700000000000,
	}
	require.NoError(t, c.Set(in))

	out, ok := c.Get("EURUSD")
	require.True(t, ok)
	assert.Equal(t, in, out)
	assert.Nil(t, out.Expiration)
}

func TestSetAll(t *testing.T) {
	c := newCache(t)

	_, ok := c.All()
	assert.False(t, ok)

	symbols := []models.MSymbol{{Symbol: "EURUSD"}, {Symbol: "US500"}, {Symbol: "AAPL.US_9"}}
	require.NoError(t, c.SetAll(symbols))

	all, ok := c.All()
	require.True(t, ok)
	assert.Equal(t, symbols, all)

	one, ok := c.Get("US500")
	require.True(t, ok)
	assert.Equal(t, "US500", one.Symbol)
	assert.Equal(t, 4, c.Len())
}
