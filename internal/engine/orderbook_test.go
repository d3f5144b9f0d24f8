package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/engine"
)

// --- Setup & Helpers --------------------------------------------------------

func newTestOrder(t *testing.T, id int64, side engine.Side, price, quantity int64) *engine.Order {
	t.Helper()
	order, err := engine.NewOrder(id, side, price, quantity)
	require.NoError(t, err)
	return order
}

// flattenSide renders a side's snapshot as "<qty>@<price>" strings in
// priority order, the simplest form to compare against expectations.
func flattenSide(book *engine.OrderBook, side engine.Side) []string {
	var flat []string
	for order := range book.Snapshot(side) {
		flat = append(flat, order.String())
	}
	return flat
}

// --- Tests ------------------------------------------------------------------

func TestInsert_PriceTimePriority(t *testing.T) {
	book := engine.NewOrderBook()

	// Asks inserted out of price order, two sharing a level.
	require.NoError(t, book.Insert(newTestOrder(t, 1, engine.Sell, 101, 5)))
	require.NoError(t, book.Insert(newTestOrder(t, 2, engine.Sell, 100, 7)))
	require.NoError(t, book.Insert(newTestOrder(t, 3, engine.Sell, 100, 3)))

	// Bids likewise.
	require.NoError(t, book.Insert(newTestOrder(t, 4, engine.Buy, 98, 4)))
	require.NoError(t, book.Insert(newTestOrder(t, 5, engine.Buy, 99, 6)))

	assert.Equal(t,
		[]string{"SELL 7@100", "SELL 3@100", "SELL 5@101"},
		flattenSide(book, engine.Sell),
		"asks should be sorted low -> high, FIFO within a price")
	assert.Equal(t,
		[]string{"BUY 6@99", "BUY 4@98"},
		flattenSide(book, engine.Buy),
		"bids should be sorted high -> low")
}

func TestInsert_ExhaustedRejected(t *testing.T) {
	book := engine.NewOrderBook()
	order := newTestOrder(t, 1, engine.Buy, 100, 5)
	require.NoError(t, order.Reduce(5))

	assert.ErrorIs(t, book.Insert(order), engine.ErrInvalidOrder)
	assert.Zero(t, book.Len(engine.Buy))
}

func TestBestOpposing(t *testing.T) {
	book := engine.NewOrderBook()

	_, ok := book.BestOpposing(engine.Buy)
	assert.False(t, ok, "empty opposite side has no best order")

	require.NoError(t, book.Insert(newTestOrder(t, 1, engine.Sell, 101, 5)))
	require.NoError(t, book.Insert(newTestOrder(t, 2, engine.Sell, 100, 5)))
	require.NoError(t, book.Insert(newTestOrder(t, 3, engine.Buy, 99, 5)))

	best, ok := book.BestOpposing(engine.Buy)
	require.True(t, ok)
	assert.Equal(t, int64(2), best.ID, "a buy matches the cheapest ask first")

	best, ok = book.BestOpposing(engine.Sell)
	require.True(t, ok)
	assert.Equal(t, int64(3), best.ID)
}

func TestBestOpposing_TimePriorityWithinLevel(t *testing.T) {
	book := engine.NewOrderBook()
	first := newTestOrder(t, 1, engine.Sell, 100, 5)
	second := newTestOrder(t, 2, engine.Sell, 100, 5)
	require.NoError(t, book.Insert(first))
	require.NoError(t, book.Insert(second))

	best, ok := book.BestOpposing(engine.Buy)
	require.True(t, ok)
	assert.Same(t, first, best)

	require.NoError(t, book.Remove(first))
	best, ok = book.BestOpposing(engine.Buy)
	require.True(t, ok)
	assert.Same(t, second, best)
}

func TestRemove(t *testing.T) {
	book := engine.NewOrderBook()
	resting := newTestOrder(t, 1, engine.Sell, 100, 5)
	require.NoError(t, book.Insert(resting))

	stranger := newTestOrder(t, 2, engine.Sell, 100, 5)
	assert.ErrorIs(t, book.Remove(stranger), engine.ErrNotResting)

	require.NoError(t, book.Remove(resting))
	assert.Zero(t, book.Len(engine.Sell))

	// The emptied level is gone as well.
	assert.ErrorIs(t, book.Remove(resting), engine.ErrNotResting)
}

func TestSnapshot_Restartable(t *testing.T) {
	book := engine.NewOrderBook()
	require.NoError(t, book.Insert(newTestOrder(t, 1, engine.Buy, 99, 5)))
	require.NoError(t, book.Insert(newTestOrder(t, 2, engine.Buy, 98, 4)))

	snapshot := book.Snapshot(engine.Buy)

	// Early break, then a full second pass over the same sequence.
	for range snapshot {
		break
	}
	assert.Equal(t, []string{"BUY 5@99", "BUY 4@98"}, flattenSide(book, engine.Buy))

	var second []string
	for order := range snapshot {
		second = append(second, order.String())
	}
	assert.Equal(t, []string{"BUY 5@99", "BUY 4@98"}, second)
}

func TestSnapshot_YieldsCopies(t *testing.T) {
	book := engine.NewOrderBook()
	require.NoError(t, book.Insert(newTestOrder(t, 1, engine.Sell, 100, 10)))

	for order := range book.Snapshot(engine.Sell) {
		require.NoError(t, order.Reduce(9))
	}

	// Reducing the yielded copy must not touch the resting order.
	assert.Equal(t, []string{"SELL 10@100"}, flattenSide(book, engine.Sell))
}
