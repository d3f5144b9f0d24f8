package engine

import (
	"iter"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// ErrNotResting is returned when removing an order the book does not hold.
var ErrNotResting = errors.New("order not resting in book")

// priceLevel holds the resting orders at one price, earliest arrival first,
// as they are appended on insert.
type priceLevel struct {
	price  int64
	orders []*Order
}

type priceLevels = btree.BTreeG[*priceLevel]

// OrderBook holds all resting orders, partitioned by side. Each side is a
// price-sorted tree of FIFO levels, so the highest-priority order of a side
// is always the first order of that side's minimum level. The book owns the
// orders it holds; only the matching loop may touch their quantities.
type OrderBook struct {
	bids *priceLevels
	asks *priceLevels

	// Arrival counter. Assigned once per insert, never reused.
	seq uint64
}

func NewOrderBook() *OrderBook {
	// Bids sorted greatest price first.
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price
	})
	// Asks sorted least price first.
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price
	})
	return &OrderBook{bids: bids, asks: asks}
}

func (book *OrderBook) levels(side Side) *priceLevels {
	if side == Buy {
		return book.bids
	}
	return book.asks
}

// Insert rests order on its own side, behind any earlier arrival at the same
// price. Exhausted orders never enter the book.
func (book *OrderBook) Insert(order *Order) error {
	if order.Exhausted() {
		return errors.Wrap(ErrInvalidOrder, "cannot rest an exhausted order")
	}
	book.seq++
	order.seq = book.seq

	// Levels compare on price only, so a bare level works as a search key.
	levels := book.levels(order.Side)
	if level, ok := levels.GetMut(&priceLevel{price: order.Price}); ok {
		level.orders = append(level.orders, order)
		return nil
	}
	levels.Set(&priceLevel{price: order.Price, orders: []*Order{order}})
	return nil
}

// BestOpposing returns the resting order an incoming order on side would
// match first: best price on the opposite side, earliest arrival within that
// price. Reports false if the opposite side is empty.
func (book *OrderBook) BestOpposing(side Side) (*Order, bool) {
	level, ok := book.levels(side.Opposite()).MinMut()
	if !ok {
		return nil, false
	}
	return level.orders[0], true
}

// Remove takes order off its side, dropping the price level if it empties.
func (book *OrderBook) Remove(order *Order) error {
	levels := book.levels(order.Side)
	level, ok := levels.GetMut(&priceLevel{price: order.Price})
	if !ok {
		return errors.Wrapf(ErrNotResting, "no %v level at %d", order.Side, order.Price)
	}
	for i, resting := range level.orders {
		if resting == order {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			if len(level.orders) == 0 {
				levels.Delete(level)
			}
			return nil
		}
	}
	return errors.Wrapf(ErrNotResting, "order %d not at %v level %d", order.ID, order.Side, order.Price)
}

// Snapshot walks the resting orders on side in full priority order: price
// first, arrival within a price. Orders are yielded by value, so holders of
// the sequence cannot reach resting quantity. The sequence is restartable.
func (book *OrderBook) Snapshot(side Side) iter.Seq[Order] {
	return func(yield func(Order) bool) {
		book.levels(side).Scan(func(level *priceLevel) bool {
			for _, order := range level.orders {
				if !yield(*order) {
					return false
				}
			}
			return true
		})
	}
}

// Len counts the resting orders on side.
func (book *OrderBook) Len(side Side) int {
	n := 0
	book.levels(side).Scan(func(level *priceLevel) bool {
		n += len(level.orders)
		return true
	})
	return n
}
