package engine

import "github.com/pkg/errors"

// Engine matches incoming orders against its book under price-time priority.
// The engine performs no internal locking: submissions must be serialized by
// the caller, and snapshots must not run while a submission is in flight.
type Engine struct {
	book *OrderBook
}

func New() *Engine {
	return &Engine{book: NewOrderBook()}
}

// Book exposes the book for read queries.
func (engine *Engine) Book() *OrderBook {
	return engine.book
}

// Submit matches order against the best opposing resting orders while prices
// cross, then rests any unfilled remainder on the order's own side. Each
// match consumes min(incoming, resting) quantity at the resting order's
// price, and a resting order matched to zero leaves the book. Trades are
// returned in generation order, which is also price priority order.
//
// The loop terminates because every match strictly reduces the total
// unmatched quantity in play.
func (engine *Engine) Submit(order *Order) ([]Trade, error) {
	if order == nil || order.Exhausted() {
		return nil, errors.Wrap(ErrInvalidOrder, "nothing to match")
	}

	var trades []Trade
	for !order.Exhausted() {
		candidate, ok := engine.book.BestOpposing(order.Side)
		if !ok || !crosses(order, candidate) {
			break
		}

		matchQty := min(order.Quantity(), candidate.Quantity())
		trades = append(trades, Trade{
			AggressorID: order.ID,
			PassiveID:   candidate.ID,
			Price:       candidate.Price,
			Quantity:    matchQty,
		})

		if err := order.Reduce(matchQty); err != nil {
			return trades, err
		}
		if err := candidate.Reduce(matchQty); err != nil {
			return trades, err
		}
		if candidate.Exhausted() {
			if err := engine.book.Remove(candidate); err != nil {
				return trades, err
			}
		}
	}

	if !order.Exhausted() {
		return trades, engine.book.Insert(order)
	}
	return trades, nil
}

// crosses reports whether the incoming order's price is acceptable against
// the best opposing resting order. Sides are price-sorted, so if the best
// opposing order does not cross, no other resting order can.
func crosses(incoming, resting *Order) bool {
	if incoming.Side == Buy {
		return incoming.Price >= resting.Price
	}
	return incoming.Price <= resting.Price
}
