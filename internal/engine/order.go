package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidOrder rejects orders that cannot legally enter the book.
var ErrInvalidOrder = errors.New("invalid order")

// Order is a single instruction to buy or sell at a limit price. The
// remaining quantity only ever decreases: the matching loop reduces it in
// place, so the book observes partial fills without any reinsertion.
type Order struct {
	ID    int64 // Client assigned id, uniqueness is the client's problem
	Side  Side  // Order side, fixed for the life of the order
	Price int64 // Limiting price, fixed for the life of the order

	quantity int64  // Remaining unmatched quantity
	seq      uint64 // Arrival sequence, written by the book at insert
}

// NewOrder validates and creates an order. The side must be one of the two
// defined sides, and both price and quantity must be strictly positive.
func NewOrder(id int64, side Side, price, quantity int64) (*Order, error) {
	if !side.valid() {
		return nil, errors.Wrapf(ErrInvalidOrder, "unknown side %d", int(side))
	}
	if price <= 0 {
		return nil, errors.Wrapf(ErrInvalidOrder, "price must be > 0, got %d", price)
	}
	if quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidOrder, "quantity must be > 0, got %d", quantity)
	}
	return &Order{ID: id, Side: side, Price: price, quantity: quantity}, nil
}

// Quantity returns the remaining unmatched quantity.
func (o *Order) Quantity() int64 {
	return o.quantity
}

// Reduce consumes delta from the remaining quantity. Quantity never goes
// below zero and never increases, so delta must be in (0, remaining].
func (o *Order) Reduce(delta int64) error {
	if delta <= 0 || delta > o.quantity {
		return errors.Wrapf(ErrInvalidOrder,
			"cannot reduce remaining quantity %d by %d", o.quantity, delta)
	}
	o.quantity -= delta
	return nil
}

// Exhausted reports whether the order has no quantity left to match.
func (o *Order) Exhausted() bool {
	return o.quantity == 0
}

func (o *Order) String() string {
	return fmt.Sprintf("%v %d@%d", o.Side, o.quantity, o.Price)
}
