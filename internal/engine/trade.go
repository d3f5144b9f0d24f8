package engine

import "fmt"

// Trade records one match between an aggressor and a resting order. The price
// is always the resting order's price, so any price improvement accrues to
// the aggressor.
type Trade struct {
	AggressorID int64
	PassiveID   int64
	Price       int64
	Quantity    int64
}

func (t Trade) String() string {
	return fmt.Sprintf("TRADE %d@%d", t.Quantity, t.Price)
}
