package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/engine"
)

const (
	SUBMIT_CHAN_SIZE = 100
)

// ErrStopped rejects requests made after the gateway has shut down.
var ErrStopped = errors.New("gateway stopped")

type submitRequest struct {
	order *engine.Order
	reply chan submitReply
}

type submitReply struct {
	trades []engine.Trade
	err    error
}

type snapshotRequest struct {
	side  engine.Side
	reply chan []engine.Order
}

// Gateway feeds a single matching worker from a queue. Price-time priority
// only holds under strict sequential matching, so every submission and every
// snapshot runs on that one worker: callers on any number of goroutines get
// serialized access to the book, and a snapshot can never observe a book
// mid-mutation.
type Gateway struct {
	engine    *engine.Engine
	t         tomb.Tomb
	submits   chan submitRequest
	snapshots chan snapshotRequest

	// Session id, for log correlation only.
	session string
}

func New(eng *engine.Engine) *Gateway {
	g := &Gateway{
		engine:    eng,
		submits:   make(chan submitRequest, SUBMIT_CHAN_SIZE),
		snapshots: make(chan snapshotRequest),
		session:   uuid.New().String(),
	}
	g.t.Go(g.worker)

	log.Info().Str("session", g.session).Msg("gateway running")
	return g
}

// worker owns the engine. It actions queued requests one at a time until the
// gateway is killed.
func (g *Gateway) worker() error {
	for {
		select {
		case <-g.t.Dying():
			return nil
		case req := <-g.submits:
			trades, err := g.engine.Submit(req.order)
			if err != nil {
				log.Error().
					Err(err).
					Str("session", g.session).
					Msg("order rejected")
			}
			req.reply <- submitReply{trades: trades, err: err}
		case req := <-g.snapshots:
			var orders []engine.Order
			for order := range g.engine.Book().Snapshot(req.side) {
				orders = append(orders, order)
			}
			req.reply <- orders
		}
	}
}

// Submit queues order for the matching worker and waits for its trades.
func (g *Gateway) Submit(ctx context.Context, order *engine.Order) ([]engine.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := submitRequest{order: order, reply: make(chan submitReply, 1)}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.t.Dying():
		return nil, ErrStopped
	case g.submits <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.t.Dying():
		return nil, ErrStopped
	case reply := <-req.reply:
		return reply.trades, reply.err
	}
}

// Snapshot returns the resting orders on side in priority order, read by the
// matching worker between submissions.
func (g *Gateway) Snapshot(ctx context.Context, side engine.Side) ([]engine.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := snapshotRequest{side: side, reply: make(chan []engine.Order, 1)}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.t.Dying():
		return nil, ErrStopped
	case g.snapshots <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.t.Dying():
		return nil, ErrStopped
	case orders := <-req.reply:
		return orders, nil
	}
}

// Stop shuts the worker down and waits for it to exit. Requests still queued
// are dropped; their callers are released with ErrStopped.
func (g *Gateway) Stop() error {
	log.Info().Str("session", g.session).Msg("gateway shutting down")
	g.t.Kill(nil)
	return g.t.Wait()
}
