package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"matchbook/internal/engine"
	"matchbook/internal/gateway"
)

// PrintCommand requests a snapshot of both book sides.
const PrintCommand = "PRINT"

// Loop is the line-oriented operator front: one order or command per line,
// trades and snapshots written to out. Diagnostics go through the logger,
// keeping out clean for protocol output.
type Loop struct {
	gateway *gateway.Gateway
	parser  Parser
	out     io.Writer
}

func NewLoop(gw *gateway.Gateway, out io.Writer) *Loop {
	return &Loop{gateway: gw, out: out}
}

// Run processes lines from in until end of input or context cancellation.
// Malformed and rejected orders are reported and the loop continues; only
// I/O failures and gateway shutdown are fatal.
func (l *Loop) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == PrintCommand:
			if err := l.print(ctx); err != nil {
				return err
			}
		default:
			if err := l.submit(ctx, line); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "reading input")
	}

	_, err := fmt.Fprintln(l.out, "Good bye!")
	return err
}

func (l *Loop) submit(ctx context.Context, line string) error {
	order, err := l.parser.Parse(line)
	if err != nil {
		log.Error().Err(err).Msg("rejected input line")
		return nil
	}

	trades, err := l.gateway.Submit(ctx, order)
	if errors.Is(err, engine.ErrInvalidOrder) {
		log.Error().Err(err).Msg("order rejected")
		return nil
	}
	if err != nil {
		return err
	}

	for _, trade := range trades {
		if _, err := fmt.Fprintln(l.out, trade.String()); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) print(ctx context.Context) error {
	for _, side := range []engine.Side{engine.Buy, engine.Sell} {
		if _, err := fmt.Fprintf(l.out, "--- %v ---\n", side); err != nil {
			return err
		}
		orders, err := l.gateway.Snapshot(ctx, side)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if _, err := fmt.Fprintln(l.out, order.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
