package cli

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"matchbook/internal/engine"
)

// ErrParse rejects input lines that do not match the order grammar.
var ErrParse = errors.New("bad input")

// orderPattern is the order grammar: a case-insensitive side keyword,
// quantity@price, and an optional client-assigned #id.
var orderPattern = regexp.MustCompile(
	`^(?i)(buy|sell)[ \t]+([0-9]+)[ \t]*@[ \t]*([0-9]+)(?:[ \t]+#([0-9]+))?$`)

// Parser turns operator input lines into orders. When a line omits the #id,
// the parser assigns the next value of its own counter, keeping ids
// deterministic within a session.
type Parser struct {
	nextID int64
}

// Parse builds an order from one input line. Lines that do not match the
// grammar fail with ErrParse; lines that parse but describe an illegal order
// fail with engine.ErrInvalidOrder. Both are recoverable per line.
func (p *Parser) Parse(line string) (*engine.Order, error) {
	m := orderPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil, errors.Wrapf(ErrParse,
			"expected buy|sell <qty>@<price> [#<id>], got %q", line)
	}

	side := engine.Buy
	if strings.EqualFold(m[1], "sell") {
		side = engine.Sell
	}
	quantity, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "quantity %q out of range", m[2])
	}
	price, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "price %q out of range", m[3])
	}

	var id int64
	if m[4] != "" {
		if id, err = strconv.ParseInt(m[4], 10, 64); err != nil {
			return nil, errors.Wrapf(ErrParse, "id %q out of range", m[4])
		}
	} else {
		p.nextID++
		id = p.nextID
	}

	return engine.NewOrder(id, side, price, quantity)
}
