package models

import "fmt"

// MarketType represents the type of betting market
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
	MarketProp      MarketType = "prop"
)

// ParseMarketType converts a raw market name into a MarketType
func ParseMarketType(name string) (MarketType, error) {
	switch MarketType(name) {
	case MarketMoneyline, MarketSpread, MarketTotal, MarketProp:
		return MarketType(name), nil
	}
	return "", fmt.Errorf("unknown market type %q", name)
}

// IsSide reports whether the market is a side market (moneyline/spread/total)
// as opposed to a prop. Side markets use the lower edge threshold.
func (m MarketType) IsSide() bool {
	return m == MarketMoneyline || m == MarketSpread || m == MarketTotal
}

// RequiresLine reports whether quotes in this market must carry a line value
func (m MarketType) RequiresLine() bool {
	return m == MarketSpread || m == MarketTotal
}

// SelectionSide identifies which side of a market a quote prices
type SelectionSide string

const (
	SideHome  SelectionSide = "home"
	SideAway  SelectionSide = "away"
	SideOver  SelectionSide = "over"
	SideUnder SelectionSide = "under"
)

// Selection is a structured bet side, resolved once at ingestion time.
// The side field replaces substring matching on team names in free text.
type Selection struct {
	Side  SelectionSide `db:"side" json:"side" validate:"required,oneof=home away over under"`
	Label string        `db:"label" json:"label"` // display text from the sportsbook
	Line  *float64      `db:"line" json:"line,omitempty"`
}

// Opposite returns the other side of a two-way market
func (s SelectionSide) Opposite() (SelectionSide, error) {
	switch s {
	case SideHome:
		return SideAway, nil
	case SideAway:
		return SideHome, nil
	case SideOver:
		return SideUnder, nil
	case SideUnder:
		return SideOver, nil
	}
	return "", fmt.Errorf("no opposite for side %q", s)
}
