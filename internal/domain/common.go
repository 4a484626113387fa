package domain

import "strings"

// Market identifies the exchange group a position was traded on.
type Market string

const (
	MarketUK Market = "UK"
	MarketUS Market = "US"
)

// ParseMarket normalises a market code. Unrecognised codes are kept verbatim so
// they still form their own group in breakdowns.
func ParseMarket(s string) Market {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "UK", "LSE":
		return MarketUK
	case "US", "NYSE", "NASDAQ":
		return MarketUS
	default:
		return Market(s)
	}
}

// PositionStatus represents the status of a journal position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// ParseStatus converts a free-form status string. Anything other than
// "closed" is treated as open.
func ParseStatus(s string) PositionStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusClosed)) {
		return StatusClosed
	}
	return StatusOpen
}

// Common exit reasons. ExitReason is free text, these are only the labels the
// journal suggests.
const (
	ExitReasonStopLoss   = "Stop Loss Hit"
	ExitReasonTarget     = "Target Reached"
	ExitReasonManual     = "Manual Exit"
	ExitReasonTimeStop   = "Time Stop"
	ExitReasonTrailing   = "Trailing Stop"
	ExitReasonEarnings   = "Earnings"
	ExitReasonInvalidSet = "Setup Invalidated"
)

// UnknownGroup is the label used for records missing a categorical value.
const UnknownGroup = "unknown"
