package strategy

import (
	"fmt"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
)

// Direction is the side a strategy trades
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Strategy is a declarative rule set evaluated bar by bar by the backtest engine
type Strategy struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Direction           Direction       `json:"direction,omitempty"`
	Entry               EntryConditions `json:"entry"`
	Exit                ExitConditions  `json:"exit"`
	PositionSizePercent float64         `json:"position_size_percent"`
	MaxPositions        int             `json:"max_positions"`
}

// Side returns the trading direction, long unless short is configured
func (s Strategy) Side() Direction {
	if s.Direction == DirectionShort {
		return DirectionShort
	}
	return DirectionLong
}

// Validate checks the rule set before a run. A strategy without any entry
// predicate is valid; it simply never trades.
func (s Strategy) Validate() error {
	if s.Direction != "" && s.Direction != DirectionLong && s.Direction != DirectionShort {
		return engerrors.NewStrategyError("strategy", "Validate",
			fmt.Sprintf("unknown direction %q", s.Direction))
	}
	if !s.Entry.HasConditions() {
		return nil
	}
	if s.MaxPositions <= 0 {
		return engerrors.NewStrategyError("strategy", "Validate",
			fmt.Sprintf("max positions must be positive, got %d", s.MaxPositions))
	}
	if s.PositionSizePercent <= 0 || s.PositionSizePercent > 100 {
		return engerrors.NewStrategyError("strategy", "Validate",
			fmt.Sprintf("position size must be in (0, 100], got %.2f", s.PositionSizePercent))
	}
	if tp := s.Exit.TakeProfitPercent; tp != nil && *tp <= 0 {
		return engerrors.NewStrategyError("strategy", "Validate", "take profit must be positive")
	}
	if sl := s.Exit.StopLossPercent; sl != nil && *sl <= 0 {
		return engerrors.NewStrategyError("strategy", "Validate", "stop loss must be positive")
	}
	return nil
}

// Clone returns a deep copy so optimizer candidates never share pointers
func (s Strategy) Clone() Strategy {
	out := s
	out.Entry = s.Entry.clone()
	out.Exit = s.Exit.clone()
	return out
}

// Float returns a pointer to v, for building conditions inline
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
