package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StrategyKind tags the variant of an AlertStrategy so it can be persisted
type StrategyKind string

const (
	StrategyKindThreshold StrategyKind = "THRESHOLD"
	StrategyKindCustom    StrategyKind = "CUSTOM"
)

// AlertStrategy decides whether an accumulated amount breaches an alert's trigger.
// Implementations are pure functions of their inputs and their own parameters.
type AlertStrategy interface {
	ShouldTrigger(total decimal.Decimal, periodicity Periodicity, category *Category) bool
	Kind() StrategyKind
}

// ThresholdStrategy fires when the total is strictly greater than Threshold.
// Periodicity and category are already applied by the aggregator and are ignored.
type ThresholdStrategy struct {
	Threshold decimal.Decimal
}

// NewThresholdStrategy creates a threshold strategy; negative thresholds are rejected
func NewThresholdStrategy(threshold decimal.Decimal) (ThresholdStrategy, error) {
	if threshold.IsNegative() {
		return ThresholdStrategy{}, NewValidationError("threshold", "cannot be negative")
	}
	return ThresholdStrategy{Threshold: threshold}, nil
}

func (s ThresholdStrategy) ShouldTrigger(total decimal.Decimal, _ Periodicity, _ *Category) bool {
	return total.GreaterThan(s.Threshold)
}

func (s ThresholdStrategy) Kind() StrategyKind {
	return StrategyKindThreshold
}

func (s ThresholdStrategy) String() string {
	return fmt.Sprintf("threshold %s", s.Threshold.StringFixed(2))
}

// StrategyFunc adapts a plain function to AlertStrategy
type StrategyFunc func(total decimal.Decimal, periodicity Periodicity, category *Category) bool

func (f StrategyFunc) ShouldTrigger(total decimal.Decimal, periodicity Periodicity, category *Category) bool {
	return f(total, periodicity, category)
}

func (f StrategyFunc) Kind() StrategyKind {
	return StrategyKindCustom
}
