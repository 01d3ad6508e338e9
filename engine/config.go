/*
config.go - Tunable thresholds for the attribution engine

PURPOSE:
  Every global constant the diagnosis depends on lives here as a named,
  overridable parameter. The defaults are the documented operating point;
  changing sensitivity is a config change, never a code edit.

KNOBS:
  LookbackInstances        How many prior same-weekday samples feed the
                           baseline mean (caps staleness, ~6-7 months).
  UnderperformThreshold    Flag when sales < baseline * threshold.
  WeekendThreshold         Weekend rule fires when sales < baseline * this.
  SignificantDropThreshold Ratio below which the drop is "significant".
  PromotionRecencyDays     Window for the "promotion just ended" rule,
                           inclusive of the evaluated day.
  HighImpactDollars /      Dollar-gap tier boundaries (strictly greater
  MediumImpactDollars      than, shared by all stores).
  Workers                  Diagnosis fan-out; 0 means one per CPU.

FORMAT:
  Loaded from YAML with struct-tag defaults, same pattern as the server
  config. Validate() rejects nonsensical combinations up front.
*/
package engine

import (
	"errors"

	"github.com/creasty/defaults"
	"github.com/shopspring/decimal"
)

// Config holds every tunable parameter of the diagnosis.
type Config struct {
	LookbackInstances        int     `yaml:"lookbackInstances" default:"28"`
	UnderperformThreshold    float64 `yaml:"underperformThreshold" default:"0.8"`
	WeekendThreshold         float64 `yaml:"weekendThreshold" default:"0.7"`
	SignificantDropThreshold float64 `yaml:"significantDropThreshold" default:"-0.3"`
	PromotionRecencyDays     int     `yaml:"promotionRecencyDays" default:"14"`
	HighImpactDollars        float64 `yaml:"highImpactDollars" default:"1000"`
	MediumImpactDollars      float64 `yaml:"mediumImpactDollars" default:"500"`
	Workers                  int     `yaml:"workers" default:"0"`
}

// DefaultConfig returns the documented operating point.
func DefaultConfig() Config {
	var c Config
	defaults.MustSet(&c)
	return c
}

var (
	ErrInvalidLookback        = errors.New("lookback instances must be at least 1")
	ErrInvalidThreshold       = errors.New("thresholds must be within (0, 1)")
	ErrInvalidDropThreshold   = errors.New("significant-drop threshold must be negative")
	ErrInvalidRecencyWindow   = errors.New("promotion recency window must be at least 1 day")
	ErrInvalidImpactTiers     = errors.New("high-impact tier must exceed medium-impact tier")
	ErrInvalidWorkerCount     = errors.New("worker count cannot be negative")
)

// Validate rejects configurations the engine cannot run under.
func (c Config) Validate() error {
	if c.LookbackInstances < 1 {
		return ErrInvalidLookback
	}
	if c.UnderperformThreshold <= 0 || c.UnderperformThreshold >= 1 {
		return ErrInvalidThreshold
	}
	if c.WeekendThreshold <= 0 || c.WeekendThreshold >= 1 {
		return ErrInvalidThreshold
	}
	if c.SignificantDropThreshold >= 0 {
		return ErrInvalidDropThreshold
	}
	if c.PromotionRecencyDays < 1 {
		return ErrInvalidRecencyWindow
	}
	if c.HighImpactDollars <= c.MediumImpactDollars || c.MediumImpactDollars <= 0 {
		return ErrInvalidImpactTiers
	}
	if c.Workers < 0 {
		return ErrInvalidWorkerCount
	}
	return nil
}

// Decimal views of the float knobs. Converted once per engine, not per row.
func (c Config) underperformFactor() decimal.Decimal {
	return decimal.NewFromFloat(c.UnderperformThreshold)
}
func (c Config) weekendFactor() decimal.Decimal {
	return decimal.NewFromFloat(c.WeekendThreshold)
}
func (c Config) significantDrop() decimal.Decimal {
	return decimal.NewFromFloat(c.SignificantDropThreshold)
}
func (c Config) highImpact() decimal.Decimal {
	return decimal.NewFromFloat(c.HighImpactDollars)
}
func (c Config) mediumImpact() decimal.Decimal {
	return decimal.NewFromFloat(c.MediumImpactDollars)
}
