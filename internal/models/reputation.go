package models

import "math"

// Reputation is a score in basis points, 0 to MaxReputation.
type Reputation int

// MaxReputation is the top of the canonical scale.
const MaxReputation Reputation = 10000

// DefaultReputationPercent is used when a source omits the score.
const DefaultReputationPercent = 50

// PercentScale is the 0–100 scale used by the remote API, the UI slider and
// the tier thresholds.
const PercentScale = 100

// ReputationFromScale converts a score measured on [0, max] to basis points.
// Values are rounded and clamped to the canonical range.
func ReputationFromScale(v, max float64) Reputation {
	if max <= 0 || math.IsNaN(v) {
		return 0
	}
	bp := math.Round(v / max * float64(MaxReputation))
	if bp < 0 {
		return 0
	}
	if bp > float64(MaxReputation) {
		return MaxReputation
	}
	return Reputation(bp)
}

// ReputationFromPercent converts a 0–100 score to basis points.
func ReputationFromPercent(p float64) Reputation {
	return ReputationFromScale(p, PercentScale)
}

// Percent returns the score on the 0–100 scale.
func (r Reputation) Percent() float64 {
	return float64(r) * PercentScale / float64(MaxReputation)
}

// Tier derives the classification label from the score.
func (r Reputation) Tier() Tier {
	switch {
	case r >= ReputationFromPercent(80):
		return TierLegendary
	case r >= ReputationFromPercent(60):
		return TierVeteran
	case r >= ReputationFromPercent(40):
		return TierEstablished
	case r >= ReputationFromPercent(20):
		return TierSprout
	default:
		return TierSeedling
	}
}

// Tier is a reputation-derived classification, seedling through legendary.
type Tier string

const (
	TierLegendary   Tier = "legendary"
	TierVeteran     Tier = "veteran"
	TierEstablished Tier = "established"
	TierSprout      Tier = "sprout"
	TierSeedling    Tier = "seedling"
)

// ParseTier returns the tier for s, defaulting to seedling.
func ParseTier(s string) Tier {
	switch t := Tier(s); t {
	case TierLegendary, TierVeteran, TierEstablished, TierSprout:
		return t
	default:
		return TierSeedling
	}
}
