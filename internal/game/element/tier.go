package element

// Tier is the presentation bucket for a damage multiplier.
type Tier int

const (
	// TierNeutral is a multiplier of exactly 1.0.
	TierNeutral Tier = iota
	// TierEffective is a multiplier in (1.0, 1.5].
	TierEffective
	// TierSuperEffective is a multiplier above 1.5.
	TierSuperEffective
	// TierResisted is a multiplier below 1.0.
	TierResisted
)

// String returns the display label for the tier.
func (t Tier) String() string {
	switch t {
	case TierEffective:
		return "effective"
	case TierSuperEffective:
		return "super effective"
	case TierResisted:
		return "resisted"
	default:
		return "neutral"
	}
}

// Classify buckets a multiplier into its Tier.
func Classify(multiplier float64) Tier {
	switch {
	case multiplier > 1.5:
		return TierSuperEffective
	case multiplier > 1.0:
		return TierEffective
	case multiplier < 1.0:
		return TierResisted
	default:
		return TierNeutral
	}
}
