package subscription

import (
	"fmt"
	"strings"
)

// Tier is a subscription plan level.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Unlimited disables the quota check when used as a monthly limit
// (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// AllTiers lists tiers from the most restricted to the least.
func AllTiers() []Tier {
	return []Tier{TierFree, TierPro, TierEnterprise}
}

// ParseTier resolves a tier name, ignoring case and surrounding spaces.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

func (t Tier) String() string {
	return string(t)
}
