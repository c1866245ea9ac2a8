// Package reward derives discount tiers and lifetime badges from verified
// check-ins. State is always recomputed from counts, never incremented, so a
// replayed update cannot drift the totals.
package reward

import (
	"time"

	id "trustgate/pkg/domain"
)

// RollingWindow is the lookback for tier computation.
const RollingWindow = 30 * 24 * time.Hour

// Tier is the rolling-window discount tier.
type Tier string

const (
	TierNone   Tier = "None"
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// Tier thresholds over the rolling verified count.
const (
	BronzeThreshold = 1
	SilverThreshold = 3
	GoldThreshold   = 4
)

// Discount percentages per tier.
const (
	BronzeDiscount = 0
	SilverDiscount = 4
	GoldDiscount   = 8
)

// Badge is the lifetime achievement level. Badges never downgrade.
type Badge string

const (
	BadgeNone      Badge = "None"
	BadgeBronze    Badge = "Bronze"
	BadgeSilver    Badge = "Silver"
	BadgeGold      Badge = "Gold"
	BadgePlatinum  Badge = "Platinum"
	BadgeLegendary Badge = "Legendary"
)

// State is the derived reward standing for one user.
type State struct {
	UserID          id.UserID
	RollingCount    int
	LifetimeCount   int
	Tier            Tier
	DiscountPercent int
	GoldStacks      int
	Badge           Badge
	UpdatedAt       time.Time
}

// TierFor derives the tier, discount, and stacked gold count from the rolling
// verified count.
func TierFor(rollingCount int) (Tier, int, int) {
	switch {
	case rollingCount >= GoldThreshold:
		return TierGold, GoldDiscount, rollingCount / GoldThreshold
	case rollingCount >= SilverThreshold:
		return TierSilver, SilverDiscount, 0
	case rollingCount >= BronzeThreshold:
		return TierBronze, BronzeDiscount, 0
	default:
		return TierNone, 0, 0
	}
}

// BadgeFor derives the badge earned by a lifetime verified count.
func BadgeFor(lifetimeCount int) Badge {
	switch {
	case lifetimeCount >= 100:
		return BadgeLegendary
	case lifetimeCount >= 50:
		return BadgePlatinum
	case lifetimeCount >= 30:
		return BadgeGold
	case lifetimeCount >= 15:
		return BadgeSilver
	case lifetimeCount >= 5:
		return BadgeBronze
	default:
		return BadgeNone
	}
}

var badgeRank = map[Badge]int{
	BadgeNone:      0,
	BadgeBronze:    1,
	BadgeSilver:    2,
	BadgeGold:      3,
	BadgePlatinum:  4,
	BadgeLegendary: 5,
}

// MaxBadge keeps the higher of the two badges, enforcing never-downgrade.
func MaxBadge(a, b Badge) Badge {
	if badgeRank[a] >= badgeRank[b] {
		return a
	}
	return b
}
