package leaderboard

import (
	"math"
	"strconv"

	"github.com/inaiurai/leaderboard/internal/models"
)

// FormatReputation renders a score as a whole percentage, e.g. "98%".
// Halves round up.
func FormatReputation(r models.Reputation) string {
	return strconv.FormatFloat(math.Round(r.Percent()), 'f', 0, 64) + "%"
}

// FormatEarnings renders dollars in thousands with one decimal, e.g. "$12.5K".
// Halves round up.
func FormatEarnings(dollars float64) string {
	return "$" + strconv.FormatFloat(math.Round(dollars/100)/10, 'f', 1, 64) + "K"
}

// TruncateAddress keeps the first 6 and last 4 characters of an address.
// Addresses too short to shorten are returned as is.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// RankMedal is the podium marker for a 1-based rank.
func RankMedal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "#" + strconv.Itoa(rank)
	}
}

// TierBadge describes how a tier is presented.
type TierBadge struct {
	Emoji string
	Name  string
	Class string
}

// Label is the emoji followed by the tier name, e.g. "🏆 Legendary".
func (b TierBadge) Label() string {
	return b.Emoji + " " + b.Name
}

// ShortLabel is the emoji alone, for narrow columns.
func (b TierBadge) ShortLabel() string {
	return b.Emoji
}

// BadgeFor returns the badge of a tier. Unknown tiers get the seedling badge.
func BadgeFor(t models.Tier) TierBadge {
	switch t {
	case models.TierLegendary:
		return TierBadge{Emoji: "🏆", Name: "Legendary", Class: "tier-legendary"}
	case models.TierVeteran:
		return TierBadge{Emoji: "⭐", Name: "Veteran", Class: "tier-veteran"}
	case models.TierEstablished:
		return TierBadge{Emoji: "🌳", Name: "Established", Class: "tier-established"}
	case models.TierSprout:
		return TierBadge{Emoji: "🌿", Name: "Sprout", Class: "tier-sprout"}
	default:
		return TierBadge{Emoji: "🌱", Name: "Seedling", Class: "tier-seedling"}
	}
}
