package game

import (
	"sort"

	"github.com/magefree/mage-goldfish/internal/game/card"
)

// HandPolicy decides whether an opening hand is kept and which cards go to
// the bottom after mulligans.
type HandPolicy interface {
	// Keep reports whether hand is kept after the given number of mulligans.
	Keep(hand []*card.Definition, mulligans int) bool
	// Bottom picks n cards of hand to put on the bottom of the library.
	Bottom(hand []*card.Definition, n int) []*card.Definition
}

// LondonMulligan keeps hands with a playable land count and otherwise
// draws a fresh hand, bottoming one card per mulligan.
type LondonMulligan struct {
	MinLands     int
	MaxLands     int
	MaxMulligans int
}

// DefaultHandPolicy mulligans hands with fewer than two or more than five
// lands, once.
func DefaultHandPolicy() LondonMulligan {
	return LondonMulligan{MinLands: 2, MaxLands: 5, MaxMulligans: 1}
}

// Keep implements HandPolicy.
func (m LondonMulligan) Keep(hand []*card.Definition, mulligans int) bool {
	if mulligans >= m.MaxMulligans {
		return true
	}
	lands := countLands(hand)
	return lands >= m.MinLands && lands <= m.MaxLands
}

// Bottom implements HandPolicy. Excess lands go first when the hand is land
// heavy, otherwise the most expensive spells.
func (m LondonMulligan) Bottom(hand []*card.Definition, n int) []*card.Definition {
	if n <= 0 {
		return nil
	}
	sorted := append([]*card.Definition(nil), hand...)
	landHeavy := countLands(hand) > len(hand)/2
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Land != b.Land {
			return a.Land == landHeavy
		}
		if a.ManaValue != b.ManaValue {
			return a.ManaValue > b.ManaValue
		}
		return a.Name < b.Name
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func countLands(hand []*card.Definition) int {
	n := 0
	for _, c := range hand {
		if c.Land {
			n++
		}
	}
	return n
}
