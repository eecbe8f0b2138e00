package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ManaCost represents a parsed mana cost.
type ManaCost struct {
	Generic   int
	White     int
	Blue      int
	Black     int
	Red       int
	Green     int
	Colorless int
	X         bool // X in cost (e.g., {X}{R})
	Hybrid    []HybridCost
}

// HybridCost represents a hybrid mana symbol (e.g., {W/U}, {2/B}, {G/P}).
type HybridCost struct {
	Options ColorSet
	// Generic is the generic alternative of a {2/B} style symbol.
	Generic int
}

// ParseCost parses a mana cost string (e.g., "{1}{G}", "{2}{R}{R}", "{X}{R}").
func ParseCost(costStr string) (*ManaCost, error) {
	cost := &ManaCost{}
	if strings.TrimSpace(costStr) == "" {
		return cost, nil
	}

	for _, match := range symbolPattern.FindAllStringSubmatch(costStr, -1) {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))

		switch symbol {
		case "X", "Y", "Z":
			cost.X = true
		case "W":
			cost.White++
		case "U":
			cost.Blue++
		case "B":
			cost.Black++
		case "R":
			cost.Red++
		case "G":
			cost.Green++
		case "C":
			cost.Colorless++
		default:
			if num, err := strconv.Atoi(symbol); err == nil {
				cost.Generic += num
			} else if strings.Contains(symbol, "/") {
				cost.Hybrid = append(cost.Hybrid, parseHybridCost(symbol))
			} else {
				return nil, fmt.Errorf("unknown mana symbol: {%s}", symbol)
			}
		}
	}

	return cost, nil
}

// parseHybridCost parses a hybrid symbol like "W/U", "2/B" or "G/P".
// Phyrexian halves are ignored; the colored half must be paid.
func parseHybridCost(symbol string) HybridCost {
	var h HybridCost
	for _, part := range strings.Split(symbol, "/") {
		part = strings.TrimSpace(part)
		if num, err := strconv.Atoi(part); err == nil {
			h.Generic = num
			continue
		}
		if len(part) == 1 {
			if t, ok := TypeFromSymbol(part[0]); ok {
				h.Options = h.Options.With(t)
			}
		}
	}
	return h
}

// ManaValue returns the converted cost with X counted as zero.
func (mc *ManaCost) ManaValue() int {
	total := mc.Generic + mc.White + mc.Blue + mc.Black + mc.Red + mc.Green + mc.Colorless
	for _, h := range mc.Hybrid {
		if h.Generic > 1 {
			total += h.Generic
		} else {
			total++
		}
	}
	return total
}

// Colors returns the colors that appear in the cost.
func (mc *ManaCost) Colors() ColorSet {
	var set ColorSet
	if mc.White > 0 {
		set = set.With(ManaWhite)
	}
	if mc.Blue > 0 {
		set = set.With(ManaBlue)
	}
	if mc.Black > 0 {
		set = set.With(ManaBlack)
	}
	if mc.Red > 0 {
		set = set.With(ManaRed)
	}
	if mc.Green > 0 {
		set = set.With(ManaGreen)
	}
	for _, h := range mc.Hybrid {
		set = set.Union(h.Options.Colors())
	}
	return set
}

// colored returns the amount of a colored requirement.
func (mc *ManaCost) colored(t ManaType) int {
	switch t {
	case ManaWhite:
		return mc.White
	case ManaBlue:
		return mc.Blue
	case ManaBlack:
		return mc.Black
	case ManaRed:
		return mc.Red
	case ManaGreen:
		return mc.Green
	case ManaColorless:
		return mc.Colorless
	default:
		return 0
	}
}

// String returns a string representation of the mana cost.
func (mc *ManaCost) String() string {
	var parts []string
	if mc.X {
		parts = append(parts, "{X}")
	}
	if mc.Generic > 0 {
		parts = append(parts, fmt.Sprintf("{%d}", mc.Generic))
	}
	for _, t := range AllTypes {
		for i := 0; i < mc.colored(t); i++ {
			parts = append(parts, "{"+t.Symbol()+"}")
		}
	}
	for _, h := range mc.Hybrid {
		opts := h.Options.String()
		if h.Generic > 0 {
			opts = strconv.Itoa(h.Generic) + opts
		}
		parts = append(parts, "{"+strings.Join(strings.Split(opts, ""), "/")+"}")
	}
	return strings.Join(parts, "")
}

// WithGeneric returns a copy of the cost with extra generic mana, used for
// commander tax.
func (mc *ManaCost) WithGeneric(extra int) *ManaCost {
	cp := *mc
	cp.Hybrid = append([]HybridCost(nil), mc.Hybrid...)
	cp.Generic += extra
	if cp.Generic < 0 {
		cp.Generic = 0
	}
	return &cp
}

// ApplyReduction applies a generic cost reduction. Colored requirements are
// never reduced.
func (mc *ManaCost) ApplyReduction(genericReduction int) *ManaCost {
	if genericReduction <= 0 {
		return mc
	}
	return mc.WithGeneric(-genericReduction)
}
