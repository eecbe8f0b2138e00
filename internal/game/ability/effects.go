package ability

import (
	"regexp"
	"sort"
	"strings"
)

const num = `(a|an|one|two|three|four|five|six|seven|eight|nine|ten|x|\d+)`

const subject = `(~|target creature you control|target creature|creatures you control|other creatures you control|each creature you control|each other creature you control|it|that creature)`

// clause recognizes one effect phrase anywhere inside an effect sentence.
type clause struct {
	pattern *regexp.Regexp
	build   func(m []string) []Effect
}

var clauses = []clause{
	{
		pattern: regexp.MustCompile(`search your library for (?:a|an|up to one|up to two|` + num + `) basic land cards?[^.]*?put (?:it|them|that card|those cards|one of them|one) onto the battlefield( tapped)?`),
		build: func(m []string) []Effect {
			n := 1
			if m[1] != "" {
				n = ParseNumber(m[1])
			}
			if strings.Contains(m[0], "up to two") {
				n = 2
			}
			if strings.Contains(m[0], "put one") {
				n = 1
			}
			return []Effect{{Kind: EffectFetchLand, Amount: n, Tapped: m[2] != ""}}
		},
	},
	{
		pattern: regexp.MustCompile(`draws? ` + num + ` cards?`),
		build: func(m []string) []Effect {
			return []Effect{{Kind: EffectDraw, Amount: ParseNumber(m[1])}}
		},
	},
	{
		pattern: regexp.MustCompile(`each opponent loses ` + num + ` life`),
		build: func(m []string) []Effect {
			return []Effect{{Kind: EffectDrain, Amount: ParseNumber(m[1])}}
		},
	},
	{
		pattern: regexp.MustCompile(`deals? ` + num + ` damage to (?:each opponent|any target|target opponent|target player|any one target|target player or planeswalker|each player)`),
		build: func(m []string) []Effect {
			return []Effect{{Kind: EffectDamage, Amount: ParseNumber(m[1])}}
		},
	},
	{
		pattern: regexp.MustCompile(`you gain (that much|` + num + `) life`),
		build: func(m []string) []Effect {
			amount := ParseNumber(m[2])
			if m[1] == "that much" {
				amount = -1
			}
			return []Effect{{Kind: EffectGainLife, Amount: amount}}
		},
	},
	{
		pattern: regexp.MustCompile(`you lose ` + num + ` life`),
		build: func(m []string) []Effect {
			return []Effect{{Kind: EffectLoseLife, Amount: ParseNumber(m[1])}}
		},
	},
	{
		pattern: regexp.MustCompile(`create ` + num + ` (?:tapped )?treasure tokens?`),
		build: func(m []string) []Effect {
			return []Effect{{Kind: EffectCreateTreasure, Amount: ParseNumber(m[1])}}
		},
	},
	{
		pattern: regexp.MustCompile(`create ` + num + ` (tapped )?(\d+)/(\d+) ([a-z' -]*?)\s*(?:creature )?tokens?(?: with ([a-z]+(?: strike)?(?:(?:, and |, | and )[a-z]+(?: strike)?)*))?`),
		build: func(m []string) []Effect {
			name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[5]), "creature"))
			eff := Effect{
				Kind:      EffectCreateToken,
				Amount:    ParseNumber(m[1]),
				Power:     ParseNumber(m[3]),
				Toughness: ParseNumber(m[4]),
				TokenName: name,
				Tapped:    m[2] != "",
			}
			if m[6] != "" {
				eff.Keywords = leadingKeywords(m[6])
			}
			return []Effect{eff}
		},
	},
	{
		pattern: regexp.MustCompile(`put ` + num + ` ([+-]1/[+-]1|[a-z]+) counters? on ` + subject),
		build: func(m []string) []Effect {
			return []Effect{{
				Kind:        EffectAddCounter,
				Amount:      ParseNumber(m[1]),
				CounterKind: m[2],
				Target:      parseTarget(m[3]),
			}}
		},
	},
	{
		pattern: regexp.MustCompile(subject + ` gets? \+(\d+|x)/\+(\d+|x)(?: and gains? ([a-z ,]+?))? until end of (turn|combat)`),
		build: func(m []string) []Effect {
			target := parseTarget(m[1])
			expiry := parseExpiry(m[5])
			effs := []Effect{{
				Kind:      EffectPump,
				Power:     ParseNumber(m[2]),
				Toughness: ParseNumber(m[3]),
				Target:    target,
				Expiry:    expiry,
			}}
			if kws := ParseKeywordList(m[4]); len(kws) > 0 {
				effs = append(effs, Effect{Kind: EffectGrantKeyword, Keywords: kws, Target: target, Expiry: expiry})
			}
			return effs
		},
	},
	{
		pattern: regexp.MustCompile(subject + ` gains? ([a-z ,]+?) until end of (turn|combat)`),
		build: func(m []string) []Effect {
			kws := ParseKeywordList(m[2])
			if len(kws) == 0 {
				return nil
			}
			return []Effect{{
				Kind:     EffectGrantKeyword,
				Keywords: kws,
				Target:   parseTarget(m[1]),
				Expiry:   parseExpiry(m[3]),
			}}
		},
	},
	{
		pattern: regexp.MustCompile(`add ((?:\{[wubrgc]\})+(?: or (?:\{[wubrgc]\})+)*|one mana of any color|` + num + ` mana of any one color)`),
		build: func(m []string) []Effect {
			colors, amount := parseManaProduction(m[1])
			if amount == 0 {
				return nil
			}
			return []Effect{{Kind: EffectAddMana, Colors: colors, Amount: amount}}
		},
	},
}

// parseEffects extracts every recognized effect clause from text in the order
// the clauses appear. Overlapping matches keep the earliest, longest one.
func parseEffects(text string) []Effect {
	type hit struct {
		start, end int
		effects    []Effect
	}
	var hits []hit
	for _, c := range clauses {
		for _, idx := range c.pattern.FindAllStringSubmatchIndex(text, -1) {
			m := submatches(text, idx)
			effs := c.build(m)
			if len(effs) == 0 {
				continue
			}
			hits = append(hits, hit{start: idx[0], end: idx[1], effects: effs})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	// "that much" takes the amount of the preceding effect. With none, the
	// -1 stays so the event amount is used when the effect is applied.
	var out []Effect
	consumed := -1
	for _, h := range hits {
		if h.start < consumed {
			continue
		}
		consumed = h.end
		for _, eff := range h.effects {
			if eff.Amount < 0 && len(out) > 0 {
				eff.Amount = out[len(out)-1].Amount
			}
			out = append(out, eff)
		}
	}
	return out
}

func submatches(text string, idx []int) []string {
	m := make([]string, len(idx)/2)
	for i := range m {
		if idx[2*i] >= 0 {
			m[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return m
}

func parseTarget(s string) Target {
	switch s {
	case "~":
		return TargetSelf
	case "it", "that creature":
		return TargetSubject
	case "creatures you control", "each creature you control":
		return TargetTeam
	case "other creatures you control", "each other creature you control":
		return TargetTeamOther
	default:
		return TargetBest
	}
}

func parseExpiry(s string) Expiry {
	switch s {
	case "combat":
		return ExpiresEndOfCombat
	case "turn":
		return ExpiresEndOfTurn
	default:
		return ExpiresNever
	}
}

// leadingKeywords returns the keywords at the start of a "with ..." list and
// stops at the first word that is not part of a keyword.
func leadingKeywords(list string) []string {
	var out []string
	for _, item := range listSplit.Split(strings.TrimSpace(list), -1) {
		item = strings.TrimSpace(item)
		if !knownKeywords[item] {
			break
		}
		out = append(out, item)
	}
	return out
}

var manaSymbol = regexp.MustCompile(`\{([wubrgc])\}`)

// parseManaProduction reads "{g}{g}", "{r} or {g}" and "one mana of any
// color" into a color string and an amount.
func parseManaProduction(s string) (string, int) {
	if strings.Contains(s, "any color") || strings.Contains(s, "any one color") {
		amount := 1
		if fields := strings.Fields(s); len(fields) > 0 {
			if n := ParseNumber(fields[0]); n > 0 {
				amount = n
			}
		}
		return "WUBRG", amount
	}
	symbols := manaSymbol.FindAllStringSubmatch(s, -1)
	if len(symbols) == 0 {
		return "", 0
	}
	var colors strings.Builder
	seen := make(map[string]bool)
	for _, sym := range symbols {
		c := strings.ToUpper(sym[1])
		if !seen[c] {
			seen[c] = true
			colors.WriteString(c)
		}
	}
	if strings.Contains(s, " or ") {
		return colors.String(), 1
	}
	return colors.String(), len(symbols)
}
