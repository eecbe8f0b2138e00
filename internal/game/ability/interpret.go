package ability

import (
	"regexp"
	"strings"
)

// Rule is one matcher→descriptor builder. Rules are tried in order against
// each sentence; the first rule that builds a descriptor wins that sentence.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Build   func(m []string) (Descriptor, bool)
}

// Match applies the rule to a single normalized sentence.
func (r Rule) Match(sentence string) (Descriptor, bool) {
	m := r.Pattern.FindStringSubmatch(sentence)
	if m == nil {
		return Descriptor{}, false
	}
	d, ok := r.Build(m)
	if !ok {
		return Descriptor{}, false
	}
	d.Source = sentence
	return d, true
}

// triggered builds a descriptor for a trigger whose effect text is the last
// submatch.
func triggered(kind TriggerKind, scope Scope, conds ...Condition) func(m []string) (Descriptor, bool) {
	return func(m []string) (Descriptor, bool) {
		effs := parseEffects(m[len(m)-1])
		if len(effs) == 0 {
			return Descriptor{}, false
		}
		return Descriptor{Trigger: kind, Scope: scope, Conditions: conds, Effects: effs}, true
	}
}

func static(kind StaticKind) func(m []string) (Descriptor, bool) {
	return func(m []string) (Descriptor, bool) {
		return Descriptor{Trigger: TriggerStatic, Scope: ScopeAny, Static: kind}, true
	}
}

var rules = []Rule{
	{
		Name:    "prowess",
		Pattern: regexp.MustCompile(`^prowess$`),
		Build: func(m []string) (Descriptor, bool) {
			return Descriptor{
				Trigger:    TriggerOnCast,
				Scope:      ScopeSelf,
				Conditions: []Condition{CondNonCreatureSpell},
				Effects:    []Effect{{Kind: EffectPump, Power: 1, Toughness: 1, Target: TargetSelf, Expiry: ExpiresEndOfTurn}},
			}, true
		},
	},
	{
		Name:    "token-doubler",
		Pattern: regexp.MustCompile(`(?:create|creates) twice that many (?:of those )?tokens|twice that many of those tokens`),
		Build:   static(StaticTokenDoubler),
	},
	{
		Name:    "counter-doubler",
		Pattern: regexp.MustCompile(`twice that many (?:of those )?(?:[+-]1/[+-]1 )?counters`),
		Build:   static(StaticCounterDoubler),
	},
	{
		Name:    "mana-persistence",
		Pattern: regexp.MustCompile(`(?:don't|do not) lose (?:this|unspent)(?: [a-z]+)? mana|mana pools? (?:don't|do not) empty`),
		Build:   static(StaticManaPersistence),
	},
	{
		Name:    "mana-ability",
		Pattern: regexp.MustCompile(`^\{t\}: add (.+)$`),
		Build: func(m []string) (Descriptor, bool) {
			colors, amount := parseManaProduction(m[1])
			if amount == 0 {
				return Descriptor{}, false
			}
			return Descriptor{Trigger: TriggerStatic, Scope: ScopeSelf, Static: StaticManaAbility, Colors: colors, Amount: amount}, true
		},
	},
	{
		Name:    "anthem",
		Pattern: regexp.MustCompile(`^(other )?creatures you control get \+(\d+)/\+(\d+)(?: and have (.+))?$`),
		Build: func(m []string) (Descriptor, bool) {
			scope := ScopeAny
			if m[1] != "" {
				scope = ScopeAnother
			}
			return Descriptor{
				Trigger:   TriggerStatic,
				Scope:     scope,
				Static:    StaticAnthem,
				Power:     ParseNumber(m[2]),
				Toughness: ParseNumber(m[3]),
				Keywords:  ParseKeywordList(m[4]),
			}, true
		},
	},
	{
		Name:    "team-keyword",
		Pattern: regexp.MustCompile(`^(other )?creatures you control have (.+)$`),
		Build: func(m []string) (Descriptor, bool) {
			kws := ParseKeywordList(m[2])
			if len(kws) == 0 {
				return Descriptor{}, false
			}
			scope := ScopeAny
			if m[1] != "" {
				scope = ScopeAnother
			}
			return Descriptor{Trigger: TriggerStatic, Scope: scope, Static: StaticTeamKeyword, Keywords: kws}, true
		},
	},
	{
		Name:    "cost-reduction",
		Pattern: regexp.MustCompile(`^(creature |noncreature |instant and sorcery )?spells you cast cost \{(\d+)\} less to cast$`),
		Build: func(m []string) (Descriptor, bool) {
			d := Descriptor{Trigger: TriggerStatic, Scope: ScopeAny, Static: StaticCostReduction, Amount: ParseNumber(m[2])}
			switch strings.TrimSpace(m[1]) {
			case "creature":
				d.Conditions = []Condition{CondCreatureSpell}
			case "noncreature":
				d.Conditions = []Condition{CondNonCreatureSpell}
			case "instant and sorcery":
				d.Conditions = []Condition{CondInstantOrSorcery}
			}
			return d, true
		},
	},
	{
		Name:    "sacrifice-outlet",
		Pattern: regexp.MustCompile(`^sacrifice (?:a|another) creature: (.+)$`),
		Build:   triggered(TriggerActivated, ScopeAny),
	},
	{
		Name:    "upkeep",
		Pattern: regexp.MustCompile(`^at the beginning of (?:your|each) upkeep, (.+)$`),
		Build:   triggered(TriggerOnUpkeep, ScopeSelf),
	},
	{
		Name:    "end-step",
		Pattern: regexp.MustCompile(`^at the beginning of (?:your|the|each) end step, (.+)$`),
		Build:   triggered(TriggerOnEndStep, ScopeSelf),
	},
	{
		Name:    "begin-combat",
		Pattern: regexp.MustCompile(`^at the beginning of combat on your turn, (.+)$`),
		Build:   triggered(TriggerOnBeginCombat, ScopeSelf),
	},
	{
		Name:    "haste-attacks",
		Pattern: regexp.MustCompile(`^whenever (?:a|another) creature (?:you control )?with haste attacks, (.+)$`),
		Build:   triggered(TriggerOnAttack, ScopeAny, CondRequiresHaste),
	},
	{
		Name:    "self-attacks",
		Pattern: regexp.MustCompile(`^whenever ~ attacks(?: or blocks)?, (.+)$`),
		Build:   triggered(TriggerOnAttack, ScopeSelf),
	},
	{
		Name:    "another-attacks",
		Pattern: regexp.MustCompile(`^whenever another creature you control attacks, (.+)$`),
		Build:   triggered(TriggerOnAttack, ScopeAnother),
	},
	{
		Name:    "any-attacks",
		Pattern: regexp.MustCompile(`^whenever (?:a creature you control attacks|a creature attacks|one or more creatures you control attack), (.+)$`),
		Build:   triggered(TriggerOnAttack, ScopeAny),
	},
	{
		Name:    "self-combat-damage",
		Pattern: regexp.MustCompile(`^whenever ~ deals combat damage to (?:a player|an opponent), (.+)$`),
		Build:   triggered(TriggerOnCombatDamage, ScopeSelf),
	},
	{
		Name:    "any-combat-damage",
		Pattern: regexp.MustCompile(`^whenever (?:a|another) creature you control deals combat damage to (?:a player|an opponent), (.+)$`),
		Build:   triggered(TriggerOnCombatDamage, ScopeAny),
	},
	{
		Name:    "self-dies",
		Pattern: regexp.MustCompile(`^when(?:ever)? ~ dies, (.+)$`),
		Build:   triggered(TriggerOnDeath, ScopeSelf),
	},
	{
		Name:    "another-dies",
		Pattern: regexp.MustCompile(`^whenever another (?:nontoken )?creature you control dies, (.+)$`),
		Build:   triggered(TriggerOnDeath, ScopeAnother),
	},
	{
		Name:    "any-dies",
		Pattern: regexp.MustCompile(`^whenever a (?:nontoken )?creature you control dies, (.+)$`),
		Build:   triggered(TriggerOnDeath, ScopeAny),
	},
	{
		Name:    "self-leaves",
		Pattern: regexp.MustCompile(`^when(?:ever)? ~ leaves the battlefield, (.+)$`),
		Build:   triggered(TriggerOnLeaves, ScopeSelf),
	},
	{
		Name:    "flash-enters",
		Pattern: regexp.MustCompile(`^whenever (?:a|another) creature (?:you control )?with flash enters(?: the battlefield)?(?: under your control)?, (.+)$`),
		Build:   triggered(TriggerOnEnter, ScopeAny, CondRequiresFlash),
	},
	{
		Name:    "self-enters",
		Pattern: regexp.MustCompile(`^when(?:ever)? ~ enters(?: the battlefield)?(?: under your control)?, (.+)$`),
		Build:   triggered(TriggerOnEnter, ScopeSelf),
	},
	{
		Name:    "another-enters",
		Pattern: regexp.MustCompile(`^whenever another (?:nontoken )?creature (?:you control enters|enters(?: the battlefield)? under your control|enters)(?: the battlefield)?, (.+)$`),
		Build:   triggered(TriggerOnEnter, ScopeAnother, CondCreature),
	},
	{
		Name:    "any-enters",
		Pattern: regexp.MustCompile(`^whenever a (?:nontoken )?creature (?:you control enters|enters(?: the battlefield)? under your control)(?: the battlefield)?, (.+)$`),
		Build:   triggered(TriggerOnEnter, ScopeAny, CondCreature),
	},
	{
		Name:    "cast",
		Pattern: regexp.MustCompile(`^whenever you cast (?:an? )?(noncreature |instant or sorcery |creature )?spell( with flash)?, (.+)$`),
		Build: func(m []string) (Descriptor, bool) {
			var conds []Condition
			switch strings.TrimSpace(m[1]) {
			case "noncreature":
				conds = append(conds, CondNonCreatureSpell)
			case "instant or sorcery":
				conds = append(conds, CondInstantOrSorcery)
			case "creature":
				conds = append(conds, CondCreatureSpell)
			}
			if m[2] != "" {
				conds = append(conds, CondRequiresFlash)
			}
			return triggered(TriggerOnCast, ScopeAny, conds...)(m)
		},
	},
	{
		Name:    "resolve",
		Pattern: regexp.MustCompile(`^(?:(?:then|and),? )?([^:]+)$`),
		Build: func(m []string) (Descriptor, bool) {
			text := m[1]
			if strings.HasPrefix(text, "when") || strings.HasPrefix(text, "at the beginning") {
				return Descriptor{}, false
			}
			return triggered(TriggerOnResolve, ScopeSelf)(m)
		},
	},
}

// Rules returns the ordered interpretation rules.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Interpret converts normalized rules text into ability descriptors. Sentences
// no rule recognizes contribute nothing.
func Interpret(text string) []Descriptor {
	var out []Descriptor
	for _, sentence := range sentences(text) {
		for _, r := range rules {
			if d, ok := r.Match(sentence); ok {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Unrecognized returns the sentences of text that no rule matched. Callers
// log them at debug level.
func Unrecognized(text string) []string {
	var out []string
	for _, sentence := range sentences(text) {
		if IsKeyword(sentence) {
			continue
		}
		matched := false
		for _, r := range rules {
			if _, ok := r.Match(sentence); ok {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, sentence)
		}
	}
	return out
}
