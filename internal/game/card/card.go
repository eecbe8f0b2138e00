// Package card holds the immutable card definitions shared by every simulated
// game.
package card

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/mana"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// Record is a card as supplied by deck-loading collaborators.
type Record struct {
	Name      string   `json:"name" yaml:"name" mapstructure:"name"`
	ManaCost  string   `json:"mana_cost" yaml:"mana_cost" mapstructure:"mana_cost"`
	TypeLine  string   `json:"type_line" yaml:"type_line" mapstructure:"type_line"`
	Text      string   `json:"text" yaml:"text" mapstructure:"text"`
	Power     string   `json:"power,omitempty" yaml:"power,omitempty" mapstructure:"power"`
	Toughness string   `json:"toughness,omitempty" yaml:"toughness,omitempty" mapstructure:"toughness"`
	Keywords  []string `json:"keywords,omitempty" yaml:"keywords,omitempty" mapstructure:"keywords"`
}

// Definition is the immutable identity of a card. It is built once per deck
// and shared read-only across all concurrently simulated games.
type Definition struct {
	Name     string
	ManaCost string
	TypeLine string
	// Text is the rules text with self references replaced by "~".
	Text string

	Cost      *mana.ManaCost
	ManaValue int

	Land         bool
	Basic        bool
	Creature     bool
	Artifact     bool
	Enchantment  bool
	Planeswalker bool
	Instant      bool
	Sorcery      bool
	Legendary    bool
	Subtypes     []string

	Power     int
	Toughness int
	Keywords  []string
	Abilities []ability.Descriptor

	// ProducedColors and ManaAmount describe what the card adds when tapped
	// for mana. Zero for cards that are not mana sources.
	ProducedColors mana.ColorSet
	ManaAmount     int
	ColorIdentity  mana.ColorSet

	// Optional ability slots with neutral defaults.
	DeathValue      int
	SacrificeOutlet bool
	Accelerant      bool
	EntersTapped    bool
	Token           bool
	Treasure        bool
}

var basicLandColors = map[string]mana.ManaType{
	"plains":   mana.ManaWhite,
	"island":   mana.ManaBlue,
	"swamp":    mana.ManaBlack,
	"mountain": mana.ManaRed,
	"forest":   mana.ManaGreen,
}

var (
	textSymbolPattern  = regexp.MustCompile(`\{([WUBRG])(?:/[WUBRGP])?\}`)
	selfPattern        = regexp.MustCompile(`(?i)\bthis (creature|artifact|enchantment|land|permanent)\b`)
	entersTappedRegexp = regexp.MustCompile(`(?i)enters(?: the battlefield)? tapped`)
)

// NewDefinition derives a Definition from a record.
func NewDefinition(rec Record) (*Definition, error) {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return nil, fmt.Errorf("card record has no name")
	}
	cost, err := mana.ParseCost(rec.ManaCost)
	if err != nil {
		return nil, fmt.Errorf("parse mana cost of %s: %w", name, err)
	}

	def := &Definition{
		Name:      name,
		ManaCost:  rec.ManaCost,
		TypeLine:  rec.TypeLine,
		Text:      NormalizeText(name, rec.Text),
		Cost:      cost,
		ManaValue: cost.ManaValue(),
		Power:     parseStat(rec.Power),
		Toughness: parseStat(rec.Toughness),
	}
	def.parseTypeLine(rec.TypeLine)
	def.Keywords = mergeKeywords(rec.Keywords, ability.Keywords(def.Text))
	def.Abilities = ability.Interpret(def.Text)
	if def.IsPermanent() {
		def.Abilities = withoutResolve(def.Abilities)
	}
	def.derive()
	return def, nil
}

// withoutResolve drops spell-effect descriptors, which only instants and
// sorceries carry out.
func withoutResolve(ds []ability.Descriptor) []ability.Descriptor {
	out := ds[:0:0]
	for _, d := range ds {
		if d.Trigger != ability.TriggerOnResolve {
			out = append(out, d)
		}
	}
	return out
}

// LoadAll converts records into definitions, failing on the first malformed
// record.
func LoadAll(records []Record) ([]*Definition, error) {
	defs := make([]*Definition, 0, len(records))
	for i, rec := range records {
		def, err := NewDefinition(rec)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// NormalizeText replaces the card's name, its short name ("Krenko" for
// "Krenko, Mob Boss") and "this creature" with "~", and strips reminder text.
func NormalizeText(name, text string) string {
	text = ability.StripReminders(text)
	if name != "" {
		text = strings.ReplaceAll(text, name, "~")
		if idx := strings.Index(name, ","); idx > 0 {
			text = strings.ReplaceAll(text, name[:idx], "~")
		}
	}
	text = selfPattern.ReplaceAllString(text, "~")
	return strings.TrimSpace(text)
}

func parseStat(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// "*" and "1+*" style values count as their fixed part.
	if idx := strings.IndexAny(s, "+*"); idx > 0 {
		if n, err := strconv.Atoi(s[:idx]); err == nil {
			return n
		}
	}
	return 0
}

func (d *Definition) parseTypeLine(line string) {
	lower := strings.ToLower(line)
	main, sub := lower, ""
	for _, sep := range []string{"—", " - "} {
		if idx := strings.Index(lower, sep); idx >= 0 {
			main, sub = lower[:idx], lower[idx+len(sep):]
			break
		}
	}
	for _, word := range strings.Fields(main) {
		switch word {
		case "land":
			d.Land = true
		case "basic":
			d.Basic = true
		case "creature":
			d.Creature = true
		case "artifact":
			d.Artifact = true
		case "enchantment":
			d.Enchantment = true
		case "planeswalker":
			d.Planeswalker = true
		case "instant":
			d.Instant = true
		case "sorcery":
			d.Sorcery = true
		case "legendary":
			d.Legendary = true
		}
	}
	d.Subtypes = strings.Fields(sub)
}

func mergeKeywords(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, kw := range list {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// derive fills the optional slots from the type line and abilities.
func (d *Definition) derive() {
	if d.Land {
		for _, st := range d.Subtypes {
			if t, ok := basicLandColors[st]; ok {
				d.ProducedColors = d.ProducedColors.With(t)
				d.ManaAmount = 1
			}
		}
		if entersTappedRegexp.MatchString(d.Text) && !strings.Contains(strings.ToLower(d.Text), "unless") {
			d.EntersTapped = true
		}
	}

	for _, desc := range d.Abilities {
		switch desc.Trigger {
		case ability.TriggerStatic:
			switch desc.Static {
			case ability.StaticManaAbility:
				d.ProducedColors = d.ProducedColors.Union(mana.ParseColors(desc.Colors))
				if desc.Amount > d.ManaAmount {
					d.ManaAmount = desc.Amount
				}
				if !d.Land {
					d.Accelerant = true
				}
			case ability.StaticCostReduction:
				d.Accelerant = true
			}
		case ability.TriggerActivated:
			d.SacrificeOutlet = true
		case ability.TriggerOnDeath:
			if desc.Scope == ability.ScopeSelf {
				for _, eff := range desc.Effects {
					if eff.Kind == ability.EffectDrain || eff.Kind == ability.EffectDamage {
						d.DeathValue += eff.Amount
					}
				}
			}
		case ability.TriggerOnEnter, ability.TriggerOnResolve:
			if d.Land {
				continue
			}
			for _, eff := range desc.Effects {
				switch eff.Kind {
				case ability.EffectAddMana, ability.EffectFetchLand, ability.EffectCreateTreasure:
					d.Accelerant = true
				}
			}
		}
	}

	identity := d.Cost.Colors().Union(d.ProducedColors.Colors())
	for _, m := range textSymbolPattern.FindAllStringSubmatch(strings.ToUpper(d.Text), -1) {
		if t, ok := mana.TypeFromSymbol(m[1][0]); ok {
			identity = identity.With(t)
		}
	}
	d.ColorIdentity = identity
}

// HasKeyword reports whether the card prints the keyword.
func (d *Definition) HasKeyword(keyword string) bool {
	for _, kw := range d.Keywords {
		if kw == keyword {
			return true
		}
	}
	return false
}

// IsPermanent reports whether the card stays on the battlefield when it
// resolves.
func (d *Definition) IsPermanent() bool {
	return !d.Instant && !d.Sorcery
}

// IsManaSource reports whether the card can be tapped for mana.
func (d *Definition) IsManaSource() bool {
	return d.ManaAmount > 0 && d.ProducedColors != 0
}

// SpellInfo describes the card as a spell for SPELL_CAST events.
func (d *Definition) SpellInfo(commander bool) *rules.SpellInfo {
	return &rules.SpellInfo{
		Name:      d.Name,
		ManaValue: d.ManaValue,
		Creature:  d.Creature,
		Instant:   d.Instant,
		Sorcery:   d.Sorcery,
		Flash:     d.HasKeyword(ability.KeywordFlash),
		Commander: commander,
	}
}

// String returns the card name.
func (d *Definition) String() string {
	return d.Name
}

// NewTokenDefinition builds the definition of a creature token.
func NewTokenDefinition(name string, power, toughness int, keywords []string) *Definition {
	if name == "" {
		name = fmt.Sprintf("%d/%d token", power, toughness)
	}
	return &Definition{
		Name:      name,
		TypeLine:  "Token Creature",
		Cost:      &mana.ManaCost{},
		Creature:  true,
		Power:     power,
		Toughness: toughness,
		Keywords:  mergeKeywords(keywords),
		Token:     true,
	}
}

// TreasureDefinition is the shared definition of a Treasure token: an
// artifact sacrificed for one mana of any color.
var TreasureDefinition = &Definition{
	Name:           "Treasure",
	TypeLine:       "Token Artifact — Treasure",
	Cost:           &mana.ManaCost{},
	Artifact:       true,
	Subtypes:       []string{"treasure"},
	ProducedColors: mana.ParseColors("WUBRG"),
	ManaAmount:     1,
	Token:          true,
	Treasure:       true,
}
