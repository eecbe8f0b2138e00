package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

func def(t *testing.T, rec card.Record) *card.Definition {
	t.Helper()
	d, err := card.NewDefinition(rec)
	require.NoError(t, err)
	return d
}

func forest(t *testing.T) *card.Definition {
	return def(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
}

func bear(t *testing.T) *card.Definition {
	return def(t, card.Record{Name: "Grizzly Bears", ManaCost: "{1}{G}", TypeLine: "Creature — Bear", Power: "2", Toughness: "2"})
}

func newTestState(t *testing.T, library ...*card.Definition) *State {
	return NewState(7, library, nil, 40, 40, zaptest.NewLogger(t))
}

func TestEnterFindRemove(t *testing.T) {
	st := newTestState(t)
	b := bear(t)

	var seen []rules.EventType
	st.Bus.Subscribe(func(ev rules.Event) { seen = append(seen, ev.Type) })

	p := st.Enter(b, EnterOptions{})
	assert.Same(t, p, st.Find(p.ID))
	assert.True(t, p.SummoningSick())
	assert.Equal(t, []rules.EventType{rules.EventEnterBattlefield}, seen)
	assert.True(t, st.HasPending())

	require.NoError(t, st.Remove(p))
	assert.Nil(t, st.Find(p.ID))
	assert.True(t, p.Removed)
	assert.Equal(t, []*card.Definition{b}, st.Graveyard)
	assert.Error(t, st.Remove(p))
}

func TestTokensAndCommanderLeaveToTheirZones(t *testing.T) {
	cmdr := def(t, card.Record{Name: "Omnath", ManaCost: "{G}{G}", TypeLine: "Legendary Creature — Elemental", Power: "1", Toughness: "1"})
	st := NewState(1, nil, cmdr, 40, 40, nil)
	require.True(t, st.CommandZone)

	token := st.Enter(card.NewTokenDefinition("Saproling", 1, 1, nil), EnterOptions{})
	types := map[rules.EventType]int{}
	for _, ev := range st.DrainPending() {
		types[ev.Type]++
	}
	assert.Equal(t, 1, types[rules.EventTokenCreated])
	assert.False(t, st.HasPending())

	st.CommandZone = false
	c := st.Enter(cmdr, EnterOptions{Commander: true})

	require.NoError(t, st.Remove(token))
	require.NoError(t, st.Remove(c))
	assert.Empty(t, st.Graveyard)
	assert.True(t, st.CommandZone)
}

func TestPermanentIDsAreDeterministic(t *testing.T) {
	a := NewState(99, nil, nil, 40, 40, nil)
	b := NewState(99, nil, nil, 40, 40, nil)
	c := NewState(100, nil, nil, 40, 40, nil)

	pa := a.Enter(bear(t), EnterOptions{})
	pb := b.Enter(bear(t), EnterOptions{})
	pc := c.Enter(bear(t), EnterOptions{})
	assert.Equal(t, pa.ID, pb.ID)
	assert.NotEqual(t, pa.ID, pc.ID)
	assert.NotEqual(t, pa.ID, a.Enter(bear(t), EnterOptions{}).ID)
}

func TestShuffleIsSeeded(t *testing.T) {
	var library []*card.Definition
	for i := 0; i < 20; i++ {
		library = append(library, def(t, card.Record{Name: string(rune('A' + i)), TypeLine: "Artifact"}))
	}
	a := NewState(5, library, nil, 40, 40, nil)
	b := NewState(5, library, nil, 40, 40, nil)
	assert.Equal(t, a.Library, b.Library)
	assert.Len(t, library, 20)
}

func TestDrawDealAndBottom(t *testing.T) {
	f := forest(t)
	st := newTestState(t, f, f, f, f, f)

	st.Deal(3)
	assert.Len(t, st.Hand, 3)
	assert.False(t, st.HasPending())

	assert.Equal(t, 2, st.Draw(4))
	assert.Len(t, st.Hand, 5)
	assert.Empty(t, st.Library)
	assert.Len(t, st.DrainPending(), 2)
	assert.Zero(t, st.Draw(1))

	assert.True(t, st.PutOnBottom(f))
	assert.Len(t, st.Library, 1)

	st.ReturnHand()
	assert.Empty(t, st.Hand)
	assert.Len(t, st.Library, 5)
	assert.False(t, st.PutOnBottom(f))
}

func TestStaticsShapeTheBoard(t *testing.T) {
	st := newTestState(t)
	b := st.Enter(bear(t), EnterOptions{})
	st.Enter(def(t, card.Record{
		Name:     "Crusade",
		ManaCost: "{W}{W}",
		TypeLine: "Enchantment",
		Text:     "Creatures you control get +1/+1 and have vigilance.",
	}), EnterOptions{})
	st.Enter(def(t, card.Record{
		Name:     "Fervor",
		ManaCost: "{2}{R}",
		TypeLine: "Enchantment",
		Text:     "Creatures you control have haste.",
	}), EnterOptions{})

	assert.Equal(t, 3, st.PowerOf(b))
	assert.Equal(t, 3, st.ToughnessOf(b))
	assert.Equal(t, 3, st.BoardPower())
	assert.True(t, st.HasKeyword(b, ability.KeywordHaste))
	assert.True(t, st.HasKeyword(b, ability.KeywordVigilance))
	assert.ElementsMatch(t, []string{ability.KeywordVigilance, ability.KeywordHaste}, st.KeywordsOf(b))
}

func TestSourcesOrderAndSummoningSickness(t *testing.T) {
	st := newTestState(t)
	elf := st.Enter(def(t, card.Record{Name: "Llanowar Elves", ManaCost: "{G}", TypeLine: "Creature — Elf Druid", Text: "{T}: Add {G}.", Power: "1", Toughness: "1"}), EnterOptions{})
	treasure := st.Enter(card.TreasureDefinition, EnterOptions{})
	land := st.Enter(forest(t), EnterOptions{})

	ids := func() []string {
		var out []string
		for _, s := range st.Sources() {
			out = append(out, s.ID)
		}
		return out
	}
	assert.Equal(t, []string{land.ID, treasure.ID}, ids())

	elf.TurnsOnBoard = 1
	assert.Equal(t, []string{land.ID, elf.ID, treasure.ID}, ids())

	land.Tapped = true
	assert.Equal(t, []string{elf.ID, treasure.ID}, ids())
}

func TestCostReduction(t *testing.T) {
	st := newTestState(t)
	st.Enter(def(t, card.Record{
		Name:      "Goblin Electromancer",
		ManaCost:  "{U}{R}",
		TypeLine:  "Creature — Goblin Wizard",
		Text:      "Instant and sorcery spells you cast cost {1} less to cast.",
		Power:     "2",
		Toughness: "2",
	}), EnterOptions{})

	bolt := def(t, card.Record{Name: "Lightning Bolt", ManaCost: "{R}", TypeLine: "Instant"})
	assert.Equal(t, 1, st.CostReduction(bolt))
	assert.Zero(t, st.CostReduction(bear(t)))
}

func TestCheckFindsInconsistencies(t *testing.T) {
	st := newTestState(t)
	p := st.Enter(bear(t), EnterOptions{})
	require.NoError(t, st.Check())

	p.Removed = true
	assert.Error(t, st.Check())
	p.Removed = false

	st.Battlefield = append(st.Battlefield, p)
	assert.Error(t, st.Check())
}

func TestCurrentGrowsMetrics(t *testing.T) {
	st := newTestState(t)
	st.Turn = 3
	m := st.Current()
	m.CombatDamage = 4
	assert.Len(t, st.Metrics, 3)
	assert.Equal(t, 3, st.Metrics[2].Turn)
	assert.Equal(t, 4, st.Metrics[2].CombatDamage)

	var total TurnMetrics
	for _, tm := range st.Metrics {
		total.Add(tm)
	}
	assert.Equal(t, 4, total.TotalDamage())
}
