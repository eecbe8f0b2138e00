package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/mana"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

func mustDef(t *testing.T, rec card.Record) *card.Definition {
	t.Helper()
	def, err := card.NewDefinition(rec)
	require.NoError(t, err)
	return def
}

func bear(t *testing.T, name string) *card.Definition {
	return mustDef(t, card.Record{Name: name, ManaCost: "{1}{G}", TypeLine: "Creature — Bear", Power: "2", Toughness: "2"})
}

func newState(t *testing.T, library ...*card.Definition) *board.State {
	return board.NewState(7, library, nil, 40, 40, zaptest.NewLogger(t))
}

func countTokens(st *board.State) int {
	n := 0
	for _, p := range st.Battlefield {
		if p.IsToken() {
			n++
		}
	}
	return n
}

func TestCreateTokenWithDoubler(t *testing.T) {
	st := newState(t)
	doubler := mustDef(t, card.Record{
		Name:     "Parallel Lives",
		ManaCost: "{3}{G}",
		TypeLine: "Enchantment",
		Text:     "If an effect would create one or more tokens under your control, it creates twice that many of those tokens instead.",
	})
	st.Enter(doubler, board.EnterOptions{})

	eff := ability.Effect{Kind: ability.EffectCreateToken, Amount: 3, Power: 1, Toughness: 1, TokenName: "goblin"}
	require.NoError(t, Apply(st, eff, nil, rules.Event{}))
	assert.Equal(t, 6, countTokens(st))

	created := 0
	for _, ev := range st.DrainPending() {
		if ev.Type == rules.EventTokenCreated {
			created++
		}
	}
	assert.Equal(t, 6, created)
}

func TestCreateTokenTwoDoublers(t *testing.T) {
	st := newState(t)
	doubler := mustDef(t, card.Record{
		Name:     "Anointed Procession",
		ManaCost: "{3}{W}",
		TypeLine: "Enchantment",
		Text:     "If an effect would create one or more tokens under your control, it creates twice that many of those tokens instead.",
	})
	st.Enter(doubler, board.EnterOptions{})
	st.Enter(doubler, board.EnterOptions{})

	require.NoError(t, Apply(st, ability.Effect{Kind: ability.EffectCreateTreasure, Amount: 1}, nil, rules.Event{}))
	assert.Equal(t, 4, countTokens(st))
}

func TestAddCounterToTeam(t *testing.T) {
	st := newState(t)
	for _, name := range []string{"A", "B", "C"} {
		st.Enter(bear(t, name), board.EnterOptions{})
	}
	before := st.BoardPower()

	eff := ability.Effect{Kind: ability.EffectAddCounter, Amount: 1, CounterKind: "+1/+1", Target: ability.TargetTeam}
	require.NoError(t, Apply(st, eff, nil, rules.Event{}))

	for _, p := range st.Creatures() {
		assert.Equal(t, 1, p.Counters.GetCount("+1/+1"), p.Def.Name)
	}
	assert.Equal(t, before+3, st.BoardPower())
}

func TestAddCounterSelfAndSubject(t *testing.T) {
	st := newState(t)
	src := st.Enter(bear(t, "Source"), board.EnterOptions{})
	other := st.Enter(bear(t, "Other"), board.EnterOptions{})

	eff := ability.Effect{Kind: ability.EffectAddCounter, Amount: 2, CounterKind: "+1/+1", Target: ability.TargetSelf}
	require.NoError(t, Apply(st, eff, src, rules.Event{}))
	assert.Equal(t, 4, src.Power())

	eff.Target = ability.TargetSubject
	require.NoError(t, Apply(st, eff, src, rules.NewEvent(rules.EventEnterBattlefield, other.ID, other.ID)))
	assert.Equal(t, 4, other.Power())
}

func TestBestCreaturePrefersEarliestOnTie(t *testing.T) {
	st := newState(t)
	first := st.Enter(bear(t, "First"), board.EnterOptions{})
	st.Enter(bear(t, "Second"), board.EnterOptions{})
	assert.Same(t, first, BestCreature(st))
}

func TestDrainDamageAndLife(t *testing.T) {
	st := newState(t)
	require.NoError(t, ApplyAll(st, []ability.Effect{
		{Kind: ability.EffectDrain, Amount: 2},
		{Kind: ability.EffectGainLife, Amount: -1},
		{Kind: ability.EffectDamage, Amount: 3},
		{Kind: ability.EffectLoseLife, Amount: 1},
	}, nil, rules.Event{}))

	assert.Equal(t, 35, st.OpponentLife)
	assert.Equal(t, 41, st.Life)

	var types []rules.EventType
	for _, ev := range st.DrainPending() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []rules.EventType{
		rules.EventDrain, rules.EventGainedLife, rules.EventDamagePlayer, rules.EventLostLife,
	}, types)
}

func TestDrawFromLibrary(t *testing.T) {
	st := newState(t, bear(t, "A"), bear(t, "B"))
	require.NoError(t, Apply(st, ability.Effect{Kind: ability.EffectDraw, Amount: 3}, nil, rules.Event{}))
	assert.Len(t, st.Hand, 2)
	assert.Empty(t, st.Library)
}

func TestPumpAndKeywordExpiry(t *testing.T) {
	st := newState(t)
	p := st.Enter(bear(t, "Bear"), board.EnterOptions{})

	require.NoError(t, ApplyAll(st, []ability.Effect{
		{Kind: ability.EffectPump, Power: 2, Toughness: 2, Target: ability.TargetSelf, Expiry: ability.ExpiresEndOfCombat},
		{Kind: ability.EffectPump, Power: 1, Toughness: 1, Target: ability.TargetSelf, Expiry: ability.ExpiresEndOfTurn},
		{Kind: ability.EffectGrantKeyword, Keywords: []string{ability.KeywordFlying}, Target: ability.TargetSelf, Expiry: ability.ExpiresEndOfTurn},
	}, p, rules.Event{}))
	assert.Equal(t, 5, p.Power())
	assert.True(t, st.HasKeyword(p, ability.KeywordFlying))

	assert.Zero(t, ExpireTemporary(st, rules.StepMain2))
	assert.Equal(t, 1, ExpireTemporary(st, rules.StepEndCombat))
	assert.Equal(t, 3, p.Power())

	assert.Equal(t, 2, ExpireTemporary(st, rules.StepCleanup))
	assert.Equal(t, 2, p.Power())
	assert.False(t, st.HasKeyword(p, ability.KeywordFlying))
}

func TestFetchBasicLandPrefersMissingColor(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	mountain := mustDef(t, card.Record{Name: "Mountain", TypeLine: "Basic Land — Mountain"})
	st := newState(t, forest, forest, mountain, bear(t, "Bear"))
	st.Enter(forest, board.EnterOptions{})

	require.NoError(t, Apply(st, ability.Effect{Kind: ability.EffectFetchLand, Amount: 1, Tapped: true}, nil, rules.Event{}))

	lands := st.Lands()
	require.Len(t, lands, 2)
	assert.Equal(t, "Mountain", lands[1].Def.Name)
	assert.True(t, lands[1].Tapped)
	assert.Len(t, st.Library, 3)
}

func TestFetchBasicLandEmptyLibrary(t *testing.T) {
	st := newState(t, bear(t, "Bear"))
	require.NoError(t, Apply(st, ability.Effect{Kind: ability.EffectFetchLand, Amount: 2}, nil, rules.Event{}))
	assert.Empty(t, st.Lands())
}

func TestAddManaPicksMissingColor(t *testing.T) {
	st := newState(t)
	st.Enter(mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"}), board.EnterOptions{})

	require.NoError(t, Apply(st, ability.Effect{Kind: ability.EffectAddMana, Colors: "RG", Amount: 1}, nil, rules.Event{}))
	assert.Equal(t, 1, st.Pool.Get(mana.ManaRed))
	assert.Equal(t, 1, st.Pool.Total())
}

func TestUnknownEffectKind(t *testing.T) {
	st := newState(t)
	assert.Error(t, Apply(st, ability.Effect{Kind: ability.EffectKind(99)}, nil, rules.Event{}))
}
