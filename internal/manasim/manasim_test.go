package manasim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/game/mana"
)

func mustDef(t *testing.T, rec card.Record) *card.Definition {
	t.Helper()
	def, err := card.NewDefinition(rec)
	require.NoError(t, err)
	return def
}

func repeat(def *card.Definition, n int) []*card.Definition {
	out := make([]*card.Definition, n)
	for i := range out {
		out[i] = def
	}
	return out
}

func twoColorDeck(t *testing.T) []*card.Definition {
	island := mustDef(t, card.Record{Name: "Island", TypeLine: "Basic Land — Island"})
	mountain := mustDef(t, card.Record{Name: "Mountain", TypeLine: "Basic Land — Mountain"})
	guildgate := mustDef(t, card.Record{Name: "Izzet Guildgate", TypeLine: "Land — Gate", Text: "Izzet Guildgate enters the battlefield tapped.\n{T}: Add {U} or {R}."})
	spell := mustDef(t, card.Record{Name: "Electrolyze", ManaCost: "{1}{U}{R}", TypeLine: "Instant", Text: "Electrolyze deals 2 damage divided as you choose among one or two targets. Draw a card."})
	bear := mustDef(t, card.Record{Name: "Bear", ManaCost: "{1}{R}", TypeLine: "Creature — Bear", Power: "2", Toughness: "2"})

	var deck []*card.Definition
	deck = append(deck, repeat(island, 7)...)
	deck = append(deck, repeat(mountain, 7)...)
	deck = append(deck, repeat(guildgate, 3)...)
	deck = append(deck, repeat(spell, 11)...)
	deck = append(deck, repeat(bear, 12)...)
	return deck
}

func TestCoverageIsMonotone(t *testing.T) {
	sim := NewSimulator(zaptest.NewLogger(t))
	res, err := sim.Simulate(context.Background(), twoColorDeck(t), Params{
		Iterations: 2000,
		MaxTurn:    8,
		OnThePlay:  true,
		Seed:       1,
		Workers:    4,
	})
	require.NoError(t, err)
	require.Len(t, res.ColorCoverage, 8)

	for turn := 2; turn <= 8; turn++ {
		assert.GreaterOrEqual(t, res.Coverage(turn), res.Coverage(turn-1), "turn %d", turn)
	}
	assert.Greater(t, res.Coverage(8), 0.9)
	assert.Less(t, res.Coverage(1), res.Coverage(8))
	for _, p := range res.PlayableSpell {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestSimulationIsDeterministicAcrossWorkerCounts(t *testing.T) {
	deck := twoColorDeck(t)
	params := Params{Iterations: 500, MaxTurn: 6, Seed: 77}

	params.Workers = 1
	one, err := SimulateDeck(context.Background(), deck, params)
	require.NoError(t, err)

	params.Workers = 8
	many, err := SimulateDeck(context.Background(), deck, params)
	require.NoError(t, err)

	assert.Equal(t, one, many)
}

func TestMonoColorCoverageWithLandInOpeningHand(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	deck := repeat(forest, 40)

	res, err := SimulateDeck(context.Background(), deck, Params{Iterations: 50, MaxTurn: 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, res.ColorCoverage)
	assert.Equal(t, []float64{0, 0, 0}, res.PlayableSpell)
}

func TestEntersTappedPredicate(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	elf := mustDef(t, card.Record{Name: "Elf", ManaCost: "{G}", TypeLine: "Creature — Elf", Power: "1", Toughness: "1"})
	deck := append(repeat(forest, 20), repeat(elf, 20)...)
	params := Params{Iterations: 200, MaxTurn: 2, OnThePlay: true, Seed: 5}

	untapped, err := SimulateDeck(context.Background(), deck, params)
	require.NoError(t, err)

	params.EntersTapped = func(*card.Definition) bool { return true }
	tapped, err := SimulateDeck(context.Background(), deck, params)
	require.NoError(t, err)

	assert.Zero(t, tapped.Playable(1))
	assert.Greater(t, untapped.Playable(1), tapped.Playable(1))
}

func TestRampMakesSpellsPlayableSooner(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	rock := mustDef(t, card.Record{Name: "Mind Stone", ManaCost: "{2}", TypeLine: "Artifact", Text: "{T}: Add {C}."})
	filler := mustDef(t, card.Record{Name: "Filler", ManaCost: "{G}", TypeLine: "Instant", Text: "Filler deals 1 damage to any target."})
	big := mustDef(t, card.Record{Name: "Giant", ManaCost: "{3}{G}", TypeLine: "Creature — Giant", Power: "4", Toughness: "4"})
	require.True(t, rock.Accelerant)

	base := append(repeat(forest, 17), repeat(big, 13)...)
	withRock := append(append([]*card.Definition(nil), base...), repeat(rock, 10)...)
	withFiller := append(append([]*card.Definition(nil), base...), repeat(filler, 10)...)

	params := Params{Iterations: 2000, MaxTurn: 4, OnThePlay: true, Seed: 9}
	ramp, err := SimulateDeck(context.Background(), withRock, params)
	require.NoError(t, err)
	plain, err := SimulateDeck(context.Background(), withFiller, params)
	require.NoError(t, err)

	// Fillers are playable themselves, so compare the turn the big spell
	// shows up; a rock cast on turn 2 pays for a turn 3 Giant.
	assert.Greater(t, ramp.Playable(3), 0.0)
	assert.Greater(t, plain.Playable(1), ramp.Playable(1))
}

func TestExplicitIdentity(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	res, err := SimulateDeck(context.Background(), repeat(forest, 40), Params{
		Iterations:    20,
		MaxTurn:       2,
		ColorIdentity: mana.Of(mana.ManaGreen, mana.ManaBlue),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, res.ColorCoverage)
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := SimulateDeck(context.Background(), nil, Params{})
	assert.Error(t, err)

	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	_, err = SimulateDeck(context.Background(), repeat(forest, 10), Params{Iterations: -1})
	assert.Error(t, err)
}

func TestSimulateHonorsCancellation(t *testing.T) {
	forest := mustDef(t, card.Record{Name: "Forest", TypeLine: "Basic Land — Forest"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SimulateDeck(ctx, repeat(forest, 40), Params{Iterations: 100000, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeedForSpreadsIndexes(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		s := SeedFor(42, i)
		assert.False(t, seen[s])
		seen[s] = true
	}
	assert.Equal(t, SeedFor(1, 2), SeedFor(1, 2))
}

func TestXAmountRampAddsNothing(t *testing.T) {
	hoard := mustDef(t, card.Record{Name: "Hoard", ManaCost: "{G}", TypeLine: "Sorcery", Text: "Create X Treasure tokens."})
	trove := mustDef(t, card.Record{Name: "Trove", ManaCost: "{G}", TypeLine: "Sorcery", Text: "Create two Treasure tokens."})
	require.True(t, trove.Accelerant)

	s := &sim{p: Params{EntersTapped: DefaultEntersTapped}}
	s.resolveRamp(hoard, 1)
	assert.Zero(t, s.treasures)

	s.resolveRamp(trove, 1)
	assert.Equal(t, 2, s.treasures)
}
