package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-goldfish/internal/game"
	"github.com/magefree/mage-goldfish/internal/game/card"
	"github.com/magefree/mage-goldfish/internal/manasim"
)

func records(rec card.Record, n int) []card.Record {
	out := make([]card.Record, n)
	for i := range out {
		out[i] = rec
	}
	return out
}

var (
	mountain = card.Record{Name: "Mountain", TypeLine: "Basic Land — Mountain"}
	goblin   = card.Record{Name: "Raging Goblin", ManaCost: "{R}", TypeLine: "Creature — Goblin Berserker", Text: "Haste", Power: "1", Toughness: "1"}
	krenko   = card.Record{
		Name:      "Krenko, Tin Street Kingpin",
		ManaCost:  "{2}{R}",
		TypeLine:  "Legendary Creature — Goblin Warrior",
		Text:      "Whenever Krenko attacks, put a +1/+1 counter on it, then create a number of 1/1 red Goblin creature tokens equal to Krenko's power.",
		Power:     "1",
		Toughness: "2",
	}
)

func goblinDeck() []card.Record {
	return append(records(mountain, 17), records(goblin, 23)...)
}

func newTestDriver(t *testing.T, workers int) *Driver {
	return NewDriver(Config{Options: game.DefaultOptions(), Workers: workers, Seed: 1234}, zaptest.NewLogger(t))
}

func TestRunSimulationsValidatesInput(t *testing.T) {
	d := newTestDriver(t, 2)
	ctx := context.Background()

	_, err := d.RunSimulations(ctx, nil, &krenko, 10, 5)
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.ErrorIs(t, err, ErrNoCards)

	_, err = d.RunSimulations(ctx, goblinDeck(), nil, 10, 5)
	assert.ErrorIs(t, err, ErrNoCommander)

	_, err = d.RunSimulations(ctx, []card.Record{{Name: "Broken", ManaCost: "{Q}"}}, &krenko, 10, 5)
	assert.ErrorIs(t, err, ErrMalformedCard)

	_, err = d.RunSimulations(ctx, goblinDeck(), &krenko, 0, 5)
	assert.ErrorIs(t, err, ErrNoGames)

	_, err = d.RunSimulations(ctx, goblinDeck(), &krenko, 10, 0)
	require.True(t, errors.As(err, &inputErr))
}

func TestLoadDeckRemovesListedCommander(t *testing.T) {
	d := newTestDriver(t, 1)
	deck, err := d.LoadDeck(append(goblinDeck(), krenko), &krenko)
	require.NoError(t, err)
	assert.Len(t, deck.Cards, 40)
	assert.Equal(t, "Krenko, Tin Street Kingpin", deck.Commander.Name)

	_, err = d.LoadDeck([]card.Record{krenko}, &krenko)
	assert.ErrorIs(t, err, ErrNoCards)
}

func TestSingleGameIsDeterministic(t *testing.T) {
	d := newTestDriver(t, 1)
	first, err := d.RunSimulations(context.Background(), goblinDeck(), &krenko, 1, 5)
	require.NoError(t, err)
	second, err := d.RunSimulations(context.Background(), goblinDeck(), &krenko, 1, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.GamesPlayed)
	assert.Len(t, first.Turns, 5)
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	one, err := newTestDriver(t, 1).RunSimulations(context.Background(), goblinDeck(), &krenko, 40, 6)
	require.NoError(t, err)
	many, err := newTestDriver(t, 6).RunSimulations(context.Background(), goblinDeck(), &krenko, 40, 6)
	require.NoError(t, err)

	assert.Equal(t, one, many)
}

func TestSummaryAverages(t *testing.T) {
	d := newTestDriver(t, 4)
	summary, err := d.RunSimulations(context.Background(), goblinDeck(), &krenko, 50, 6)
	require.NoError(t, err)

	assert.Equal(t, 50, summary.GamesPlayed)
	assert.Zero(t, summary.FailedGames)
	require.Len(t, summary.Turns, 6)
	require.Len(t, summary.PeakPower, 6)

	games := 0
	for _, n := range summary.CommanderCastTurns {
		games += n
	}
	assert.Equal(t, 50, games)
	assert.Zero(t, summary.CommanderCastTurns[1], "a three mana commander can not be cast on turn 1")

	for i, turn := range summary.Turns {
		assert.Equal(t, i+1, turn.Turn)
		assert.InDelta(t, turn.CombatDamage+turn.DrainDamage+turn.BurnDamage, turn.TotalDamage, 1e-9)
		assert.Equal(t, turn.PeakPower, summary.PeakPower[i])
	}
	cumulative := summary.CumulativeDamage()
	for i := 1; i < len(cumulative); i++ {
		assert.GreaterOrEqual(t, cumulative[i], cumulative[i-1])
	}
	assert.InDelta(t, 40-cumulative[5], summary.Turns[5].OpponentLife, 1e-9)
	keys := summary.CommanderCastTurnsSorted()
	assert.IsNonDecreasing(t, keys)
	assert.Len(t, keys, len(summary.CommanderCastTurns))
}

type brokenPolicy struct{}

func (p brokenPolicy) Keep([]*card.Definition, int) bool {
	panic("hand policy failure")
}

func (p brokenPolicy) Bottom([]*card.Definition, int) []*card.Definition { return nil }

func TestFailedGamesAreCounted(t *testing.T) {
	d := NewDriver(Config{Options: game.DefaultOptions(), Workers: 3, Seed: 1, HandPolicy: brokenPolicy{}}, zaptest.NewLogger(t))
	summary, err := d.RunSimulations(context.Background(), goblinDeck(), &krenko, 12, 3)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.FailedGames)
	assert.Zero(t, summary.GamesPlayed)
	assert.Zero(t, summary.Turns[0].CombatDamage)
}

func TestRunHonorsCancellation(t *testing.T) {
	d := newTestDriver(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.RunSimulations(ctx, goblinDeck(), &krenko, 100, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayMatchesBatchGame(t *testing.T) {
	d := newTestDriver(t, 1)
	deck, err := d.LoadDeck(goblinDeck(), &krenko)
	require.NoError(t, err)

	replay, err := d.Replay(context.Background(), deck, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, replay.Size())
	assert.Equal(t, seedFor(1234, 3), replay.Seed)

	again, err := d.Replay(context.Background(), deck, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, replay.Checksums(), again.Checksums())
}

func TestSimulateDeckMana(t *testing.T) {
	d := newTestDriver(t, 2)
	deck, err := d.LoadDeck(goblinDeck(), &krenko)
	require.NoError(t, err)

	res, err := d.SimulateDeckMana(context.Background(), deck, manasim.Params{Iterations: 300, MaxTurn: 5, OnThePlay: true, Seed: 3})
	require.NoError(t, err)
	require.Len(t, res.ColorCoverage, 5)
	for turn := 2; turn <= 5; turn++ {
		assert.GreaterOrEqual(t, res.Coverage(turn), res.Coverage(turn-1))
	}
	assert.Greater(t, res.Playable(1), 0.5)
}

func TestSeedForIsStable(t *testing.T) {
	assert.Equal(t, seedFor(7, 0), seedFor(7, 0))
	assert.NotEqual(t, seedFor(7, 0), seedFor(7, 1))
	assert.NotEqual(t, seedFor(7, 0), seedFor(8, 0))
}
