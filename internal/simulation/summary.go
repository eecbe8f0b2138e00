package simulation

import (
	"sort"

	"github.com/magefree/mage-goldfish/internal/game/board"
)

// TurnAverage is the mean of every per-turn metric over the successful games.
type TurnAverage struct {
	Turn           int     `json:"turn"`
	CombatDamage   float64 `json:"combat_damage"`
	DrainDamage    float64 `json:"drain_damage"`
	BurnDamage     float64 `json:"burn_damage"`
	TotalDamage    float64 `json:"total_damage"`
	TokensCreated  float64 `json:"tokens_created"`
	LifeGained     float64 `json:"life_gained"`
	LifeLost       float64 `json:"life_lost"`
	CardsDrawn     float64 `json:"cards_drawn"`
	PeakPower      float64 `json:"peak_power"`
	SpellsCast     float64 `json:"spells_cast"`
	LandsPlayed    float64 `json:"lands_played"`
	ManaAvailable  float64 `json:"mana_available"`
	CountersPlaced float64 `json:"counters_placed"`
	CreaturesDied  float64 `json:"creatures_died"`
	OpponentLife   float64 `json:"opponent_life"`
}

// Summary is the aggregate result of a batch of games.
type Summary struct {
	Seed        int64         `json:"seed"`
	GamesPlayed int           `json:"games_played"`
	FailedGames int           `json:"failed_games"`
	Turns       []TurnAverage `json:"turns"`
	// CommanderCastTurns maps the first turn the commander was cast to the
	// number of games; key 0 counts games where it never was.
	CommanderCastTurns map[int]int `json:"commander_cast_turns"`
	// PeakPower is the mean peak creature power per turn.
	PeakPower []float64 `json:"peak_power"`
}

// CumulativeDamage returns the running total of average damage by turn.
func (s *Summary) CumulativeDamage() []float64 {
	out := make([]float64, len(s.Turns))
	total := 0.0
	for i, t := range s.Turns {
		total += t.TotalDamage
		out[i] = total
	}
	return out
}

// CommanderCastTurnsSorted returns the keys of CommanderCastTurns in order.
func (s *Summary) CommanderCastTurnsSorted() []int {
	keys := make([]int, 0, len(s.CommanderCastTurns))
	for k := range s.CommanderCastTurns {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// aggregate accumulates integer totals. merge is associative and
// commutative so workers can be combined in any order.
type aggregate struct {
	games     int
	failed    int
	totals    []board.TurnMetrics
	castTurns map[int]int
}

func newAggregate(maxTurn int) *aggregate {
	return &aggregate{
		totals:    make([]board.TurnMetrics, maxTurn),
		castTurns: make(map[int]int),
	}
}

func (a *aggregate) addGame(rec *board.GameRecord) {
	a.games++
	for i, m := range rec.Turns {
		if i < len(a.totals) {
			a.totals[i].Add(m)
		}
	}
	a.castTurns[rec.CommanderCastTurn]++
}

func (a *aggregate) merge(other *aggregate) {
	a.games += other.games
	a.failed += other.failed
	for i := range a.totals {
		a.totals[i].Add(other.totals[i])
	}
	for turn, n := range other.castTurns {
		a.castTurns[turn] += n
	}
}

func (a *aggregate) summary(seed int64) *Summary {
	s := &Summary{
		Seed:               seed,
		GamesPlayed:        a.games,
		FailedGames:        a.failed,
		Turns:              make([]TurnAverage, len(a.totals)),
		CommanderCastTurns: make(map[int]int, len(a.castTurns)),
		PeakPower:          make([]float64, len(a.totals)),
	}
	for turn, n := range a.castTurns {
		s.CommanderCastTurns[turn] = n
	}

	n := float64(a.games)
	avg := func(v int) float64 {
		if a.games == 0 {
			return 0
		}
		return float64(v) / n
	}
	for i, m := range a.totals {
		s.Turns[i] = TurnAverage{
			Turn:           i + 1,
			CombatDamage:   avg(m.CombatDamage),
			DrainDamage:    avg(m.DrainDamage),
			BurnDamage:     avg(m.BurnDamage),
			TotalDamage:    avg(m.TotalDamage()),
			TokensCreated:  avg(m.TokensCreated),
			LifeGained:     avg(m.LifeGained),
			LifeLost:       avg(m.LifeLost),
			CardsDrawn:     avg(m.CardsDrawn),
			PeakPower:      avg(m.PeakPower),
			SpellsCast:     avg(m.SpellsCast),
			LandsPlayed:    avg(m.LandsPlayed),
			ManaAvailable:  avg(m.ManaAvailable),
			CountersPlaced: avg(m.CountersPlaced),
			CreaturesDied:  avg(m.CreaturesDied),
			OpponentLife:   avg(m.OpponentLife),
		}
		s.PeakPower[i] = s.Turns[i].PeakPower
	}
	return s
}
