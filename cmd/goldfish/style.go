package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/magefree/mage-goldfish/internal/manasim"
	"github.com/magefree/mage-goldfish/internal/simulation"
)

type spinner struct {
	s *pterm.SpinnerPrinter
}

func startSpinner(text string) spinner {
	s, err := pterm.DefaultSpinner.Start(text)
	if err != nil {
		return spinner{}
	}
	return spinner{s: s}
}

func (sp spinner) success(text string) {
	if sp.s != nil {
		sp.s.Success(text)
	}
}

func (sp spinner) fail(err error) {
	if sp.s != nil {
		sp.s.Fail(err.Error())
	}
}

// printSummary renders the per-turn averages and the commander cast turn
// distribution.
func printSummary(deck *simulation.Deck, s *simulation.Summary) {
	pterm.DefaultSection.Println(fmt.Sprintf("%s (%d cards)", deck.Commander.Name, len(deck.Cards)))

	cumulative := s.CumulativeDamage()
	data := pterm.TableData{{"Turn", "Combat", "Drain", "Burn", "Total", "Cumulative", "Tokens", "Drawn", "Spells", "Mana", "Peak power", "Opp. life"}}
	for i, t := range s.Turns {
		data = append(data, []string{
			fmt.Sprint(t.Turn),
			f1(t.CombatDamage),
			f1(t.DrainDamage),
			f1(t.BurnDamage),
			f1(t.TotalDamage),
			f1(cumulative[i]),
			f1(t.TokensCreated),
			f1(t.CardsDrawn),
			f1(t.SpellsCast),
			f1(t.ManaAvailable),
			f1(t.PeakPower),
			f1(t.OpponentLife),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if s.GamesPlayed == 0 {
		return
	}
	bars := pterm.Bars{}
	for _, turn := range s.CommanderCastTurnsSorted() {
		label := fmt.Sprintf("turn %d", turn)
		if turn == 0 {
			label = "never"
		}
		bars = append(bars, pterm.Bar{Label: label, Value: s.CommanderCastTurns[turn]})
	}
	pterm.DefaultSection.WithLevel(2).Println("Commander first cast")
	_ = pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render()

	if s.FailedGames > 0 {
		pterm.Warning.Printfln("%d games ended in an internal error and were excluded", s.FailedGames)
	}
}

func printManaResult(r *manasim.Result) {
	pterm.DefaultSection.WithLevel(2).Println(fmt.Sprintf("Mana (%d iterations)", r.Iterations))
	data := pterm.TableData{{"Turn", "All colors", "Castable spell"}}
	for i := range r.ColorCoverage {
		data = append(data, []string{
			fmt.Sprint(i + 1),
			pct(r.ColorCoverage[i]),
			pct(r.PlayableSpell[i]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func f1(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", 100*v)
}
