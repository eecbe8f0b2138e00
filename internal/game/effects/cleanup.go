package effects

import (
	"github.com/magefree/mage-goldfish/internal/game/ability"
	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// ExpireTemporary removes the temporary grants whose expiry is reached at
// step. End-of-combat grants end in END_COMBAT; everything temporary ends in
// CLEANUP. It returns how many buffs were removed.
func ExpireTemporary(st *board.State, step rules.Step) int {
	switch step {
	case rules.StepEndCombat:
		return CleanupEndOfCombatEffects(st)
	case rules.StepCleanup:
		return CleanupEndOfCombatEffects(st) + CleanupEndOfTurnEffects(st)
	}
	return 0
}

// CleanupEndOfCombatEffects removes "until end of combat" buffs.
func CleanupEndOfCombatEffects(st *board.State) int {
	return removeBuffs(st, func(b board.Buff) bool {
		return b.Expiry == ability.ExpiresEndOfCombat
	})
}

// CleanupEndOfTurnEffects removes "until end of turn" buffs granted this turn
// or earlier.
func CleanupEndOfTurnEffects(st *board.State) int {
	return removeBuffs(st, func(b board.Buff) bool {
		return b.Expiry == ability.ExpiresEndOfTurn && b.Turn <= st.Turn
	})
}

func removeBuffs(st *board.State, expired func(board.Buff) bool) int {
	removed := 0
	for _, p := range st.Battlefield {
		kept := p.Buffs[:0]
		for _, b := range p.Buffs {
			if expired(b) {
				removed++
				continue
			}
			kept = append(kept, b)
		}
		p.Buffs = kept
	}
	return removed
}
