package rules

import (
	"fmt"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a turn.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:            "UNTAP",
	StepUpkeep:           "UPKEEP",
	StepDraw:             "DRAW",
	StepMain1:            "MAIN1",
	StepBeginCombat:      "BEGIN_COMBAT",
	StepDeclareAttackers: "DECLARE_ATTACKERS",
	StepDeclareBlockers:  "DECLARE_BLOCKERS",
	StepCombatDamage:     "COMBAT_DAMAGE",
	StepEndCombat:        "END_COMBAT",
	StepMain2:            "MAIN2",
	StepEnd:              "END",
	StepCleanup:          "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

type turnEntry struct {
	phase Phase
	step  Step
}

// turnSequence is the fixed single-player turn structure. There is no first
// strike damage step; unblocked damage is dealt once.
var turnSequence = []turnEntry{
	{PhaseBeginning, StepUntap},
	{PhaseBeginning, StepUpkeep},
	{PhaseBeginning, StepDraw},
	{PhasePrecombatMain, StepMain1},
	{PhaseCombat, StepBeginCombat},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepCombatDamage},
	{PhaseCombat, StepEndCombat},
	{PhasePostcombatMain, StepMain2},
	{PhaseEnding, StepEnd},
	{PhaseEnding, StepCleanup},
}

// Steps returns the ordered steps of one turn.
func Steps() []Step {
	steps := make([]Step, len(turnSequence))
	for i, entry := range turnSequence {
		steps[i] = entry.step
	}
	return steps
}

// TurnManager tracks turn progression for a single simulated game.
type TurnManager struct {
	orderIndex int
	turnNumber int
	maxTurn    int
}

// NewTurnManager creates a turn manager initialized at turn 1, untap step.
// maxTurn is the last turn that will be played; zero means unbounded.
func NewTurnManager(maxTurn int) *TurnManager {
	return &TurnManager{
		orderIndex: 0,
		turnNumber: 1,
		maxTurn:    maxTurn,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex].phase
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return turnSequence[tm.orderIndex].step
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Done reports whether the configured turn horizon has been passed.
func (tm *TurnManager) Done() bool {
	return tm.maxTurn > 0 && tm.turnNumber > tm.maxTurn
}

// AdvanceStep advances to the next step in the turn structure. When the end
// of the structure is reached the turn number is incremented and newTurn is
// true.
func (tm *TurnManager) AdvanceStep() (step Step, newTurn bool) {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		newTurn = true
	}
	return tm.CurrentStep(), newTurn
}
