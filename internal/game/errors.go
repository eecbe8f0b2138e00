package game

import (
	"fmt"

	"github.com/magefree/mage-goldfish/internal/game/rules"
)

// InvariantViolation reports an internal inconsistency that ended a single
// game. The game's partial metrics are not meaningful.
type InvariantViolation struct {
	Seed   int64
	Turn   int
	Step   rules.Step
	Reason string
	Err    error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation (seed %d, turn %d, %s): %s", e.Seed, e.Turn, e.Step, e.Reason)
}

func (e *InvariantViolation) Unwrap() error {
	return e.Err
}

func (g *gameRun) violation(err error) *InvariantViolation {
	return &InvariantViolation{
		Seed:   g.st.Seed,
		Turn:   g.st.Turn,
		Step:   g.st.Step,
		Reason: err.Error(),
		Err:    err,
	}
}
