package game

import (
	"fmt"
)

// SacrificePolicy decides what the engine does with sacrifice outlets in the
// end step.
type SacrificePolicy string

const (
	// SacrificeNone never activates sacrifice outlets.
	SacrificeNone SacrificePolicy = "none"
	// SacrificeFodder sacrifices creatures with a death trigger and small
	// tokens to every available outlet.
	SacrificeFodder SacrificePolicy = "fodder"
)

const (
	defaultMaxTurns             = 10
	defaultHandSize             = 7
	defaultStartingLife         = 40
	defaultMaxTriggerIterations = 100

	// maxHandSize is enforced in the cleanup step.
	maxHandSize = 7
)

// Options is the immutable configuration of an Engine.
type Options struct {
	MaxTurns     int
	HandSize     int
	OnThePlay    bool
	StartingLife int
	OpponentLife int
	// BoardWipeTurn destroys every creature in that turn's upkeep. Zero
	// disables it.
	BoardWipeTurn   int
	SacrificePolicy SacrificePolicy
	// MaxTriggerIterations bounds the trigger resolution loop of a single
	// action.
	MaxTriggerIterations int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxTurns:             defaultMaxTurns,
		HandSize:             defaultHandSize,
		OnThePlay:            true,
		StartingLife:         defaultStartingLife,
		OpponentLife:         defaultStartingLife,
		SacrificePolicy:      SacrificeNone,
		MaxTriggerIterations: defaultMaxTriggerIterations,
	}
}

// Validate checks the options for values the engine cannot run with.
func (o Options) Validate() error {
	if o.MaxTurns <= 0 {
		return fmt.Errorf("max turns must be positive, got %d", o.MaxTurns)
	}
	if o.HandSize < 0 {
		return fmt.Errorf("hand size must not be negative, got %d", o.HandSize)
	}
	if o.StartingLife <= 0 || o.OpponentLife <= 0 {
		return fmt.Errorf("life totals must be positive")
	}
	if o.BoardWipeTurn < 0 {
		return fmt.Errorf("board wipe turn must not be negative, got %d", o.BoardWipeTurn)
	}
	switch o.SacrificePolicy {
	case SacrificeNone, SacrificeFodder, "":
	default:
		return fmt.Errorf("unknown sacrifice policy %q", o.SacrificePolicy)
	}
	if o.MaxTriggerIterations <= 0 {
		return fmt.Errorf("max trigger iterations must be positive, got %d", o.MaxTriggerIterations)
	}
	return nil
}
