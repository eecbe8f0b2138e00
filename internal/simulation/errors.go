package simulation

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCards is returned when the deck has no cards.
	ErrNoCards = errors.New("deck has no cards")
	// ErrNoCommander is returned when no commander is designated.
	ErrNoCommander = errors.New("deck has no commander")
	// ErrMalformedCard is returned when a card record can not be parsed.
	ErrMalformedCard = errors.New("malformed card record")
	// ErrNoGames is returned when zero or fewer games are requested.
	ErrNoGames = errors.New("number of games must be positive")
)

// InputError reports input that was rejected before any game started.
type InputError struct {
	Err    error
	Detail string
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid simulation input: %v", e.Err)
	}
	return fmt.Sprintf("invalid simulation input: %v: %s", e.Err, e.Detail)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputError(err error, detail string) error {
	return &InputError{Err: err, Detail: detail}
}
