package mana

import (
	"fmt"
	"strings"
	"sync"
)

// ManaType represents a type of mana.
type ManaType string

const (
	ManaWhite     ManaType = "WHITE"
	ManaBlue      ManaType = "BLUE"
	ManaBlack     ManaType = "BLACK"
	ManaRed       ManaType = "RED"
	ManaGreen     ManaType = "GREEN"
	ManaColorless ManaType = "COLORLESS"
	ManaGeneric   ManaType = "GENERIC" // Generic mana can be paid with any type
)

// AllTypes lists the concrete mana types in WUBRGC order.
var AllTypes = []ManaType{ManaWhite, ManaBlue, ManaBlack, ManaRed, ManaGreen, ManaColorless}

var symbolTypes = map[byte]ManaType{
	'W': ManaWhite,
	'U': ManaBlue,
	'B': ManaBlack,
	'R': ManaRed,
	'G': ManaGreen,
	'C': ManaColorless,
}

// TypeFromSymbol maps a mana symbol letter to its type.
func TypeFromSymbol(symbol byte) (ManaType, bool) {
	t, ok := symbolTypes[symbol]
	return t, ok
}

// Symbol returns the single-letter symbol for a concrete mana type.
func (t ManaType) Symbol() string {
	switch t {
	case ManaWhite:
		return "W"
	case ManaBlue:
		return "U"
	case ManaBlack:
		return "B"
	case ManaRed:
		return "R"
	case ManaGreen:
		return "G"
	case ManaColorless:
		return "C"
	default:
		return ""
	}
}

// ColorSet is a bitmask of mana types.
type ColorSet uint8

func bit(t ManaType) ColorSet {
	for i, at := range AllTypes {
		if at == t {
			return 1 << uint(i)
		}
	}
	return 0
}

// ParseColors parses a string of mana symbols such as "WUBRG" or "G".
func ParseColors(symbols string) ColorSet {
	var set ColorSet
	for i := 0; i < len(symbols); i++ {
		if t, ok := TypeFromSymbol(strings.ToUpper(symbols[i : i+1])[0]); ok {
			set |= bit(t)
		}
	}
	return set
}

// Of builds a set from the given types.
func Of(types ...ManaType) ColorSet {
	var set ColorSet
	for _, t := range types {
		set |= bit(t)
	}
	return set
}

// Has reports whether t is in the set.
func (c ColorSet) Has(t ManaType) bool {
	return c&bit(t) != 0
}

// With returns the set with t added.
func (c ColorSet) With(t ManaType) ColorSet {
	return c | bit(t)
}

// Union returns the union of two sets.
func (c ColorSet) Union(other ColorSet) ColorSet {
	return c | other
}

// Contains reports whether every type in other is also in c.
func (c ColorSet) Contains(other ColorSet) bool {
	return c&other == other
}

// Colors returns the set without colorless.
func (c ColorSet) Colors() ColorSet {
	return c &^ bit(ManaColorless)
}

// Count returns the number of types in the set.
func (c ColorSet) Count() int {
	n := 0
	for _, t := range AllTypes {
		if c.Has(t) {
			n++
		}
	}
	return n
}

// Types returns the set members in WUBRGC order.
func (c ColorSet) Types() []ManaType {
	var out []ManaType
	for _, t := range AllTypes {
		if c.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c ColorSet) String() string {
	var b strings.Builder
	for _, t := range c.Types() {
		b.WriteString(t.Symbol())
	}
	return b.String()
}

// ManaPool represents the mana a player has floating.
type ManaPool struct {
	mu      sync.RWMutex
	amounts map[ManaType]int
}

// NewManaPool creates a new empty mana pool.
func NewManaPool() *ManaPool {
	return &ManaPool{amounts: make(map[ManaType]int)}
}

// Add adds mana to the pool.
func (mp *ManaPool) Add(manaType ManaType, amount int) {
	if amount <= 0 || manaType == ManaGeneric {
		return
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.amounts[manaType] += amount
}

// AddAll adds every entry of amounts to the pool.
func (mp *ManaPool) AddAll(amounts map[ManaType]int) {
	for _, t := range AllTypes {
		mp.Add(t, amounts[t])
	}
}

// Get returns the amount of one mana type in the pool.
func (mp *ManaPool) Get(manaType ManaType) int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.amounts[manaType]
}

// Total returns the total amount of mana in the pool.
func (mp *ManaPool) Total() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	total := 0
	for _, v := range mp.amounts {
		total += v
	}
	return total
}

// Spend removes mana from the pool. It returns false and leaves the pool
// untouched if there is not enough of that type.
func (mp *ManaPool) Spend(manaType ManaType, amount int) bool {
	if amount <= 0 {
		return true
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.amounts[manaType] < amount {
		return false
	}
	mp.amounts[manaType] -= amount
	return true
}

// SpendAll removes every entry of amounts from the pool atomically.
func (mp *ManaPool) SpendAll(amounts map[ManaType]int) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	for t, n := range amounts {
		if mp.amounts[t] < n {
			return fmt.Errorf("insufficient %s mana: have %d, need %d", t, mp.amounts[t], n)
		}
	}
	for t, n := range amounts {
		mp.amounts[t] -= n
	}
	return nil
}

// Empty removes all mana from the pool.
func (mp *ManaPool) Empty() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	for t := range mp.amounts {
		delete(mp.amounts, t)
	}
}

// Units lists the pool's mana one unit at a time in WUBRGC order.
func (mp *ManaPool) Units() []ManaType {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	var out []ManaType
	for _, t := range AllTypes {
		for i := 0; i < mp.amounts[t]; i++ {
			out = append(out, t)
		}
	}
	return out
}

// Copy creates a deep copy of the mana pool.
func (mp *ManaPool) Copy() *ManaPool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	cp := NewManaPool()
	for t, v := range mp.amounts {
		cp.amounts[t] = v
	}
	return cp
}

// String returns a compact representation such as "GGR".
func (mp *ManaPool) String() string {
	var b strings.Builder
	for _, t := range mp.Units() {
		b.WriteString(t.Symbol())
	}
	return b.String()
}
