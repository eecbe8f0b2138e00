// Package counters tracks the counters placed on a permanent.
package counters

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kinds that show up on goldfish boards.
const (
	PlusOne  = "+1/+1"
	MinusOne = "-1/-1"
	Charge   = "charge"
	Oil      = "oil"
)

// Counters holds the counters on a single permanent by kind. A count is
// never zero or negative; kinds drop out when emptied.
type Counters struct {
	counts map[string]int
}

// NewCounters creates an empty collection.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Add puts amount counters of kind on the permanent. Non-positive amounts
// are ignored.
func (cs *Counters) Add(kind string, amount int) {
	if amount <= 0 {
		return
	}
	cs.counts[kind] += amount
}

// GetCount returns the number of counters of kind.
func (cs *Counters) GetCount(kind string) int {
	return cs.counts[kind]
}

// Total returns the number of counters of every kind.
func (cs *Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

// Kinds returns the kinds present, sorted.
func (cs *Counters) Kinds() []string {
	kinds := make([]string, 0, len(cs.counts))
	for kind := range cs.counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Boost returns the summed power and toughness delta of every "+N/+M" style
// counter.
func (cs *Counters) Boost() (power, toughness int) {
	for kind, n := range cs.counts {
		p, t, ok := parseBoost(kind)
		if !ok {
			continue
		}
		power += p * n
		toughness += t * n
	}
	return power, toughness
}

// Validate reports a kind whose count is not positive.
func (cs *Counters) Validate() error {
	for kind, n := range cs.counts {
		if n <= 0 {
			return fmt.Errorf("counter %s has non-positive count %d", kind, n)
		}
	}
	return nil
}

func parseBoost(kind string) (int, int, bool) {
	p, t, found := strings.Cut(kind, "/")
	if !found {
		return 0, 0, false
	}
	power, err := strconv.Atoi(p)
	if err != nil {
		return 0, 0, false
	}
	toughness, err := strconv.Atoi(t)
	if err != nil {
		return 0, 0, false
	}
	return power, toughness, true
}
