package mana

// Source is an untapped permanent or treasure that can produce mana.
type Source struct {
	ID     string
	Colors ColorSet
	Amount int
}

// PaymentPlan describes how a cost is paid: which sources are tapped, what
// they add to the pool, and what is then removed from the pool.
type PaymentPlan struct {
	Tapped   []string
	Produced map[ManaType]int
	Spent    map[ManaType]int
	XValue   int
}

// slot is one unit of a cost; accept lists the mana types that can pay it.
type slot struct {
	accept ColorSet
}

// unit is one unit of available mana. Pool units have sourceIdx -1.
type unit struct {
	colors    ColorSet
	sourceIdx int
}

const anyMana = ColorSet(0x3f)

func costSlots(cost *ManaCost, xValue int) []slot {
	var slots []slot
	for _, t := range AllTypes {
		for i := 0; i < cost.colored(t); i++ {
			slots = append(slots, slot{accept: Of(t)})
		}
	}
	for _, h := range cost.Hybrid {
		if h.Generic > 0 {
			// {2/B} is always paid with the generic half.
			for i := 0; i < h.Generic; i++ {
				slots = append(slots, slot{accept: anyMana})
			}
			continue
		}
		if h.Options == 0 {
			continue
		}
		slots = append(slots, slot{accept: h.Options})
	}
	generic := cost.Generic
	if cost.X && xValue > 0 {
		generic += xValue
	}
	for i := 0; i < generic; i++ {
		slots = append(slots, slot{accept: anyMana})
	}
	return slots
}

// CalculatePayment finds a way to pay cost from the pool and the given
// sources. Pool mana is preferred over tapping sources, and sources are tried
// in the order given. It returns nil when the cost cannot be paid.
//
// Cost units are matched to mana units with augmenting paths, so a colored
// requirement can take over mana an earlier requirement had claimed.
func CalculatePayment(cost *ManaCost, pool *ManaPool, sources []Source, xValue int) *PaymentPlan {
	plan := &PaymentPlan{
		Produced: make(map[ManaType]int),
		Spent:    make(map[ManaType]int),
		XValue:   xValue,
	}
	if cost == nil {
		return plan
	}

	slots := costSlots(cost, xValue)
	if len(slots) == 0 {
		return plan
	}

	var units []unit
	if pool != nil {
		for _, t := range pool.Units() {
			units = append(units, unit{colors: Of(t), sourceIdx: -1})
		}
	}
	for i, src := range sources {
		for n := 0; n < src.Amount; n++ {
			units = append(units, unit{colors: src.Colors, sourceIdx: i})
		}
	}
	if len(units) < len(slots) {
		return nil
	}

	matchUnit := make([]int, len(units))
	for i := range matchUnit {
		matchUnit[i] = -1
	}
	for s := range slots {
		seen := make([]bool, len(units))
		if !augment(s, slots, units, matchUnit, seen) {
			return nil
		}
	}

	// Tap every source with at least one matched unit. A tapped source adds
	// all of its mana; unmatched units float in its first color.
	tapped := make(map[int]bool)
	for u, s := range matchUnit {
		if s < 0 {
			continue
		}
		t := pick(units[u].colors, slots[s].accept)
		plan.Spent[t]++
		if idx := units[u].sourceIdx; idx >= 0 {
			plan.Produced[t]++
			tapped[idx] = true
		}
	}
	for u, s := range matchUnit {
		idx := units[u].sourceIdx
		if s >= 0 || idx < 0 || !tapped[idx] {
			continue
		}
		if types := units[u].colors.Types(); len(types) > 0 {
			plan.Produced[types[0]]++
		}
	}
	for i, src := range sources {
		if tapped[i] {
			plan.Tapped = append(plan.Tapped, src.ID)
		}
	}
	return plan
}

// augment is one step of Kuhn's augmenting path search.
func augment(s int, slots []slot, units []unit, matchUnit []int, seen []bool) bool {
	for u := range units {
		if seen[u] || units[u].colors&slots[s].accept == 0 {
			continue
		}
		seen[u] = true
		if matchUnit[u] < 0 || augment(matchUnit[u], slots, units, matchUnit, seen) {
			matchUnit[u] = s
			return true
		}
	}
	return false
}

// pick returns the first type both sets share.
func pick(have, want ColorSet) ManaType {
	for _, t := range AllTypes {
		if have.Has(t) && want.Has(t) {
			return t
		}
	}
	return ManaColorless
}

// CanPay reports whether cost can be paid from the pool and sources.
func CanPay(cost *ManaCost, pool *ManaPool, sources []Source, xValue int) bool {
	return CalculatePayment(cost, pool, sources, xValue) != nil
}

// ExecutePayment adds the plan's produced mana to the pool and spends the
// cost from it. Tapping the sources is the caller's job.
func ExecutePayment(plan *PaymentPlan, pool *ManaPool) error {
	if plan == nil {
		return nil
	}
	pool.AddAll(plan.Produced)
	return pool.SpendAll(plan.Spent)
}

// Available sums the mana in the pool and the given sources.
func Available(pool *ManaPool, sources []Source) int {
	total := 0
	if pool != nil {
		total = pool.Total()
	}
	for _, src := range sources {
		total += src.Amount
	}
	return total
}

// Coverage returns every type that the pool or sources can produce.
func Coverage(pool *ManaPool, sources []Source) ColorSet {
	var set ColorSet
	if pool != nil {
		for _, t := range pool.Units() {
			set = set.With(t)
		}
	}
	for _, src := range sources {
		set = set.Union(src.Colors)
	}
	return set
}
