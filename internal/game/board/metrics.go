package board

// TurnMetrics are the per-turn measurements of one game.
type TurnMetrics struct {
	Turn           int `json:"turn"`
	CombatDamage   int `json:"combat_damage"`
	DrainDamage    int `json:"drain_damage"`
	BurnDamage     int `json:"burn_damage"`
	TokensCreated  int `json:"tokens_created"`
	LifeGained     int `json:"life_gained"`
	LifeLost       int `json:"life_lost"`
	CardsDrawn     int `json:"cards_drawn"`
	PeakPower      int `json:"peak_power"`
	SpellsCast     int `json:"spells_cast"`
	LandsPlayed    int `json:"lands_played"`
	ManaAvailable  int `json:"mana_available"`
	CountersPlaced int `json:"counters_placed"`
	CreaturesDied  int `json:"creatures_died"`
	OpponentLife   int `json:"opponent_life"`
}

// TotalDamage is combat plus drain plus burn damage.
func (m TurnMetrics) TotalDamage() int {
	return m.CombatDamage + m.DrainDamage + m.BurnDamage
}

// Add accumulates other into m. Turn and OpponentLife are summed too so that
// averages can be taken after a batch.
func (m *TurnMetrics) Add(other TurnMetrics) {
	m.CombatDamage += other.CombatDamage
	m.DrainDamage += other.DrainDamage
	m.BurnDamage += other.BurnDamage
	m.TokensCreated += other.TokensCreated
	m.LifeGained += other.LifeGained
	m.LifeLost += other.LifeLost
	m.CardsDrawn += other.CardsDrawn
	m.PeakPower += other.PeakPower
	m.SpellsCast += other.SpellsCast
	m.LandsPlayed += other.LandsPlayed
	m.ManaAvailable += other.ManaAvailable
	m.CountersPlaced += other.CountersPlaced
	m.CreaturesDied += other.CreaturesDied
	m.OpponentLife += other.OpponentLife
}

// GameRecord is the outcome of one simulated game.
type GameRecord struct {
	Seed  int64         `json:"seed"`
	Turns []TurnMetrics `json:"turns"`
	// CommanderCastTurn is the first turn the commander was cast, 0 if never.
	CommanderCastTurn int `json:"commander_cast_turn"`
}
