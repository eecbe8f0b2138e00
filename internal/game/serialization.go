package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/magefree/mage-goldfish/internal/game/board"
)

// PermanentView is the recorded state of one permanent.
type PermanentView struct {
	ID        string
	Name      string
	Power     int
	Toughness int
	Tapped    bool
	Token     bool
	Commander bool
	Counters  map[string]int
	Keywords  []string
}

// Snapshot is the board at the end of one turn.
type Snapshot struct {
	Seed         int64
	Turn         int
	Life         int
	OpponentLife int
	Hand         []string
	LibrarySize  int
	Graveyard    []string
	CommandZone  bool
	Battlefield  []PermanentView
	Metrics      board.TurnMetrics
}

// NewSnapshot captures st.
func NewSnapshot(st *board.State) *Snapshot {
	s := &Snapshot{
		Seed:         st.Seed,
		Turn:         st.Turn,
		Life:         st.Life,
		OpponentLife: st.OpponentLife,
		LibrarySize:  len(st.Library),
		CommandZone:  st.CommandZone,
		Metrics:      *st.Current(),
	}
	for _, def := range st.Hand {
		s.Hand = append(s.Hand, def.Name)
	}
	for _, def := range st.Graveyard {
		s.Graveyard = append(s.Graveyard, def.Name)
	}
	for _, p := range st.Battlefield {
		view := PermanentView{
			ID:        p.ID,
			Name:      p.Def.Name,
			Power:     st.PowerOf(p),
			Toughness: st.ToughnessOf(p),
			Tapped:    p.Tapped,
			Token:     p.IsToken(),
			Commander: p.Commander,
			Keywords:  st.KeywordsOf(p),
			Counters:  make(map[string]int),
		}
		for _, kind := range p.Counters.Kinds() {
			view.Counters[kind] = p.Counters.GetCount(kind)
		}
		s.Battlefield = append(s.Battlefield, view)
	}
	return s
}

// Checksum is a SHA-256 of the snapshot's canonical form.
func (s *Snapshot) Checksum() string {
	sum := sha256.Sum256([]byte(s.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical renders the snapshot independent of map iteration order.
func (s *Snapshot) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%d|%d|%d|%d|%d|%t\n", s.Seed, s.Turn, s.Life, s.OpponentLife, s.LibrarySize, s.CommandZone)
	fmt.Fprintf(&buf, "HAND:%s\n", strings.Join(s.Hand, ","))
	fmt.Fprintf(&buf, "GRAVEYARD:%s\n", strings.Join(s.Graveyard, ","))
	fmt.Fprintf(&buf, "METRICS:%+v\n", s.Metrics)

	for _, p := range s.Battlefield {
		fmt.Fprintf(&buf, "PERMANENT:%s|%s|%d|%d|%t|%t|%t\n", p.ID, p.Name, p.Power, p.Toughness, p.Tapped, p.Token, p.Commander)
		names := make([]string, 0, len(p.Counters))
		for name := range p.Counters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&buf, "  COUNTER:%s=%d\n", name, p.Counters[name])
		}
		kws := append([]string(nil), p.Keywords...)
		sort.Strings(kws)
		fmt.Fprintf(&buf, "  KEYWORDS:%s\n", strings.Join(kws, ","))
	}
	return buf.String()
}

// SerializeToBytes gob-encodes the snapshot.
func (s *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeFromBytes decodes a snapshot written by SerializeToBytes.
func DeserializeFromBytes(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
