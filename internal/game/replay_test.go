package game

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-goldfish/internal/game/board"
	"github.com/magefree/mage-goldfish/internal/game/card"
)

func recordedGame(t *testing.T) *Replay {
	t.Helper()
	e := newTestEngine(t, func(o *Options) { o.MaxTurns = 4 })
	bear := mustDef(t, card.Record{Name: "Bear", ManaCost: "{1}{R}", TypeLine: "Creature — Bear", Power: "2", Toughness: "2"})
	_, replay, err := e.Record(context.Background(), deckOf(copies(mountain(t), 18), copies(bear, 22)), nil, 21)
	require.NoError(t, err)
	return replay
}

func TestReplayNavigation(t *testing.T) {
	replay := recordedGame(t)
	require.Equal(t, 4, replay.Size())

	replay.Rewind()
	for turn := 1; turn <= 4; turn++ {
		s := replay.Next()
		require.NotNil(t, s)
		assert.Equal(t, turn, s.Turn)
	}
	assert.Nil(t, replay.Next())

	prev := replay.Previous()
	require.NotNil(t, prev)
	assert.Equal(t, 4, prev.Turn)

	replay.Rewind()
	assert.Nil(t, replay.Previous())
	assert.Nil(t, replay.Turn(0))
	assert.Nil(t, replay.Turn(5))
	assert.Equal(t, 2, replay.Turn(2).Turn)
	assert.Same(t, replay.Turn(4), replay.Final())
}

func TestReplaySaveAndLoad(t *testing.T) {
	replay := recordedGame(t)
	dir := filepath.Join(t.TempDir(), "replays")

	path, err := replay.SaveToFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, replay.GameID+".replay"), path)

	loaded, err := LoadReplayFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, replay.GameID, loaded.GameID)
	assert.Equal(t, replay.Seed, loaded.Seed)
	assert.Equal(t, replay.Checksums(), loaded.Checksums())
}

func TestLoadReplayMissingFile(t *testing.T) {
	_, err := LoadReplayFromFile(filepath.Join(t.TempDir(), "missing.replay"))
	assert.Error(t, err)
}

func TestSnapshotChecksumTracksState(t *testing.T) {
	st := board.NewState(4, nil, nil, 40, 40, nil)
	st.Enter(mountain(t), board.EnterOptions{})

	a := NewSnapshot(st)
	b := NewSnapshot(st)
	assert.Equal(t, a.Checksum(), b.Checksum())

	st.OpponentLife--
	assert.NotEqual(t, a.Checksum(), NewSnapshot(st).Checksum())

	data, err := a.SerializeToBytes()
	require.NoError(t, err)
	decoded, err := DeserializeFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, a.Checksum(), decoded.Checksum())
}
