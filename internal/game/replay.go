package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Replay is the sequence of end-of-turn snapshots of one game.
type Replay struct {
	GameID       string
	Seed         int64
	States       []*Snapshot
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay. The game id is derived from the seed so
// that replays of the same game share a file name.
func NewReplay(seed int64) *Replay {
	return &Replay{
		GameID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("goldfish-replay|"+strconv.FormatInt(seed, 10))).String(),
		Seed:   seed,
	}
}

// addTurn appends the end-of-turn snapshot.
func (r *Replay) addTurn(snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.States = append(r.States, snapshot)
}

// Rewind moves the cursor back to turn 1.
func (r *Replay) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the snapshot under the cursor and advances one turn, or nil
// past the last turn.
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex >= len(r.States) {
		return nil
	}
	s := r.States[r.CurrentIndex]
	r.CurrentIndex++
	return s
}

// Previous steps the cursor back one turn and returns that snapshot.
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex == 0 {
		return nil
	}
	r.CurrentIndex--
	return r.States[r.CurrentIndex]
}

// Size returns the number of recorded turns.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.States)
}

// Turn returns the snapshot taken at the end of turn n, counting from 1.
func (r *Replay) Turn(n int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 1 || n > len(r.States) {
		return nil
	}
	return r.States[n-1]
}

// Final returns the last recorded snapshot.
func (r *Replay) Final() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

// Checksums returns the checksum of every snapshot in order.
func (r *Replay) Checksums() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.States))
	for i, s := range r.States {
		out[i] = s.Checksum()
	}
	return out
}

// replayMetadata heads a saved replay file.
type replayMetadata struct {
	GameID     string
	Seed       int64
	Timestamp  time.Time
	Version    int
	StateCount int
}

const replayVersion = 1

// SaveToFile writes the replay to <directory>/<game id>.replay as gzipped gob
// and returns the path.
func (r *Replay) SaveToFile(directory string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, r.GameID+".replay")
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := replayMetadata{
		GameID:     r.GameID,
		Seed:       r.Seed,
		Timestamp:  time.Now(),
		Version:    replayVersion,
		StateCount: len(r.States),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i, state := range r.States {
		if err := encoder.Encode(state); err != nil {
			return "", fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}
	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to flush replay: %w", err)
	}
	return filename, nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(filename string) (*Replay, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := &Replay{GameID: metadata.GameID, Seed: metadata.Seed}
	for i := 0; i < metadata.StateCount; i++ {
		var state Snapshot
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		replay.States = append(replay.States, &state)
	}
	return replay, nil
}
