// Package statistics keeps the persistent win/loss/quit ledger keyed by
// player name. The ledger lives outside any single game: the transport
// records outcomes when a game ends or a player abandons one, and the
// score display merges it with the live snapshot.
package statistics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is one player's lifetime tallies.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Quits  int `json:"quits"`
}

// Store is a mutex-guarded ledger persisted as a JSON file. An empty
// path keeps the ledger in memory only, which tests use.
type Store struct {
	mu      sync.Mutex
	path    string
	records map[string]Record
}

// Open loads the ledger at path, starting fresh if the file does not
// exist yet. A corrupt file is an error rather than silent data loss.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]Record),
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stats ledger: %w", err)
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parsing stats ledger %s: %w", path, err)
	}
	return s, nil
}

// RecordWin increments the player's win count.
func (s *Store) RecordWin(name string) error {
	return s.update(name, func(r *Record) { r.Wins++ })
}

// RecordLoss increments the player's loss count.
func (s *Store) RecordLoss(name string) error {
	return s.update(name, func(r *Record) { r.Losses++ })
}

// RecordQuit increments the player's quit count. Quits are only charged
// for leaving an active game, not a lobby.
func (s *Store) RecordQuit(name string) error {
	return s.update(name, func(r *Record) { r.Quits++ })
}

// Get returns the player's record; unknown players have a zero record.
func (s *Store) Get(name string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[name]
}

func (s *Store) update(name string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.records[name]
	fn(&r)
	s.records[name] = r
	return s.save()
}

// save writes the ledger atomically: temp file in the same directory,
// then rename over the old one.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".stats-*.json")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
