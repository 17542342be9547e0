// Package score persists the best (lowest) move count for each level.
//
// The board engine never touches a Store. The session that owns a board
// reads the total moves reported on a win and calls Record.
package score

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// ErrUnknownStore is returned by Open for an unrecognised store kind.
var ErrUnknownStore = errors.New("unknown score store")

// Store keeps one best move count per level.
type Store interface {
	// Best returns the stored best for level, or ok == false if the level
	// has never been completed.
	Best(ctx context.Context, level int) (moves int, ok bool, err error)
	// SetBest replaces the stored best for level.
	SetBest(ctx context.Context, level int, moves int) error
	// SetBestIfLower stores moves for level only if it beats the stored
	// best. The comparison and the write happen as one step.
	SetBestIfLower(ctx context.Context, level int, moves int) (Result, error)
	// All returns every stored best keyed by level.
	All(ctx context.Context) (map[int]int, error)
	// Reset forgets every stored best.
	Reset(ctx context.Context) error
	Close() error
}

// Result describes the outcome of Record.
type Result struct {
	Best      int
	Previous  int
	HadBest   bool
	NewRecord bool
}

// Record stores moves as the best for level if it beats the previous best.
// Fewer moves is better, and a first completion is always a record.
func Record(ctx context.Context, s Store, level int, moves int) (Result, error) {
	res, err := s.SetBestIfLower(ctx, level, moves)
	if err != nil {
		return Result{}, fmt.Errorf("failed to store best for level %d: %w", level, err)
	}
	return res, nil
}

// compare decides what storing moves over prev would do.
func compare(prev int, had bool, moves int) Result {
	if had && moves >= prev {
		return Result{Best: prev, Previous: prev, HadBest: true}
	}
	return Result{Best: moves, Previous: prev, HadBest: had, NewRecord: true}
}

// Open creates a store by kind: "memory", "file" (JSON at path) or
// "sqlite" (database at path).
func Open(kind, path string) (Store, error) {
	switch kind {
	case "memory", "":
		return NewMemory(), nil
	case "file":
		return OpenFile(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, kind)
	}
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu   sync.RWMutex
	best map[int]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{best: make(map[int]int)}
}

func (m *Memory) Best(_ context.Context, level int) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	moves, ok := m.best[level]
	return moves, ok, nil
}

func (m *Memory) SetBest(_ context.Context, level int, moves int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.best[level] = moves
	return nil
}

func (m *Memory) SetBestIfLower(_ context.Context, level int, moves int) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, had := m.best[level]
	res := compare(prev, had, moves)
	if res.NewRecord {
		m.best[level] = moves
	}
	return res, nil
}

func (m *Memory) All(context.Context) (map[int]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.best), nil
}

func (m *Memory) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.best)
	return nil
}

func (m *Memory) Close() error { return nil }
