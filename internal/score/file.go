package score

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/lox/tilematch/internal/fileutil"
)

// File is a Store backed by a JSON object mapping level ids to best move
// counts, rewritten atomically on every change.
type File struct {
	path string

	mu   sync.Mutex
	best map[int]int
}

// OpenFile loads the store at path. A missing file is an empty store.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("score file path is required")
	}

	var raw map[string]int
	if _, err := fileutil.ReadJSON(path, &raw); err != nil {
		return nil, err
	}

	best := make(map[int]int, len(raw))
	for k, v := range raw {
		level, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid level key %q in %s", k, path)
		}
		best[level] = v
	}
	return &File{path: path, best: best}, nil
}

func (f *File) Best(_ context.Context, level int) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	moves, ok := f.best[level]
	return moves, ok, nil
}

func (f *File) SetBest(_ context.Context, level int, moves int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store(level, moves)
}

func (f *File) SetBestIfLower(_ context.Context, level int, moves int) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.best[level]
	res := compare(prev, had, moves)
	if !res.NewRecord {
		return res, nil
	}
	if err := f.store(level, moves); err != nil {
		return Result{}, err
	}
	return res, nil
}

// store sets and flushes one level, restoring the old value if the write
// fails. Callers hold mu.
func (f *File) store(level, moves int) error {
	prev, had := f.best[level]
	f.best[level] = moves
	if err := f.flush(); err != nil {
		if had {
			f.best[level] = prev
		} else {
			delete(f.best, level)
		}
		return err
	}
	return nil
}

func (f *File) All(context.Context) (map[int]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.best), nil
}

func (f *File) Reset(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.best)
	return f.flush()
}

func (f *File) Close() error { return nil }

func (f *File) flush() error {
	raw := make(map[string]int, len(f.best))
	for level, moves := range f.best {
		raw[strconv.Itoa(level)] = moves
	}
	return fileutil.WriteJSONAtomic(f.path, raw, 0o644)
}
