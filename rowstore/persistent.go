package rowstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/rowmap/model"
)

// FileStore is a durable Store: MemoryStore semantics backed by an
// append-only row log. On Open the log is replayed to rebuild the
// in-memory state; puts and deletes append to the log before they become
// visible.
//
// Reads never touch the log, so FileStore inherits MemoryStore's
// concurrent-read safety and can be shared across export workers.
type FileStore struct {
	mem *MemoryStore

	mu  sync.Mutex // serializes log appends
	log *appendLog
}

// Open opens (or creates) a file store in the given directory.
func Open(dir string, optFns ...func(*Options)) (*FileStore, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	log, err := openLog(filepath.Join(dir, opts.FileName), opts)
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		mem: NewMemoryStore(),
		log: log,
	}

	ctx := context.Background()
	err = log.replay(func(op byte, key model.Key, row *model.Row) error {
		if op == opDelete {
			// Deletes are only logged for existing keys, so an absent
			// key here means the log was tampered with.
			if err := s.mem.Delete(ctx, key); err != nil {
				return fmt.Errorf("%w: delete of absent key %q", ErrLogCorrupt, key)
			}
			return nil
		}
		return s.mem.Put(ctx, key, row)
	})
	if err != nil {
		_ = log.close()
		return nil, err
	}

	return s, nil
}

// Get retrieves the row stored under key.
func (s *FileStore) Get(ctx context.Context, key model.Key) (*model.Row, error) {
	return s.mem.Get(ctx, key)
}

// Put appends the row to the log, then makes it visible.
func (s *FileStore) Put(ctx context.Context, key model.Key, row *model.Row) error {
	if key == "" {
		return ErrInvalidKey
	}

	// One lock spans log append and memory apply so replay order always
	// matches the visible state.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.log.append(opPut, key, row); err != nil {
		return err
	}
	return s.mem.Put(ctx, key, row)
}

// Delete appends a tombstone to the log, then removes the row.
func (s *FileStore) Delete(ctx context.Context, key model.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check existence first so absent keys don't grow the log.
	if _, err := s.mem.Get(ctx, key); err != nil {
		return err
	}
	if err := s.log.append(opDelete, key, nil); err != nil {
		return err
	}
	return s.mem.Delete(ctx, key)
}

// Count returns the number of stored rows.
func (s *FileStore) Count(ctx context.Context) (uint64, error) {
	return s.mem.Count(ctx)
}

// Keys returns a sorted snapshot of all keys.
func (s *FileStore) Keys(ctx context.Context) ([]model.Key, error) {
	return s.mem.Keys(ctx)
}

// Scan visits all rows with keys in r, in ascending key order.
func (s *FileStore) Scan(ctx context.Context, r Range, fn func(key model.Key, row *model.Row) error) error {
	return s.mem.Scan(ctx, r, fn)
}

// Close syncs and closes the row log. The store must not be used after
// Close.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.close()
}
