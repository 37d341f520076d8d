package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Config configures a Store.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes
	Dir              string // disk tier location
	Disk             bool   // enable the disk tier
	CompressionLevel int    // zstd level, 1-22
	TTL              time.Duration
}

// DefaultConfig returns the default cache configuration rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		MemoryCapacity:   64 << 20,
		DiskCapacity:     512 << 20,
		Dir:              dir,
		Disk:             dir != "",
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
	}
}

// Store is the two-tier cache. Disk hits are promoted to memory.
type Store struct {
	memory *MemoryCache
	disk   *DiskCache // nil when the disk tier is off

	mu         sync.Mutex
	promotions int64
}

// New opens a Store. Expired disk entries are dropped on open.
func New(cfg Config) (*Store, error) {
	s := &Store{memory: NewMemoryCache(cfg.MemoryCapacity)}

	if cfg.Disk {
		if cfg.Dir == "" {
			return nil, errors.New("cache directory is not set")
		}
		dc, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		if cfg.TTL > 0 {
			if n := dc.RemoveOlderThan(time.Now().Add(-cfg.TTL)); n > 0 {
				log.Debug("expired cached narration", "count", n)
			}
		}
		s.disk = dc
	}
	return s, nil
}

// Get checks memory, then disk.
func (s *Store) Get(key string) ([]byte, bool) {
	if data, ok := s.memory.Get(key); ok {
		return data, true
	}
	if s.disk == nil {
		return nil, false
	}
	data, ok := s.disk.Get(key)
	if !ok {
		return nil, false
	}

	// best effort
	if err := s.memory.Put(key, data); err == nil {
		s.mu.Lock()
		s.promotions++
		s.mu.Unlock()
	}
	return data, true
}

// Put writes to both tiers. An item too large for memory still goes to
// disk.
func (s *Store) Put(key string, value []byte) error {
	if err := s.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}
	if s.disk != nil {
		if err := s.disk.Put(key, value); err != nil {
			return fmt.Errorf("disk cache: %w", err)
		}
	}
	return nil
}

// Delete removes key from both tiers.
func (s *Store) Delete(key string) error {
	errs := []error{s.memory.Delete(key)}
	if s.disk != nil {
		errs = append(errs, s.disk.Delete(key))
	}
	return errors.Join(errs...)
}

// Clear empties both tiers.
func (s *Store) Clear() error {
	errs := []error{s.memory.Clear()}
	if s.disk != nil {
		errs = append(errs, s.disk.Clear())
	}
	return errors.Join(errs...)
}

// Size returns the bytes held by both tiers.
func (s *Store) Size() int64 {
	n := s.memory.Size()
	if s.disk != nil {
		n += s.disk.Size()
	}
	return n
}

// Stats sums the counters of both tiers. A disk hit after a memory miss
// counts once as a hit.
func (s *Store) Stats() Stats {
	m := s.memory.Stats()
	if s.disk == nil {
		return m
	}
	d := s.disk.Stats()
	return Stats{
		Capacity:  m.Capacity + d.Capacity,
		Size:      m.Size + d.Size,
		Items:     d.Items,
		Hits:      m.Hits + d.Hits,
		Misses:    d.Misses,
		Evictions: m.Evictions + d.Evictions,
	}
}

// Tier returns the counters of one tier.
func (s *Store) Tier(l Level) (Stats, bool) {
	switch l {
	case LevelMemory:
		return s.memory.Stats(), true
	case LevelDisk:
		if s.disk != nil {
			return s.disk.Stats(), true
		}
	}
	return Stats{}, false
}

// Promotions returns how many disk hits were copied into memory.
func (s *Store) Promotions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promotions
}

// Close persists the disk index.
func (s *Store) Close() error {
	if s.disk == nil {
		return nil
	}
	if err := s.disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}
