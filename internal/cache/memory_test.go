package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	c := NewMemoryCache(1024)

	key := "test-key"
	value := []byte("test-value")

	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if string(got) != string(value) {
		t.Errorf("Get = %s, want %s", got, value)
	}
	if !c.Contains(key) {
		t.Error("Contains returned false for existing key")
	}
	if c.Size() != int64(len(value)) {
		t.Errorf("Size = %d, want %d", c.Size(), len(value))
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Contains(key) {
		t.Error("key still exists after delete")
	}
	if c.Size() != 0 {
		t.Errorf("Size not zero after delete: %d", c.Size())
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(100)

	for i := 0; i < 5; i++ {
		if err := c.Put(fmt.Sprintf("key-%d", i), make([]byte, 20)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// key-0 and key-1 become most recently used.
	c.Get("key-0")
	c.Get("key-1")

	if err := c.Put("key-new", make([]byte, 30)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for _, k := range []string{"key-0", "key-1", "key-new", "key-4"} {
		if !c.Contains(k) {
			t.Errorf("%s was evicted", k)
		}
	}
	for _, k := range []string{"key-2", "key-3"} {
		if c.Contains(k) {
			t.Errorf("%s should have been evicted", k)
		}
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
	if c.Size() > 100 {
		t.Errorf("Size %d exceeds capacity", c.Size())
	}
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	c := NewMemoryCache(10)
	if err := c.Put("big", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("Put error = %v, want ErrItemTooLarge", err)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}

func TestMemoryCache_UpdateExisting(t *testing.T) {
	c := NewMemoryCache(100)
	c.Put("k", make([]byte, 10))
	c.Put("k", make([]byte, 40))

	if c.Size() != 40 {
		t.Errorf("Size = %d, want 40", c.Size())
	}
	if got := c.Stats().Items; got != 1 {
		t.Errorf("Items = %d, want 1", got)
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(100)
	c.Put("a", []byte("1"))
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Hits=%d Misses=%d, want 2 and 1", s.Hits, s.Misses)
	}
	if rate := s.HitRate(); rate < 0.66 || rate > 0.67 {
		t.Errorf("HitRate = %v", rate)
	}
	if s.Capacity != 100 {
		t.Errorf("Capacity = %d", s.Capacity)
	}
	if (Stats{}).HitRate() != 0 {
		t.Error("empty HitRate should be 0")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(100)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Size() != 0 || c.Contains("a") || c.Contains("b") {
		t.Error("entries remain after Clear")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(1 << 16)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := fmt.Sprintf("k-%d-%d", g, i%10)
				c.Put(k, make([]byte, 16))
				c.Get(k)
				if i%7 == 0 {
					c.Delete(k)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Size() < 0 || c.Size() > 1<<16 {
		t.Errorf("Size = %d out of bounds", c.Size())
	}
}
