package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testAudio(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 7)
	}
	return data
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}

	value := testAudio(4096)
	if err := dc.Put("k", value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := dc.Get("k")
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if !bytes.Equal(got, value) {
		t.Error("round trip mismatch")
	}
	if dc.Size() >= int64(len(value)) {
		t.Errorf("Size = %d, expected compression below %d", dc.Size(), len(value))
	}
	if _, err := os.Stat(filepath.Join(dir, "k"+entryExt)); err != nil {
		t.Errorf("entry file missing: %v", err)
	}
}

func TestDiskCache_Persistence(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	dc.Put("a", testAudio(100))
	dc.Put("b", testAudio(200))
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A file removed behind the index's back is dropped on reopen.
	if err := os.Remove(filepath.Join(dir, "b"+entryExt)); err != nil {
		t.Fatal(err)
	}

	dc, err = NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	if got, ok := dc.Get("a"); !ok || !bytes.Equal(got, testAudio(100)) {
		t.Error("entry a lost across reopen")
	}
	if _, ok := dc.Get("b"); ok {
		t.Error("entry b should be gone")
	}
	if dc.Stats().Items != 1 {
		t.Errorf("Items = %d, want 1", dc.Stats().Items)
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	dc.Put("k", testAudio(64))

	if err := os.WriteFile(filepath.Join(dir, "k"+entryExt), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := dc.Get("k"); ok {
		t.Error("Get returned a corrupt entry")
	}
	if dc.Size() != 0 {
		t.Errorf("Size = %d after dropping corrupt entry", dc.Size())
	}
}

func TestDiskCache_EvictsOldest(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	dc.Put("old", testAudio(10))
	time.Sleep(5 * time.Millisecond)
	dc.Put("new", testAudio(10))

	// Shrink so the next put forces one eviction.
	dc.capacity = dc.Size() + 1
	if err := dc.Put("newest", testAudio(10)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok := dc.Get("old"); ok {
		t.Error("least recently used entry survived")
	}
	if _, ok := dc.Get("newest"); !ok {
		t.Error("new entry missing")
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	dc.Put("a", testAudio(10))
	dc.index["a"].Created = time.Now().Add(-48 * time.Hour)
	dc.Put("b", testAudio(10))

	if n := dc.RemoveOlderThan(time.Now().Add(-24 * time.Hour)); n != 1 {
		t.Errorf("RemoveOlderThan = %d, want 1", n)
	}
	if _, ok := dc.Get("b"); !ok {
		t.Error("fresh entry removed")
	}
}

func TestStore_Promotion(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Put("k", testAudio(512))
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Fresh store: memory is empty, disk has the entry.
	s, err = New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got, ok := s.Get("k"); !ok || !bytes.Equal(got, testAudio(512)) {
		t.Fatal("disk entry not found")
	}
	if s.Promotions() != 1 {
		t.Errorf("Promotions = %d, want 1", s.Promotions())
	}
	mem, _ := s.Tier(LevelMemory)
	if mem.Items != 1 {
		t.Errorf("memory Items = %d, want 1", mem.Items)
	}

	s.Get("k")
	if s.Promotions() != 1 {
		t.Errorf("memory hit promoted again")
	}
}

func TestStore_MemoryOnly(t *testing.T) {
	s, err := New(Config{MemoryCapacity: 1024})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Tier(LevelDisk); ok {
		t.Error("disk tier present when disabled")
	}
	s.Put("k", []byte("v"))
	if _, ok := s.Get("k"); !ok {
		t.Error("memory-only store lost entry")
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("unexpected hit")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestStore_DiskWithoutDir(t *testing.T) {
	if _, err := New(Config{Disk: true}); err == nil {
		t.Error("expected an error for disk tier without directory")
	}
}

func TestStore_TooLargeForMemory(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.MemoryCapacity = 8

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Put("k", testAudio(64)); err != nil {
		t.Fatalf("Put = %v", err)
	}
	if _, ok := s.Get("k"); !ok {
		t.Error("item should be served from disk")
	}
}

func TestStore_ClearAndDelete(t *testing.T) {
	s, err := New(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Put("a", testAudio(32))
	s.Put("b", testAudio(32))

	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("a"); ok {
		t.Error("deleted entry still served")
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 0 {
		t.Errorf("Size = %d after Clear", s.Size())
	}
}

func TestStore_Stats(t *testing.T) {
	s, err := New(DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Put("a", testAudio(32))
	s.Get("a")
	s.Get("missing")

	st := s.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Hits=%d Misses=%d, want 1 and 1", st.Hits, st.Misses)
	}
	if st.Items != 1 {
		t.Errorf("Items = %d, want 1", st.Items)
	}
}

func TestKey(t *testing.T) {
	base := Key("Caf\u00e9", "Kore", "m")

	tests := []struct {
		name  string
		text  string
		voice string
		model string
		same  bool
	}{
		{"identical", "Café", "Kore", "m", true},
		{"decomposed accent", "Cafe\u0301", "Kore", "m", true},
		{"surrounding space", "  Café\n", "Kore", "m", true},
		{"other voice", "Café", "Puck", "m", false},
		{"other model", "Café", "Kore", "n", false},
		{"other text", "Cafe", "Kore", "m", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(tt.text, tt.voice, tt.model)
			if (got == base) != tt.same {
				t.Errorf("Key(%q, %q, %q) == base is %v, want %v", tt.text, tt.voice, tt.model, got == base, tt.same)
			}
			if len(got) != 32 {
				t.Errorf("len(Key) = %d, want 32", len(got))
			}
		})
	}

	// Field boundaries matter.
	if Key("ab", "c", "") == Key("a", "bc", "") {
		t.Error("keys collide across field boundaries")
	}
}

func TestLevelString(t *testing.T) {
	if LevelMemory.String() != "memory" || LevelDisk.String() != "disk" || Level(9).String() != "unknown" {
		t.Error("unexpected Level strings")
	}
}
