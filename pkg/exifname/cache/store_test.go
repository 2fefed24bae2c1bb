package cache

import (
	"errors"
	"testing"
	"time"
)

func TestStoreOpenClose(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStoreGetPutDelete(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	entry := NewEntry(42, time.Now(), time.Date(2023, 3, 5, 14, 7, 22, 0, time.UTC))

	if err := store.Put("/photos/a.jpg", entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get("/photos/a.jpg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Size != entry.Size || got.Mtime != entry.Mtime || got.Captured != entry.Captured {
		t.Errorf("Get = %+v, want %+v", got, entry)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	_, err = store.Get("/nonexistent/path.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMakeKeyPrefix(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"", keyPrefix},
		{"/", keyPrefix + "/"},
		{"/photos", keyPrefix + "/photos/"},
		{"/photos/", keyPrefix + "/photos/"},
	}

	for _, tt := range tests {
		if got := string(MakeKeyPrefix(tt.dir)); got != tt.want {
			t.Errorf("MakeKeyPrefix(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestEntryMatches(t *testing.T) {
	mtime := time.Now()
	e := NewEntry(10, mtime, time.Now())

	if !e.Matches(10, mtime) {
		t.Error("expected entry to match its own size and mtime")
	}

	e.Version = CacheVersion + 1
	if e.Matches(10, mtime) {
		t.Error("entry from another cache version must not match")
	}
}
