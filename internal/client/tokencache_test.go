package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	saved := CachedToken{Username: "demo", Token: "0123456789abcdef0123456789abcdef01234567"}
	if err := SaveCachedToken(path, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("cache file mode = %o, want 600", perm)
	}

	loaded, err := LoadCachedToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("load returned nil for existing cache")
	}
	if *loaded != saved {
		t.Errorf("loaded %+v, want %+v", *loaded, saved)
	}
}

func TestLoadCachedToken_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	loaded, err := LoadCachedToken(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for missing cache, got %+v", loaded)
	}
}

func TestLoadCachedToken_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCachedToken(path); err == nil {
		t.Error("expected error for corrupt cache")
	}
}

func TestClearCachedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveCachedToken(path, CachedToken{Username: "demo", Token: "tok"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := ClearCachedToken(path); err != nil {
		t.Fatalf("clear: %v", err)
	}
	loaded, err := LoadCachedToken(path)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil after clear, got %+v", loaded)
	}

	// Clearing an already-missing cache is not an error.
	if err := ClearCachedToken(path); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
