package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SetGetRemove(t *testing.T) {
	s := New(t.TempDir())

	if _, ok, err := s.Get("token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("token", "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != "abc123" {
		t.Errorf("expected abc123, got %q (ok=%v)", v, ok)
	}

	if err := s.Remove("token"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := s.Get("token"); ok {
		t.Error("key should be gone after Remove")
	}

	// Removing again is a no-op
	if err := s.Remove("token"); err != nil {
		t.Errorf("Remove of absent key should not fail: %v", err)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1 := New(dir)
	if err := s1.Set("data_mode", "real"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Simulated restart: a fresh store over the same directory
	s2 := New(dir)
	v, ok, err := s2.Get("data_mode")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != "real" {
		t.Errorf("expected persisted value real, got %q (ok=%v)", v, ok)
	}
}

func TestStore_CorruptStateDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write corrupt state: %v", err)
	}

	s := New(dir)
	if _, ok, err := s.Get("token"); err != nil || ok {
		t.Errorf("corrupt state should read as empty, got ok=%v err=%v", ok, err)
	}

	// And writes still work afterwards
	if err := s.Set("token", "x"); err != nil {
		t.Fatalf("Set after corrupt state failed: %v", err)
	}
	if v, ok, _ := s.Get("token"); !ok || v != "x" {
		t.Errorf("expected x, got %q", v)
	}
}
