package control

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewSignalManager_CreatesDirectory(t *testing.T) {
	root := t.TempDir()

	sm, err := NewSignalManager(root)
	if err != nil {
		t.Fatalf("NewSignalManager() error = %v", err)
	}
	defer sm.Close()

	info, err := os.Stat(filepath.Join(root, ".lexscout", "signals"))
	if err != nil {
		t.Fatalf("signals directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("signals path is not a directory")
	}
}

func TestSignalManager_StopViaFile(t *testing.T) {
	root := t.TempDir()

	sm, err := NewSignalManager(root)
	if err != nil {
		t.Fatalf("NewSignalManager() error = %v", err)
	}
	defer sm.Close()

	if sm.ShouldStop() {
		t.Fatal("ShouldStop() = true before any signal")
	}

	// Write the file directly: the stat fallback must catch it even if
	// the watcher event has not arrived yet.
	stopPath := filepath.Join(sm.SignalsDir(), "stop")
	if err := os.WriteFile(stopPath, []byte("now"), 0644); err != nil {
		t.Fatalf("writing stop file: %v", err)
	}

	if !sm.ShouldStop() {
		t.Error("ShouldStop() = false after stop file written")
	}
}

func TestSignalManager_SendStop(t *testing.T) {
	root := t.TempDir()

	sm, err := NewSignalManager(root)
	if err != nil {
		t.Fatalf("NewSignalManager() error = %v", err)
	}
	defer sm.Close()

	if err := sm.SendStop(); err != nil {
		t.Fatalf("SendStop() error = %v", err)
	}
	if !sm.ShouldStop() {
		t.Error("ShouldStop() = false after SendStop()")
	}
}

func TestSignalManager_ClearSignals(t *testing.T) {
	root := t.TempDir()

	sm, err := NewSignalManager(root)
	if err != nil {
		t.Fatalf("NewSignalManager() error = %v", err)
	}
	defer sm.Close()

	if err := sm.SendStop(); err != nil {
		t.Fatalf("SendStop() error = %v", err)
	}
	sm.ClearSignals()

	if sm.ShouldStop() {
		t.Error("ShouldStop() = true after ClearSignals()")
	}
	if _, err := os.Stat(filepath.Join(sm.SignalsDir(), "stop")); !os.IsNotExist(err) {
		t.Error("stop file still present after ClearSignals()")
	}
}
