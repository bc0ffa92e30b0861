// Package control handles out-of-band run control via the .lexscout
// directory. A stop file in .lexscout/signals asks a running research
// session to wind down after the current round.
package control

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SignalManager watches the signals directory for a stop request.
type SignalManager struct {
	signalsDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalManager creates a signal manager rooted at the given project
// directory. The watcher is best-effort: when it cannot be created, the
// stat fallback in ShouldStop still works.
func NewSignalManager(projectRoot string) (*SignalManager, error) {
	signalsDir := filepath.Join(projectRoot, ".lexscout", "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sm := &SignalManager{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sm, nil
	}
	sm.watcher = watcher

	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		sm.watcher = nil
		return sm, nil
	}

	go sm.watchSignals()

	return sm, nil
}

func (sm *SignalManager) watchSignals() {
	for {
		select {
		case <-sm.done:
			return
		case event, ok := <-sm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == "stop" && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				sm.mu.Lock()
				sm.stopSignal = true
				sm.mu.Unlock()
			}
		case <-sm.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ShouldStop returns true if a stop signal has been received.
func (sm *SignalManager) ShouldStop() bool {
	// Also check the file directly in case the watcher missed it
	stopPath := filepath.Join(sm.signalsDir, "stop")
	if _, err := os.Stat(stopPath); err == nil {
		sm.mu.Lock()
		sm.stopSignal = true
		sm.mu.Unlock()
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.stopSignal
}

// SendStop creates the stop signal file.
func (sm *SignalManager) SendStop() error {
	path := filepath.Join(sm.signalsDir, "stop")
	return os.WriteFile(path, []byte(time.Now().Format(time.RFC3339)), 0644)
}

// ClearSignals removes the signal file and resets the signal state.
func (sm *SignalManager) ClearSignals() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.stopSignal = false
	os.Remove(filepath.Join(sm.signalsDir, "stop"))
}

// SignalsDir returns the path to the signals directory.
func (sm *SignalManager) SignalsDir() string {
	return sm.signalsDir
}

// Close shuts down the signal manager.
func (sm *SignalManager) Close() {
	close(sm.done)
	if sm.watcher != nil {
		sm.watcher.Close()
	}
}
