package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultProfiles(t *testing.T) {
	p := DefaultProfiles()

	tests := []struct {
		name          string
		profile       Profile
		maxWorkers    int
		maxIterations int
		toolBudget    int
	}{
		{"quick", p.Quick, 1, 3, 3},
		{"standard", p.Standard, 3, 6, 5},
		{"deep", p.Deep, 5, 10, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.profile.Name != tc.name {
				t.Errorf("Name = %q, want %q", tc.profile.Name, tc.name)
			}
			if tc.profile.MaxWorkers != tc.maxWorkers {
				t.Errorf("MaxWorkers = %d, want %d", tc.profile.MaxWorkers, tc.maxWorkers)
			}
			if tc.profile.MaxIterations != tc.maxIterations {
				t.Errorf("MaxIterations = %d, want %d", tc.profile.MaxIterations, tc.maxIterations)
			}
			if tc.profile.ToolBudget != tc.toolBudget {
				t.Errorf("ToolBudget = %d, want %d", tc.profile.ToolBudget, tc.toolBudget)
			}
		})
	}
}

func TestProfilesGet(t *testing.T) {
	p := DefaultProfiles()

	if got := p.Get("quick"); got.Name != "quick" {
		t.Errorf("Get(quick) = %q", got.Name)
	}
	if got := p.Get("deep"); got.Name != "deep" {
		t.Errorf("Get(deep) = %q", got.Name)
	}
	if got := p.Get("standard"); got.Name != "standard" {
		t.Errorf("Get(standard) = %q", got.Name)
	}
	// Unknown names fall back to standard.
	if got := p.Get("heroic"); got.Name != "standard" {
		t.Errorf("Get(unknown) = %q, want standard", got.Name)
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")

	content := `quick:
  name: quick
  max_workers: 2
  max_iterations: 4
  tool_budget: 3
  timeout: 3m
deep:
  name: deep
  max_workers: 6
  max_iterations: 12
  tool_budget: 10
  timeout: 45m
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing profiles: %v", err)
	}

	p, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}

	if p.Quick.MaxWorkers != 2 {
		t.Errorf("Quick.MaxWorkers = %d, want 2", p.Quick.MaxWorkers)
	}
	if p.Quick.Timeout != 3*time.Minute {
		t.Errorf("Quick.Timeout = %v, want 3m", p.Quick.Timeout)
	}
	if p.Deep.MaxIterations != 12 {
		t.Errorf("Deep.MaxIterations = %d, want 12", p.Deep.MaxIterations)
	}
	// Standard was omitted from the file: defaults stand.
	if p.Standard.MaxWorkers != 3 {
		t.Errorf("Standard.MaxWorkers = %d, want default 3", p.Standard.MaxWorkers)
	}
}

func TestLoadProfiles_InvalidBudget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")

	content := `quick:
  max_workers: 0
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing profiles: %v", err)
	}

	if _, err := LoadProfiles(path); err == nil {
		t.Error("expected error for zero max_workers")
	}
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	if _, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing profiles file")
	}
}
