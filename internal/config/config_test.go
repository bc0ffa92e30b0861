package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `anthropic:
  api_key: test-key
  model: claude-sonnet-4-20250514
tavily:
  api_key: tavily-key
research:
  profile: deep
  max_workers: 4
  max_iterations: 8
  tool_budget: 6
  timeout: 20m
bedrock:
  enabled: true
  region: us-west-2
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("Anthropic.APIKey = %q, want %q", cfg.Anthropic.APIKey, "test-key")
	}
	if cfg.Tavily.APIKey != "tavily-key" {
		t.Errorf("Tavily.APIKey = %q, want %q", cfg.Tavily.APIKey, "tavily-key")
	}
	if cfg.Research.Profile != "deep" {
		t.Errorf("Research.Profile = %q, want %q", cfg.Research.Profile, "deep")
	}
	if cfg.Research.MaxWorkers != 4 {
		t.Errorf("Research.MaxWorkers = %d, want 4", cfg.Research.MaxWorkers)
	}
	if cfg.Research.MaxIterations != 8 {
		t.Errorf("Research.MaxIterations = %d, want 8", cfg.Research.MaxIterations)
	}
	if cfg.Research.Timeout != 20*time.Minute {
		t.Errorf("Research.Timeout = %v, want 20m", cfg.Research.Timeout)
	}
	if !cfg.Bedrock.Enabled {
		t.Error("Bedrock.Enabled = false, want true")
	}
	if cfg.Bedrock.Region != "us-west-2" {
		t.Errorf("Bedrock.Region = %q, want %q", cfg.Bedrock.Region, "us-west-2")
	}
}

func TestLoadFromPath_DefaultsFillGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: only-key\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Research.MaxWorkers != 3 {
		t.Errorf("MaxWorkers = %d, want default 3", cfg.Research.MaxWorkers)
	}
	if cfg.Research.MaxIterations != 6 {
		t.Errorf("MaxIterations = %d, want default 6", cfg.Research.MaxIterations)
	}
	if cfg.Research.ToolBudget != 5 {
		t.Errorf("ToolBudget = %d, want default 5", cfg.Research.ToolBudget)
	}
	if cfg.Research.Profile != "standard" {
		t.Errorf("Profile = %q, want default standard", cfg.Research.Profile)
	}
}

func TestLoadFromPath_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("LEXSCOUT_TEST_KEY", "expanded-value")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("anthropic:\n  api_key: ${LEXSCOUT_TEST_KEY}\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Anthropic.APIKey != "expanded-value" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestGetUserConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")

	got := getUserConfigDir()
	want := filepath.Join("/custom/xdg", "lexscout")
	if got != want {
		t.Errorf("getUserConfigDir() = %q, want %q", got, want)
	}
}

func TestFindProjectConfig_WalksParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	configPath := filepath.Join(root, ".lexscout.yaml")
	if err := os.WriteFile(configPath, []byte("research:\n  profile: quick\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	got := findProjectConfig()
	// Compare via EvalSymlinks: t.TempDir may sit behind a symlink.
	wantResolved, _ := filepath.EvalSymlinks(configPath)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("findProjectConfig() = %q, want %q", got, configPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Research.MaxWorkers != 3 || cfg.Research.MaxIterations != 6 || cfg.Research.ToolBudget != 5 {
		t.Errorf("Default() budgets = %d/%d/%d, want 3/6/5",
			cfg.Research.MaxWorkers, cfg.Research.MaxIterations, cfg.Research.ToolBudget)
	}
	if cfg.Research.Profile != "standard" {
		t.Errorf("Default() profile = %q, want standard", cfg.Research.Profile)
	}
}
