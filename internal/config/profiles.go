package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile holds the research budgets for one depth setting.
type Profile struct {
	// Name is the profile name (quick, standard, deep).
	Name string `yaml:"name"`
	// MaxWorkers is the maximum parallel delegations per round.
	MaxWorkers int `yaml:"max_workers"`
	// MaxIterations is the supervisor decision-turn budget.
	MaxIterations int `yaml:"max_iterations"`
	// ToolBudget is the per-worker tool-call ceiling.
	ToolBudget int `yaml:"tool_budget"`
	// Timeout bounds the whole run.
	Timeout time.Duration `yaml:"timeout"`
}

// UnmarshalYAML decodes a profile, accepting "15m" style timeout strings.
func (p *Profile) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name          string `yaml:"name"`
		MaxWorkers    *int   `yaml:"max_workers"`
		MaxIterations *int   `yaml:"max_iterations"`
		ToolBudget    *int   `yaml:"tool_budget"`
		Timeout       string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	// Absent fields keep whatever the profile already holds, so files can
	// override defaults partially.
	if raw.Name != "" {
		p.Name = raw.Name
	}
	if raw.MaxWorkers != nil {
		p.MaxWorkers = *raw.MaxWorkers
	}
	if raw.MaxIterations != nil {
		p.MaxIterations = *raw.MaxIterations
	}
	if raw.ToolBudget != nil {
		p.ToolBudget = *raw.ToolBudget
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", raw.Timeout, err)
		}
		p.Timeout = d
	}
	return nil
}

// Profiles holds all depth profiles keyed by name.
type Profiles struct {
	Quick    Profile `yaml:"quick"`
	Standard Profile `yaml:"standard"`
	Deep     Profile `yaml:"deep"`
}

// Get returns the profile for the given name. Unknown names fall back
// to standard.
func (p *Profiles) Get(name string) Profile {
	switch name {
	case "quick":
		return p.Quick
	case "deep":
		return p.Deep
	default:
		return p.Standard
	}
}

// LoadProfiles loads depth profiles from a YAML file. Missing fields
// inherit from the built-in defaults so a profile file can override
// only what it cares about.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles from %s: %w", path, err)
	}

	profiles := DefaultProfiles()
	if err := yaml.Unmarshal(data, profiles); err != nil {
		return nil, fmt.Errorf("parsing profiles from %s: %w", path, err)
	}

	for name, prof := range map[string]*Profile{
		"quick":    &profiles.Quick,
		"standard": &profiles.Standard,
		"deep":     &profiles.Deep,
	} {
		if err := validateProfile(name, prof); err != nil {
			return nil, err
		}
	}

	return profiles, nil
}

func validateProfile(name string, p *Profile) error {
	if p.Name == "" {
		p.Name = name
	}
	if p.MaxWorkers < 1 {
		return fmt.Errorf("profile %s: max_workers must be at least 1, got %d", name, p.MaxWorkers)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("profile %s: max_iterations must be at least 1, got %d", name, p.MaxIterations)
	}
	if p.ToolBudget < 1 {
		return fmt.Errorf("profile %s: tool_budget must be at least 1, got %d", name, p.ToolBudget)
	}
	return nil
}

// DefaultProfiles returns the built-in depth profiles. This is the
// fallback when no profiles file is present.
func DefaultProfiles() *Profiles {
	return &Profiles{
		Quick: Profile{
			Name:          "quick",
			MaxWorkers:    1,
			MaxIterations: 3,
			ToolBudget:    3,
			Timeout:       5 * time.Minute,
		},
		Standard: Profile{
			Name:          "standard",
			MaxWorkers:    3,
			MaxIterations: 6,
			ToolBudget:    5,
			Timeout:       15 * time.Minute,
		},
		Deep: Profile{
			Name:          "deep",
			MaxWorkers:    5,
			MaxIterations: 10,
			ToolBudget:    8,
			Timeout:       30 * time.Minute,
		},
	}
}
