package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the per-user tuning that does not fit in env vars.
type Profile struct {
	Keywords   []string            `yaml:"keywords"`
	UserAgents []string            `yaml:"user_agents"`
	Selectors  map[string][]string `yaml:"selectors"`
	Search     SearchProfile       `yaml:"search"`
}

type SearchProfile struct {
	Keywords   string   `yaml:"keywords"`
	Location   string   `yaml:"location"`
	Remote     bool     `yaml:"remote"`
	Hybrid     bool     `yaml:"hybrid"`
	EasyApply  bool     `yaml:"easy_apply"`
	PastWeek   bool     `yaml:"past_week"`
	Experience []string `yaml:"experience"`
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	return &p, nil
}
