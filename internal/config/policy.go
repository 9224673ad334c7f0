package config

import (
	"escort-route-service/internal/domain"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPolicy reads escort policy overrides from a YAML file. Keys missing
// from the file keep their defaults; an empty path returns the defaults.
//
//	proximity_threshold: 2500
//	group_cap: 3
//	bypass: false
func LoadPolicy(path string) (domain.EscortPolicy, error) {
	policy := domain.DefaultEscortPolicy()
	if path == "" {
		return policy, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.EscortPolicy{}, fmt.Errorf("load policy: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &policy); err != nil {
		return domain.EscortPolicy{}, fmt.Errorf("load policy: parse %q: %w", path, err)
	}

	if err := policy.Validate(); err != nil {
		return domain.EscortPolicy{}, fmt.Errorf("load policy: %w", err)
	}

	return policy, nil
}
