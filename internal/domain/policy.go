package domain

import "fmt"

// EscortPolicy holds the tunables of the escort aggregation pass.
type EscortPolicy struct {
	// ProximityThreshold bounds the distance (metres) from a group's anchor
	// rider to any rider added to the same matched group.
	ProximityThreshold float64 `yaml:"proximity_threshold"`
	// GroupCap is the maximum group size, counting the escort or chaperone.
	GroupCap int `yaml:"group_cap"`
	// Bypass disables escort handling; every person becomes a singleton.
	Bypass bool `yaml:"bypass"`
}

func DefaultEscortPolicy() EscortPolicy {
	return EscortPolicy{
		ProximityThreshold: 3000,
		GroupCap:           4,
	}
}

func (p EscortPolicy) Validate() error {
	if p.GroupCap < 2 {
		return &InputError{Field: "group_cap", Reason: fmt.Sprintf("must be at least 2, got %d", p.GroupCap)}
	}
	if p.ProximityThreshold < 0 {
		return &InputError{Field: "proximity_threshold", Reason: "must not be negative"}
	}
	return nil
}
