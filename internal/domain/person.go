package domain

import (
	"fmt"
	"strings"
)

// EscortClass is the accompaniment attribute carried by every roster member.
type EscortClass int

const (
	// EscortEligible members may travel alone and can escort others.
	EscortEligible EscortClass = iota
	// EscortRequired members may not travel without a qualifying companion.
	EscortRequired
)

func (c EscortClass) String() string {
	if c == EscortRequired {
		return "escort_required"
	}
	return "escort_eligible"
}

// ParseGender maps the roster's gender attribute onto an EscortClass.
// Female riders require an escort; male riders are eligible escorts.
func ParseGender(gender string) (EscortClass, error) {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "f", "female":
		return EscortRequired, nil
	case "m", "male":
		return EscortEligible, nil
	case "":
		return 0, &InputError{Field: "gender", Reason: "is required"}
	default:
		return 0, &InputError{Field: "gender", Reason: fmt.Sprintf("unknown value %q", gender)}
	}
}

// Represents a single roster member to be picked up or dropped off.
// Index is the member's row/column in the raw cost matrices (the hub is 0).
// A Person is read-only once loaded.
type Person struct {
	ID             string
	Index          int
	Escort         EscortClass
	ServiceSeconds float64
	Location       Coordinates
}

func (p Person) RequiresEscort() bool { return p.Escort == EscortRequired }
