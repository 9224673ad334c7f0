package domain

import "fmt"

// InputError reports a malformed roster or request parameter.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// CapacityError reports a fleet that cannot carry the aggregated demand.
type CapacityError struct {
	Reason        string
	Demand        int
	Capacity      int
	VehicleCount  int
	TotalCapacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity infeasible: %s (demand=%d capacity=%d vehicles=%d)",
		e.Reason, e.Demand, e.Capacity, e.VehicleCount)
}

// SolveError reports a solver submission that ended without a solution.
type SolveError struct {
	Status SolveStatus
	Cause  string
}

func (e *SolveError) Error() string {
	if e.Cause == "" {
		return fmt.Sprintf("solve %s", e.Status)
	}
	return fmt.Sprintf("solve %s: %s", e.Status, e.Cause)
}
