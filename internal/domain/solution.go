package domain

// SolveStatus is the terminal state of one solver submission.
type SolveStatus string

const (
	SolveSolved SolveStatus = "solved"
	// SolveFailed means the solver reported failure or infeasibility.
	SolveFailed SolveStatus = "failed"
	// SolveTimedOut means polling exhausted its attempts or was canceled.
	SolveTimedOut SolveStatus = "timed_out"
	// SolveUnavailable means the solver could not be reached.
	SolveUnavailable SolveStatus = "unavailable"
)

// VehicleRoute lists the unit indices one vehicle visits, hub included.
type VehicleRoute struct {
	VehicleID string
	Stops     []int
}

type Solution struct {
	Cost         float64
	VehicleCount int
	Routes       []VehicleRoute
}

// SolveResult is always returned by a solver gateway; network failures are
// captured in Status and Cause instead of being raised.
type SolveResult struct {
	Status   SolveStatus
	Solution *Solution
	Cause    string
}

func (r SolveResult) OK() bool { return r.Status == SolveSolved && r.Solution != nil }
