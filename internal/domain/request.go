package domain

// FullDaySeconds is the unconstrained window used for the hub and vehicles.
const FullDaySeconds = 86400

type TimeWindow struct {
	Earliest int
	Latest   int
}

// FleetParams describes the vehicles available for one plan.
type FleetParams struct {
	VehicleCount     int
	VehicleCapacity  int
	MaxDetourSeconds float64
	// TimeLimitSeconds is the solver time budget; 0 derives it from the problem size.
	TimeLimitSeconds int
	// ReturnToHub keeps vehicles returning to the hub after their last stop.
	ReturnToHub bool
	// IsolateGroups pins every group unit to its own vehicle.
	IsolateGroups bool
}

// VehicleMatch restricts one task to a set of vehicles.
type VehicleMatch struct {
	Task     int
	Vehicles []int
}

type Fleet struct {
	VehicleIDs   []string
	VehicleTypes []int
	// Locations holds the [start, end] location index per vehicle.
	Locations    [][2]int
	Capacities   []int
	Availability []TimeWindow
	DropReturn   []bool
}

type Tasks struct {
	Locations    []int
	Demand       []int
	TimeWindows  []TimeWindow
	ServiceTimes []int
	VehicleMatch []VehicleMatch
}

// OptimizationRequest is the solver-ready problem built from an aggregation.
type OptimizationRequest struct {
	Distance         Matrix
	Duration         Matrix
	Fleet            Fleet
	Tasks            Tasks
	TimeLimitSeconds int
}
