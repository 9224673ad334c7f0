package domain

// TripType is the direction of travel relative to the hub.
type TripType string

const (
	// TripPickup collects riders and brings them to the hub.
	TripPickup TripType = "pickup"
	// TripDropoff leaves the hub and drops riders at home.
	TripDropoff TripType = "dropoff"
)

func (t TripType) Valid() bool { return t == TripPickup || t == TripDropoff }

// Represents one rider on a planned vehicle trip.
// DirectMeters is the hub distance the rider would travel alone;
// TripMeters is the distance actually travelled along the planned route.
type RiderStop struct {
	PersonID       string
	UnitID         string
	Sequence       int
	RequiresEscort bool
	DirectMeters   float64
	TripMeters     float64
	DetourPercent  float64
}

// Represents the planned trip for a single vehicle.
// It is immutable planning data decoded from a solver solution.
type VehicleTrip struct {
	VehicleID           string
	Riders              []RiderStop
	TotalDistanceMeters float64
	TotalCost           float64
	HasChaperone        bool
}

type TripSummary struct {
	TotalVehicles      int
	ChaperonedVehicles int
	TotalRiders        int
	TotalCost          float64
	SolutionCost       float64
	HighDetourRiders   []string
}

// TripPlan is the decoded outcome of one planning run.
type TripPlan struct {
	ID       string
	TripType TripType
	Trips    []VehicleTrip
	Summary  TripSummary
	Warnings []string
}
