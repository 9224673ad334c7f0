package dto

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlanRequest starts a planning run. Omitted fields take server defaults;
// an omitted roster means the stored roster.
type PlanRequest struct {
	TripType         string          `json:"trip_type"`
	Hub              *LatLon         `json:"hub"`
	Roster           []PersonRequest `json:"roster"`
	VehicleCount     int             `json:"vehicle_count"`
	VehicleCapacity  int             `json:"vehicle_capacity"`
	MaxDetourSeconds float64         `json:"max_detour_seconds"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
	ReturnToHub      *bool           `json:"return_to_hub"`
	IsolateGroups    *bool           `json:"isolate_groups"`
	EscortRequired   *bool           `json:"escort_required"`
	GroupCap         int             `json:"group_cap"`
	ProximityMeters  float64         `json:"proximity_meters"`
	MaxRadiusKm      *float64        `json:"max_radius_km"`
	FarePerKm        *float64        `json:"fare_per_km"`
}

type RiderStopResponse struct {
	PersonID       string  `json:"person_id"`
	UnitID         string  `json:"unit_id"`
	Sequence       int     `json:"sequence"`
	RequiresEscort bool    `json:"requires_escort"`
	DirectKm       float64 `json:"direct_km"`
	TripKm         float64 `json:"trip_km"`
	DetourPercent  float64 `json:"detour_percent"`
}

type VehicleTripResponse struct {
	VehicleID       string              `json:"vehicle_id"`
	HasChaperone    bool                `json:"has_chaperone"`
	TotalDistanceKm float64             `json:"total_distance_km"`
	TotalCost       float64             `json:"total_cost"`
	Riders          []RiderStopResponse `json:"riders"`
}

type PlanSummaryResponse struct {
	TotalVehicles      int      `json:"total_vehicles"`
	ChaperonedVehicles int      `json:"chaperoned_vehicles"`
	TotalRiders        int      `json:"total_riders"`
	TotalCost          float64  `json:"total_cost"`
	SolutionCost       float64  `json:"solution_cost"`
	HighDetourRiders   []string `json:"high_detour_riders"`
}

type PlanResponse struct {
	PlanID   string                `json:"plan_id"`
	TripType string                `json:"trip_type"`
	Trips    []VehicleTripResponse `json:"trips"`
	Summary  PlanSummaryResponse   `json:"summary"`
	Warnings []string              `json:"warnings"`
}
