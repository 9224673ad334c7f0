package solver

import (
	"encoding/json"
	"escort-route-service/internal/domain"
	"fmt"
	"math"
	"slices"
)

// unreachableCost stands in for +Inf and NaN matrix entries, which JSON
// cannot encode. It is large enough that the solver never prefers such a leg.
const unreachableCost = 1e12

type matrixData struct {
	Data map[string]domain.Matrix `json:"data"`
}

type fleetData struct {
	VehicleLocations   [][2]int `json:"vehicle_locations"`
	VehicleIDs         []string `json:"vehicle_ids"`
	VehicleTypes       []int    `json:"vehicle_types"`
	Capacities         [][]int  `json:"capacities"`
	VehicleTimeWindows [][2]int `json:"vehicle_time_windows"`
	DropReturnTrips    []bool   `json:"drop_return_trips"`
}

type orderVehicleMatch struct {
	OrderID    int   `json:"order_id"`
	VehicleIDs []int `json:"vehicle_ids"`
}

type taskData struct {
	TaskLocations     []int               `json:"task_locations"`
	Demand            [][]int             `json:"demand"`
	TaskTimeWindows   [][2]int            `json:"task_time_windows"`
	ServiceTimes      []int               `json:"service_times"`
	OrderVehicleMatch []orderVehicleMatch `json:"order_vehicle_match,omitempty"`
}

type solverConfig struct {
	TimeLimit  int            `json:"time_limit"`
	Objectives map[string]int `json:"objectives"`
}

// payload is the cuOpt request body. Vehicle type 0 keys both matrices.
type payload struct {
	CostMatrixData       matrixData   `json:"cost_matrix_data"`
	TravelTimeMatrixData matrixData   `json:"travel_time_matrix_data"`
	FleetData            fleetData    `json:"fleet_data"`
	TaskData             taskData     `json:"task_data"`
	SolverConfig         solverConfig `json:"solver_config"`
}

func windows(ws []domain.TimeWindow) [][2]int {
	out := make([][2]int, len(ws))
	for i, w := range ws {
		out[i] = [2]int{w.Earliest, w.Latest}
	}
	return out
}

// finite returns m with non-finite entries replaced by unreachableCost.
// m itself is returned when it needs no change.
func finite(m domain.Matrix) domain.Matrix {
	var out domain.Matrix
	for i, row := range m {
		for j, v := range row {
			if !math.IsInf(v, 0) && !math.IsNaN(v) {
				continue
			}
			if out == nil {
				out = m.Clone()
			}
			out[i][j] = unreachableCost
		}
	}
	if out == nil {
		return m
	}
	return out
}

func newPayload(req domain.OptimizationRequest) payload {
	matches := make([]orderVehicleMatch, 0, len(req.Tasks.VehicleMatch))
	for _, m := range req.Tasks.VehicleMatch {
		matches = append(matches, orderVehicleMatch{OrderID: m.Task, VehicleIDs: m.Vehicles})
	}

	return payload{
		CostMatrixData:       matrixData{Data: map[string]domain.Matrix{"0": finite(req.Distance)}},
		TravelTimeMatrixData: matrixData{Data: map[string]domain.Matrix{"0": finite(req.Duration)}},
		FleetData: fleetData{
			VehicleLocations:   req.Fleet.Locations,
			VehicleIDs:         req.Fleet.VehicleIDs,
			VehicleTypes:       req.Fleet.VehicleTypes,
			Capacities:         [][]int{req.Fleet.Capacities},
			VehicleTimeWindows: windows(req.Fleet.Availability),
			DropReturnTrips:    req.Fleet.DropReturn,
		},
		TaskData: taskData{
			TaskLocations:     req.Tasks.Locations,
			Demand:            [][]int{req.Tasks.Demand},
			TaskTimeWindows:   windows(req.Tasks.TimeWindows),
			ServiceTimes:      req.Tasks.ServiceTimes,
			OrderVehicleMatch: matches,
		},
		SolverConfig: solverConfig{
			TimeLimit:  req.TimeLimitSeconds,
			Objectives: map[string]int{"cost": 1},
		},
	}
}

type submitReply struct {
	ReqID    string          `json:"reqId"`
	Response json.RawMessage `json:"response"`
}

type solutionEnvelope struct {
	Response *struct {
		SolverResponse           *solverResponse `json:"solver_response"`
		SolverInfeasibleResponse json.RawMessage `json:"solver_infeasible_response"`
	} `json:"response"`
}

type solverResponse struct {
	Status       int     `json:"status"`
	SolutionCost float64 `json:"solution_cost"`
	NumVehicles  int     `json:"num_vehicles"`
	VehicleData  map[string]struct {
		Route []int `json:"route"`
	} `json:"vehicle_data"`
}

// decodeSolution maps a solution body onto a terminal result. Routes are
// returned in vehicle id order.
func decodeSolution(body []byte) domain.SolveResult {
	var env solutionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("decode solution: %v", err)}
	}
	if env.Response == nil {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: "solution has no response"}
	}

	sr := env.Response.SolverResponse
	if sr == nil {
		if len(env.Response.SolverInfeasibleResponse) > 0 {
			return domain.SolveResult{Status: domain.SolveFailed, Cause: "solver reported the problem infeasible"}
		}
		return domain.SolveResult{Status: domain.SolveFailed, Cause: "solution has no solver response"}
	}
	if sr.Status != 0 {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("solver status %d", sr.Status)}
	}

	ids := make([]string, 0, len(sr.VehicleData))
	for id := range sr.VehicleData {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	sol := &domain.Solution{
		Cost:         sr.SolutionCost,
		VehicleCount: sr.NumVehicles,
		Routes:       make([]domain.VehicleRoute, 0, len(ids)),
	}
	for _, id := range ids {
		sol.Routes = append(sol.Routes, domain.VehicleRoute{
			VehicleID: id,
			Stops:     slices.Clone(sr.VehicleData[id].Route),
		})
	}

	return domain.SolveResult{Status: domain.SolveSolved, Solution: sol}
}
