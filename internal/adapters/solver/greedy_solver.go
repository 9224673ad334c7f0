package solver

import (
	"context"
	"escort-route-service/internal/domain"
	"fmt"
	"log"
	"math"
)

// GreedySolver implements SolverGateway in process with a nearest-neighbor
// construction: each vehicle in turn leaves its start location and keeps
// driving to the closest (by duration) task it can still serve.
//
// It honours capacities, task time windows, vehicle matches and drop-return.
// It does not attempt global optimization; results are deterministic.
type GreedySolver struct{}

func (GreedySolver) Healthy(context.Context) bool { return true }

func (GreedySolver) Solve(ctx context.Context, req domain.OptimizationRequest) domain.SolveResult {
	if err := ctx.Err(); err != nil {
		return domain.SolveResult{Status: domain.SolveTimedOut, Cause: err.Error()}
	}

	n := req.Distance.Size()
	for _, loc := range req.Tasks.Locations {
		if loc < 0 || loc >= n {
			return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("task location %d outside %dx%d matrix", loc, n, n)}
		}
	}

	allowed := allowedVehicles(req.Tasks.VehicleMatch)
	served := make([]bool, len(req.Tasks.Locations))
	remaining := 0
	for t := range req.Tasks.Locations {
		if req.Tasks.Demand[t] == 0 && isDepot(req.Fleet, req.Tasks.Locations[t]) {
			served[t] = true
			continue
		}
		remaining++
	}

	sol := &domain.Solution{}
	for v, id := range req.Fleet.VehicleIDs {
		route, cost, visits := buildRoute(req, v, allowed, served)
		sol.Routes = append(sol.Routes, domain.VehicleRoute{VehicleID: id, Stops: route})
		sol.Cost += cost
		if visits > 0 {
			sol.VehicleCount++
		}
		remaining -= visits
	}

	if remaining > 0 {
		log.Printf("op=greedy.Solve unserved=%d vehicles=%d", remaining, len(req.Fleet.VehicleIDs))
		return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("infeasible: %d tasks left unserved", remaining)}
	}

	return domain.SolveResult{Status: domain.SolveSolved, Solution: sol}
}

// buildRoute drives vehicle v until no unserved task fits, marking the tasks
// it visits as served.
func buildRoute(req domain.OptimizationRequest, v int, allowed map[int]map[int]bool, served []bool) ([]int, float64, int) {
	start, end := req.Fleet.Locations[v][0], req.Fleet.Locations[v][1]
	capacity := req.Fleet.Capacities[v]

	route := []int{start}
	current := start
	clock, load, cost := 0.0, 0, 0.0

	for {
		best := -1
		bestDuration := math.Inf(1)

		// Select next task by minimum travel duration (greedy step).
		for t, loc := range req.Tasks.Locations {
			if served[t] || load+req.Tasks.Demand[t] > capacity {
				continue
			}
			if vs, ok := allowed[t]; ok && !vs[v] {
				continue
			}

			arrive := clock + req.Duration[current][loc]
			if w := req.Tasks.TimeWindows[t]; arrive > float64(w.Latest) {
				continue
			}
			// Strict comparison keeps the lowest task index on ties.
			if d := req.Duration[current][loc]; d < bestDuration {
				best, bestDuration = t, d
			}
		}
		if best < 0 {
			break
		}

		loc := req.Tasks.Locations[best]
		w := req.Tasks.TimeWindows[best]
		clock = math.Max(clock+req.Duration[current][loc], float64(w.Earliest)) + float64(req.Tasks.ServiceTimes[best])
		cost += req.Distance[current][loc]
		load += req.Tasks.Demand[best]
		served[best] = true

		route = append(route, loc)
		current = loc
	}

	visits := len(route) - 1
	if visits == 0 {
		return []int{start, end}, 0, 0
	}
	if !req.Fleet.DropReturn[v] {
		cost += req.Distance[current][end]
		route = append(route, end)
	}
	return route, cost, visits
}

func allowedVehicles(matches []domain.VehicleMatch) map[int]map[int]bool {
	out := make(map[int]map[int]bool, len(matches))
	for _, m := range matches {
		set := make(map[int]bool, len(m.Vehicles))
		for _, v := range m.Vehicles {
			set[v] = true
		}
		out[m.Task] = set
	}
	return out
}

func isDepot(fleet domain.Fleet, loc int) bool {
	for _, l := range fleet.Locations {
		if l[0] == loc || l[1] == loc {
			return true
		}
	}
	return false
}
