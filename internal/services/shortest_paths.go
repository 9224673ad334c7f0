package services

import (
	"escort-route-service/internal/domain"
	"math"
)

// ShortestPaths returns a copy of m where every entry is the cheapest cost
// over any chain of intermediate locations (Floyd–Warshall). Routing engines
// occasionally return a direct leg that is longer than a two-leg detour; the
// solver and the detour statistics both assume the triangle inequality holds.
//
// Negative or NaN entries are treated as unreachable.
func ShortestPaths(m domain.Matrix) domain.Matrix {
	out := m.Clone()
	n := out.Size()

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := out[i][j]; math.IsNaN(v) || v < 0 {
				out[i][j] = math.Inf(1)
			}
		}
		out[i][i] = 0
	}

	for k := 0; k < n; k++ {
		rowK := out[k]
		for i := 0; i < n; i++ {
			ik := out[i][k]
			if math.IsInf(ik, 1) {
				continue
			}
			rowI := out[i]
			for j := 0; j < n; j++ {
				if cand := ik + rowK[j]; cand < rowI[j] {
					rowI[j] = cand
				}
			}
		}
	}

	return out
}
