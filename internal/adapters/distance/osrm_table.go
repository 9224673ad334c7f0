package distance

import (
	"context"
	"encoding/json"
	"escort-route-service/internal/domain"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchTable retrieves distance and duration rows for the given sources to
// every point using the OSRM table endpoint.
func (o *OSRMProvider) fetchTable(
	ctx context.Context,
	points []domain.Coordinates,
	sources []int,
	m domain.CostMatrices,
) error {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}

	src := make([]string, len(sources))
	for i, s := range sources {
		src[i] = strconv.Itoa(s)
	}

	endpoint := fmt.Sprintf("%s/table/v1/%s/%s", o.baseURL, o.profile, strings.Join(coords, ";"))

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("annotations", "distance,duration")
		q.Set("sources", strings.Join(src, ";"))
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode table response: %w", err)
	}

	if tr.Code != "Ok" {
		return fmt.Errorf("table service returned code=%q message=%q", tr.Code, tr.Message)
	}

	if len(tr.Distances) != len(sources) || len(tr.Durations) != len(sources) {
		return fmt.Errorf(
			"expected %d source rows; got distances=%d durations=%d",
			len(sources), len(tr.Distances), len(tr.Durations),
		)
	}

	n := len(points)
	for k, i := range sources {
		rowDistances := tr.Distances[k]
		rowDurations := tr.Durations[k]
		if len(rowDistances) != n || len(rowDurations) != n {
			return fmt.Errorf(
				"row %d lengths do not match points: distances=%d durations=%d points=%d",
				i, len(rowDistances), len(rowDurations), n,
			)
		}

		for j := 0; j < n; j++ {
			if rowDistances[j] == nil || rowDurations[j] == nil {
				return fmt.Errorf("table returned no route from point %d to %d", i, j)
			}
			m.Distance[i][j] = *rowDistances[j]
			m.Duration[i][j] = *rowDurations[j]
		}
	}

	return nil
}
