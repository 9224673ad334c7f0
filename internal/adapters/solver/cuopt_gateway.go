package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"escort-route-service/internal/domain"
	"escort-route-service/internal/platform/httpx"
	"escort-route-service/internal/platform/obs"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultPollInterval = time.Second
	DefaultPollAttempts = 60
)

// CuOptGateway implements SolverGateway against a cuOpt server.
//
// A submission either answers inline or returns a request id, in which case
// the gateway polls the request status until it completes, fails, or the
// attempts run out. Every outcome is a terminal SolveResult.
type CuOptGateway struct {
	client       *httpx.Client
	baseURL      string
	PollInterval time.Duration
	PollAttempts int
}

func NewCuOptGateway(baseURL string) (*CuOptGateway, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("cuOpt base url is empty")
	}

	client := httpx.NewClient(60 * time.Second)
	client.MaxAttempts = 1

	return &CuOptGateway{
		client:       client,
		baseURL:      baseURL,
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
	}, nil
}

func (g *CuOptGateway) Solve(ctx context.Context, req domain.OptimizationRequest) (res domain.SolveResult) {
	start := time.Now()
	reqID := obs.RequestID(ctx)
	defer func() {
		log.Printf("req_id=%s op=cuopt.Solve status=%s dur=%dms cause=%q",
			reqID, res.Status, time.Since(start).Milliseconds(), res.Cause)
	}()

	body, err := json.Marshal(newPayload(req))
	if err != nil {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := g.client.NewRequest(ctx, http.MethodPost, g.baseURL+"/cuopt/request", bytes.NewReader(body))
	if err != nil {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: err.Error()}
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return submitFailure(ctx, err)
	}
	raw, err := readBody(resp)
	if err != nil {
		return domain.SolveResult{Status: domain.SolveUnavailable, Cause: fmt.Sprintf("read reply: %v", err)}
	}

	var reply submitReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: fmt.Sprintf("decode reply: %v", err)}
	}

	if len(reply.Response) > 0 && string(reply.Response) != "null" {
		return decodeSolution(raw)
	}
	if reply.ReqID == "" {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: "reply has neither response nor reqId"}
	}

	log.Printf("req_id=%s op=cuopt.Solve queued solver_req=%s", reqID, reply.ReqID)
	return g.poll(ctx, reply.ReqID)
}

// poll checks the request status once per interval. Transport errors while
// polling are logged and the loop continues.
func (g *CuOptGateway) poll(ctx context.Context, id string) domain.SolveResult {
	limiter := rate.NewLimiter(rate.Every(g.PollInterval), 1)
	// Spend the initial token so the first status check waits one interval.
	limiter.Allow()

	statusURL := g.baseURL + "/cuopt/request/" + url.PathEscape(id)

	for attempt := 1; attempt <= g.PollAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return domain.SolveResult{Status: domain.SolveTimedOut, Cause: fmt.Sprintf("polling canceled: %v", err)}
		}

		status, err := g.fetch(ctx, statusURL)
		if err != nil {
			log.Printf("op=cuopt.poll solver_req=%s attempt=%d err=%v", id, attempt, err)
			continue
		}

		switch parseStatus(status) {
		case "completed":
			sol, err := g.fetch(ctx, g.baseURL+"/cuopt/solution/"+url.PathEscape(id))
			if err != nil {
				return submitFailure(ctx, fmt.Errorf("fetch solution: %w", err))
			}
			return decodeSolution(sol)
		case "failed":
			return domain.SolveResult{Status: domain.SolveFailed, Cause: "solver reported failure"}
		}
	}

	return domain.SolveResult{
		Status: domain.SolveTimedOut,
		Cause:  fmt.Sprintf("no result after %d polls", g.PollAttempts),
	}
}

// Healthy reports whether the solver's health endpoint answers 200.
func (g *CuOptGateway) Healthy(ctx context.Context) bool {
	req, err := g.client.NewRequest(ctx, http.MethodGet, g.baseURL+"/cuopt/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (g *CuOptGateway) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := g.client.NewRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	return readBody(resp)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitFailure classifies an error talking to the solver. A 4xx answer
// means the solver rejected the problem; anything else means it could not
// be reached.
func submitFailure(ctx context.Context, err error) domain.SolveResult {
	if ctx.Err() != nil {
		return domain.SolveResult{Status: domain.SolveTimedOut, Cause: ctx.Err().Error()}
	}

	var se *httpx.StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return domain.SolveResult{Status: domain.SolveFailed, Cause: err.Error()}
	}
	return domain.SolveResult{Status: domain.SolveUnavailable, Cause: err.Error()}
}

// parseStatus accepts a JSON string, a bare word, or an object with a
// status field.
func parseStatus(body []byte) string {
	trimmed := bytes.TrimSpace(body)

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.ToLower(strings.TrimSpace(s))
	}

	var obj struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		return strings.ToLower(strings.TrimSpace(obj.Status))
	}

	return strings.ToLower(strings.Trim(string(trimmed), `"' `))
}
