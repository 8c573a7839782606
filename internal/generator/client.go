package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adwaidhmp/backend/app"
)

// ErrUnavailable marks transport-level failures: connection errors,
// timeouts, non-200 responses, unparseable bodies. Retryable, since the
// generator may answer correctly next time.
var ErrUnavailable = errors.New("generator unavailable")

// ContractError means the generator answered with 200 but the body violates
// the agreed shape or constraints. Not retryable: the API is responding,
// just incorrectly.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return "generator contract violation: " + e.Reason
}

type Client struct {
	cfg  *app.GeneratorConfig
	http *http.Client
}

func NewClient(cfg *app.GeneratorConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

// GenerateDiet calls the diet endpoint with the nutrition timeout.
func (c *Client) GenerateDiet(ctx context.Context, req DietRequest) (*DietResponse, error) {
	var resp DietResponse
	if err := c.post(ctx, "/api/v1/diet/generate/", c.cfg.DietTimeout, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateWorkout calls the workout endpoint with the longer workout
// timeout.
func (c *Client) GenerateWorkout(ctx context.Context, req WorkoutRequest) (*WorkoutResponse, error) {
	var resp WorkoutResponse
	if err := c.post(ctx, "/api/v1/workout/generate/", c.cfg.WorkoutTimeout, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, timeout time.Duration, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal generator request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build generator request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, httpResp.StatusCode, string(b))
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return nil
}
