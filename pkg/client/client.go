// Package client provides a Go API for driving an antsim server: a fluent
// builder for scenario configurations and an HTTP client covering the
// server's run lifecycle endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// ScenarioBuilder provides a fluent API for building scenario
// configurations. Every value starts from the default scenario, so only the
// knobs under test need to be set.
type ScenarioBuilder struct {
	cfg colony.Config
}

// NewScenario creates a scenario builder seeded with the default scenario.
func NewScenario() *ScenarioBuilder {
	return &ScenarioBuilder{cfg: colony.DefaultConfig()}
}

// Grid sets the grid dimensions.
func (sb *ScenarioBuilder) Grid(width, height int) *ScenarioBuilder {
	sb.cfg.GridWidth = width
	sb.cfg.GridHeight = height
	return sb
}

// Nest sets the nest position.
func (sb *ScenarioBuilder) Nest(x, y int) *ScenarioBuilder {
	sb.cfg.Nest = colony.Position{X: x, Y: y}
	return sb
}

// Ants sets the colony size.
func (sb *ScenarioBuilder) Ants(n int) *ScenarioBuilder {
	sb.cfg.NumAnts = n
	return sb
}

// Food sets the number of food sources and the units each one starts with.
func (sb *ScenarioBuilder) Food(sources, capacity int) *ScenarioBuilder {
	sb.cfg.NumFoodSources = sources
	sb.cfg.FoodCapacity = capacity
	return sb
}

// FoodAt pins a food source to an explicit position instead of a random
// one. Can be called multiple times; explicit positions take precedence
// over the random source count.
func (sb *ScenarioBuilder) FoodAt(x, y int) *ScenarioBuilder {
	sb.cfg.FoodPositions = append(sb.cfg.FoodPositions, colony.Position{X: x, Y: y})
	return sb
}

// Walls sets the number of random wall segments and their length range.
func (sb *ScenarioBuilder) Walls(count, minLen, maxLen int) *ScenarioBuilder {
	sb.cfg.NumWalls = count
	sb.cfg.WallMinLen = minLen
	sb.cfg.WallMaxLen = maxLen
	return sb
}

// Alpha sets the pheromone influence exponent.
func (sb *ScenarioBuilder) Alpha(v float64) *ScenarioBuilder {
	sb.cfg.Alpha = v
	return sb
}

// Beta sets the heuristic influence exponent.
func (sb *ScenarioBuilder) Beta(v float64) *ScenarioBuilder {
	sb.cfg.Beta = v
	return sb
}

// Rho sets the evaporation rate.
func (sb *ScenarioBuilder) Rho(v float64) *ScenarioBuilder {
	sb.cfg.Rho = v
	return sb
}

// Epsilon sets the exploration probability.
func (sb *ScenarioBuilder) Epsilon(v float64) *ScenarioBuilder {
	sb.cfg.Epsilon = v
	return sb
}

// Deposit sets the pheromone deposit constant Q.
func (sb *ScenarioBuilder) Deposit(q float64) *ScenarioBuilder {
	sb.cfg.Q = q
	return sb
}

// Seed fixes the random seed so the run is reproducible. Zero picks a
// time-based seed at run creation.
func (sb *ScenarioBuilder) Seed(seed int64) *ScenarioBuilder {
	sb.cfg.Seed = seed
	return sb
}

// Build validates the scenario and returns the configuration.
func (sb *ScenarioBuilder) Build() (colony.Config, error) {
	if err := sb.cfg.Validate(); err != nil {
		return colony.Config{}, err
	}
	return sb.cfg, nil
}

// RunInfo is the server's response to a run creation request.
type RunInfo struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
}

// Client talks to an antsim server over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient creates a client using a caller-supplied http.Client,
// for custom timeouts or transports.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

type createRunRequest struct {
	ID     string         `json:"id,omitempty"`
	Config *colony.Config `json:"config,omitempty"`
}

// CreateRun creates a run from cfg. An empty id lets the server generate
// one; the assigned ID and seed are returned.
func (c *Client) CreateRun(ctx context.Context, id string, cfg colony.Config) (RunInfo, error) {
	body, err := json.Marshal(createRunRequest{ID: id, Config: &cfg})
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to marshal config: %w", err)
	}

	var info RunInfo
	if err := c.doJSON(ctx, http.MethodPost, "/runs", body, &info); err != nil {
		return RunInfo{}, err
	}
	return info, nil
}

// ListRuns returns the IDs of every run on the server.
func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	var resp struct {
		Runs []string `json:"runs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/runs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

// State fetches the full run state: grid, pheromone field, ants, remaining
// food and metrics.
func (c *Client) State(ctx context.Context, runID string) (colony.Snapshot, error) {
	var snap colony.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, c.runPath(runID, "state"), nil, &snap); err != nil {
		return colony.Snapshot{}, err
	}
	return snap, nil
}

// Metrics fetches just the run's aggregate counters.
func (c *Client) Metrics(ctx context.Context, runID string) (colony.Metrics, error) {
	var m colony.Metrics
	if err := c.doJSON(ctx, http.MethodGet, c.runPath(runID, "metrics"), nil, &m); err != nil {
		return colony.Metrics{}, err
	}
	return m, nil
}

// Tick advances the run by n steps and returns the metrics afterwards.
func (c *Client) Tick(ctx context.Context, runID string, n int) (colony.Metrics, error) {
	path := c.runPath(runID, "tick")
	if n > 1 {
		path += "?n=" + strconv.Itoa(n)
	}
	var m colony.Metrics
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &m); err != nil {
		return colony.Metrics{}, err
	}
	return m, nil
}

// Start puts the run on the server's own ticker with the given interval.
func (c *Client) Start(ctx context.Context, runID string, interval time.Duration) error {
	path := c.runPath(runID, "start") + "?interval=" + strconv.Itoa(int(interval.Milliseconds()))
	return c.do(ctx, http.MethodPost, path, nil)
}

// Stop halts the run's ticker.
func (c *Client) Stop(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodPost, c.runPath(runID, "stop"), nil)
}

// SaveSnapshot asks the server to write the run state to disk and returns
// the path it was written to.
func (c *Client) SaveSnapshot(ctx context.Context, runID string) (string, error) {
	var resp map[string]string
	if err := c.doJSON(ctx, http.MethodPost, c.runPath(runID, "snapshot"), nil, &resp); err != nil {
		return "", err
	}
	return resp["path"], nil
}

// DeleteRun stops and removes the run.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodDelete, "/runs/"+url.PathEscape(runID), nil)
}

// RegisterWebhook registers a webhook notifier so run events are POSTed to
// webhookURL as they happen.
func (c *Client) RegisterWebhook(ctx context.Context, id, webhookURL string) error {
	body, err := json.Marshal(map[string]any{
		"type":   "webhook",
		"id":     id,
		"config": map[string]any{"url": webhookURL},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notifier config: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/notifiers", body)
}

// UnregisterNotifier removes a previously registered notifier.
func (c *Client) UnregisterNotifier(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifiers/"+url.PathEscape(id), nil)
}

func (c *Client) runPath(runID, op string) string {
	return "/runs/" + url.PathEscape(runID) + "/" + op
}

// do issues a request and checks for a 2xx response, discarding the body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// doJSON issues a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
