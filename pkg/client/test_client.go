package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const testPath = "/api/test"

type Scenario string

const (
	ScenarioGet   Scenario = "get"
	ScenarioError Scenario = "error"
	ScenarioPost  Scenario = "post"
	ScenarioAll   Scenario = "all"
)

// TestClient drives the /api/test endpoint and reports every step to a Panel.
type TestClient struct {
	baseUrl    string
	httpClient *http.Client
	panel      *Panel
	logger     *zap.Logger
}

func NewTestClient(baseUrl string, httpClient *http.Client, panel *Panel, logger *zap.Logger) *TestClient {
	return &TestClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: httpClient,
		panel:      panel,
		logger:     logger,
	}
}

func (c *TestClient) Panel() *Panel {
	return c.panel
}

func (c *TestClient) TestApiCall(ctx context.Context) {
	c.panel.AddLog("Making API call to " + testPath)
	data, err := c.call(ctx, http.MethodGet, nil)
	if err != nil {
		c.panel.AddLog(fmt.Sprintf("API call failed: %v", err))
		return
	}
	c.panel.AddLog("API call successful: " + data)
}

func (c *TestClient) TestErrorApiCall(ctx context.Context) {
	c.panel.AddLog("Making API call with error to " + testPath)
	data, err := c.call(ctx, http.MethodPost, map[string]interface{}{"shouldError": true})
	if err != nil {
		c.panel.AddLog(fmt.Sprintf("API call failed: %v", err))
		return
	}
	c.panel.AddLog("API call response: " + data)
}

func (c *TestClient) TestSuccessfulPost(ctx context.Context) {
	c.panel.AddLog("Making successful POST to " + testPath)
	data, err := c.call(ctx, http.MethodPost, map[string]interface{}{
		"message":     "Hello from client",
		"userId":      "12345",
		"shouldError": false,
	})
	if err != nil {
		c.panel.AddLog(fmt.Sprintf("POST failed: %v", err))
		return
	}
	c.panel.AddLog("POST successful: " + data)
}

func (c *TestClient) Run(ctx context.Context, scenario Scenario) error {
	switch scenario {
	case ScenarioGet:
		c.TestApiCall(ctx)
	case ScenarioError:
		c.TestErrorApiCall(ctx)
	case ScenarioPost:
		c.TestSuccessfulPost(ctx)
	case ScenarioAll:
		c.TestApiCall(ctx)
		c.TestSuccessfulPost(ctx)
		c.TestErrorApiCall(ctx)
	default:
		return fmt.Errorf("scenario %q: %w", scenario, ErrUnknownScenario)
	}
	return nil
}

// call returns the response body as compact JSON. Any status is accepted as
// long as the body is JSON.
func (c *TestClient) call(ctx context.Context, method string, body map[string]interface{}) (string, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+testPath, reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Error("Error encountered when closing response body", zap.Error(err))
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return "", fmt.Errorf("response is not JSON: %w", err)
	}
	c.logger.Debug(
		"API call finished",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
	)
	return compact.String(), nil
}

// RunUsers runs scenario once for each of users concurrent clients built by
// newClient.
func RunUsers(
	ctx context.Context,
	users int,
	scenario Scenario,
	newClient func(user int) *TestClient,
) ([]*TestClient, error) {
	if users <= 0 {
		return nil, ErrNoUsers
	}
	clients := make([]*TestClient, users)
	for i := range clients {
		clients[i] = newClient(i + 1)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, c := range clients {
		g.Go(func() error {
			return c.Run(ctx, scenario)
		})
	}
	if err := g.Wait(); err != nil {
		return clients, err
	}
	return clients, nil
}

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrNoUsers         = errors.New("at least one user is required")
)
