package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/civictrack/backend/internal/config"
)

// httpRegistryClient talks to the municipal master-data registry over HTTP.
type httpRegistryClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRegistryClient(cfg *config.MasterDataConfig) RegistryClient {
	return &httpRegistryClient{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *httpRegistryClient) FetchWards(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "/api/wards")
}

func (c *httpRegistryClient) FetchDepartments(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, "/api/departments")
}

func (c *httpRegistryClient) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry response: %w", err)
	}
	return json.RawMessage(body), nil
}
