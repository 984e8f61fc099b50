package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClientConfig controls the HTTP notification client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// APIClient reads notifications from a front-desk API server. It satisfies
// FullLister, BucketLister and Marker so a remote board behaves like a local one.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a client for the /api surface at BaseURL.
func NewAPIClient(cfg ClientConfig) (*APIClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("reminders: client base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &APIClient{baseURL: baseURL, token: cfg.Token, httpClient: httpClient}, nil
}

// List fetches every notification.
func (c *APIClient) List(ctx context.Context) ([]Notification, error) {
	return c.getList(ctx, "/api/notifications")
}

// ListPending fetches the server's pending view. asOf is the server's clock.
func (c *APIClient) ListPending(ctx context.Context, _ time.Time) ([]Notification, error) {
	return c.getList(ctx, "/api/notifications/pending")
}

// ListUpcoming fetches the server's upcoming view.
func (c *APIClient) ListUpcoming(ctx context.Context, _ time.Time, _ time.Duration) ([]Notification, error) {
	return c.getList(ctx, "/api/notifications/upcoming")
}

// MarkSent posts the mark-sent action.
func (c *APIClient) MarkSent(ctx context.Context, id uuid.UUID) (MarkResult, error) {
	data, status, err := c.invoke(ctx, http.MethodPost, "/api/notifications/"+id.String()+"/mark-sent")
	if err != nil {
		return MarkResult{ID: id}, err
	}
	switch {
	case status == http.StatusNotFound:
		return MarkResult{ID: id}, ErrNotFound
	case status < 200 || status > 299:
		return MarkResult{ID: id}, fmt.Errorf("reminders: mark sent: http status %d: %s", status, strings.TrimSpace(string(data)))
	}
	var res MarkResult
	if err := json.Unmarshal(data, &res); err != nil {
		return MarkResult{ID: id}, fmt.Errorf("reminders: decode mark sent: %w", err)
	}
	return res, nil
}

func (c *APIClient) getList(ctx context.Context, path string) ([]Notification, error) {
	data, status, err := c.invoke(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("reminders: GET %s: http status %d", path, status)
	}
	var list []Notification
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("reminders: decode %s: %w", path, err)
	}
	return list, nil
}

func (c *APIClient) invoke(ctx context.Context, method, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("reminders: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("reminders: http error: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reminders: read response: %w", err)
	}
	return data, resp.StatusCode, nil
}
