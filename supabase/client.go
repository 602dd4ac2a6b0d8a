package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/questforge/gateway/app_errors"
)

// Client is a minimal JSON client for one Supabase endpoint family,
// authorized with a single API key.
type Client struct {
	baseUrl string
	apiKey  string
	http    *http.Client
}

// AnonClient talks to the auth API with the low-privilege anon key.
type AnonClient struct {
	*Client
}

// ServiceClient talks to the table API with the service-role key.
type ServiceClient struct {
	*Client
}

func NewClient(baseUrl, apiKey string, timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// StatusError is a non-2xx response from the service. Callers translate
// it into a domain error kind; 5xx never reaches them (mapped to
// DEPENDENCY_UNAVAILABLE here).
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("supabase responded with status %d: %s", e.Status, string(e.Body))
}

// DoJSON executes one JSON request against the service. Extra headers
// are applied after the key headers and may override them. A nil result
// discards the response body.
func (c *Client) DoJSON(ctx context.Context, method, path string, headers map[string]string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return app_errors.DependencyUnavailable(err, "%s %s failed", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return app_errors.DependencyUnavailable(err, "failed to read response for %s %s", method, path)
	}

	if resp.StatusCode >= 500 {
		return app_errors.DependencyUnavailable(
			&StatusError{Status: resp.StatusCode, Body: respBody},
			"%s %s failed", method, path,
		)
	}
	if resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Body: respBody}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response for %s %s: %w", method, path, err)
		}
	}
	return nil
}
