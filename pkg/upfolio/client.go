// Package upfolio provides a Go client for the upfolio proxy API, used by
// the terminal dashboard and any other Go consumer.
package upfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"upfolio/internal/holdings"
)

// APIError is a non-2xx response from the proxy.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proxy returned %d: %s", e.Status, e.Message)
}

// Client talks to an upfolio proxy server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the proxy at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetHoldings fetches and decodes the current holdings snapshot.
func (c *Client) GetHoldings(ctx context.Context, token string) (holdings.Snapshot, error) {
	body, err := c.get(ctx, token, c.baseURL+"/api/holdings")
	if err != nil {
		return nil, err
	}
	snap, err := holdings.ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("decoding holdings: %w", err)
	}
	return snap, nil
}

// GetQuote fetches the raw quote payload for one symbol.
func (c *Client) GetQuote(ctx context.Context, token, symbol string) ([]byte, error) {
	return c.get(ctx, token, c.baseURL+"/api/quote/"+url.PathEscape(symbol))
}

func (c *Client) get(ctx context.Context, token, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &msg) == nil && msg.Error != "" {
			apiErr.Message = msg.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	return body, nil
}
