// Package upstream issues HTTP requests to the brokerage API: OAuth2 code
// exchange, holdings, and quotes. Responses are returned unmodified; every
// call hits the network, with no retries and no caching.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AuthError reports a failed token exchange: a non-2xx response or a body
// without an access token. Detail is for server-side logging only.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream auth failed (status %d): %s", e.Status, e.Detail)
}

// FetchError reports a failed holdings or quote fetch.
type FetchError struct {
	Status int
	Detail string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream fetch failed (status %d): %s", e.Status, e.Detail)
}

// Client talks to the brokerage API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// NewClient creates a Client for the given API endpoint and OAuth
// credentials. Credentials are not validated here; a missing secret simply
// makes ExchangeCode fail at call time.
func NewClient(baseURL, clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// LoginURL returns the upstream authorization dialog URL that starts the
// OAuth2 authorization-code flow.
func (c *Client) LoginURL() string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	return c.baseURL + "/login/authorization/dialog?" + q.Encode()
}

// ExchangeCode exchanges an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/login/authorization/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Status: resp.StatusCode, Detail: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode, Detail: excerpt(body)}
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Detail: "malformed token response"}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Detail: "no access_token in response"}
	}
	return tok.AccessToken, nil
}

// FetchHoldings retrieves the long-term holdings payload for the given
// access token. The raw JSON body is returned unmodified.
func (c *Client) FetchHoldings(ctx context.Context, token string) ([]byte, error) {
	return c.get(ctx, token, c.baseURL+"/portfolio/long-term-holdings")
}

// FetchQuote retrieves the live market quote payload for one symbol.
func (c *Client) FetchQuote(ctx context.Context, token, symbol string) ([]byte, error) {
	return c.get(ctx, token, c.baseURL+"/market-quote/"+url.PathEscape(symbol))
}

func (c *Client) get(ctx context.Context, token, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Status: resp.StatusCode, Detail: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Status: resp.StatusCode, Detail: excerpt(body)}
	}
	return body, nil
}

// excerpt trims an upstream error body for logging.
func excerpt(b []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
