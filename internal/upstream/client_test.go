package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExchangeCode(t *testing.T) {
	var gotForm map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login/authorization/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q, want form-urlencoded", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		gotForm = map[string]string{
			"code":       r.PostForm.Get("code"),
			"client_id":  r.PostForm.Get("client_id"),
			"grant_type": r.PostForm.Get("grant_type"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-123", "token_type": "Bearer"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "http://localhost:5000/auth/callback")
	tok, err := c.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	if tok != "tok-123" {
		t.Errorf("token = %q, want %q", tok, "tok-123")
	}
	if gotForm["code"] != "abc" || gotForm["client_id"] != "key" || gotForm["grant_type"] != "authorization_code" {
		t.Errorf("form = %v, want code/client_id/grant_type set", gotForm)
	}
}

func TestExchangeCodeUpstreamRejects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "uri")
	_, err := c.ExchangeCode(context.Background(), "bad")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if authErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", authErr.Status)
	}
}

func TestExchangeCodeMissingAccessToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type": "Bearer"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "uri")
	_, err := c.ExchangeCode(context.Background(), "abc")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError for missing access_token", err)
	}
}

func TestFetchHoldings(t *testing.T) {
	payload := `{"status": "success", "data": []}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/long-term-holdings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		w.Write([]byte(payload))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "uri")
	body, err := c.FetchHoldings(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("FetchHoldings returned error: %v", err)
	}
	if string(body) != payload {
		t.Errorf("body = %q, want verbatim upstream payload", body)
	}
}

func TestFetchQuoteEscapesSymbol(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/market-quote/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "uri")
	if _, err := c.FetchQuote(context.Background(), "tok", "NSE_EQ|INE002A01018"); err != nil {
		t.Fatalf("FetchQuote returned error: %v", err)
	}
}

func TestFetchHoldingsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "key", "secret", "uri")
	_, err := c.FetchHoldings(context.Background(), "stale")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fetchErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", fetchErr.Status)
	}
}

func TestFetchHoldingsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := NewClient(ts.URL, "key", "secret", "uri")
	_, err := c.FetchHoldings(context.Background(), "tok")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want *FetchError on network failure", err)
	}
}
