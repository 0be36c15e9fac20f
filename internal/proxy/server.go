// Package proxy exposes the HTTP surface of the backend: the OAuth
// callback that exchanges an authorization code for an access token, and
// the bearer-authenticated holdings and quote endpoints that forward to
// the brokerage API.
package proxy

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"upfolio/internal/holdings"
	"upfolio/internal/recorder"
)

// Upstream is the brokerage adapter the proxy forwards to.
type Upstream interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchHoldings(ctx context.Context, token string) ([]byte, error)
	FetchQuote(ctx context.Context, token, symbol string) ([]byte, error)
}

// Server holds no per-request state; every request is independent.
type Server struct {
	upstream       Upstream
	frontendOrigin string
	rec            recorder.Recorder
	log            *slog.Logger
}

// NewServer creates the proxy server. rec may be a NoopRecorder.
func NewServer(up Upstream, frontendOrigin string, rec recorder.Recorder, log *slog.Logger) *Server {
	return &Server{
		upstream:       up,
		frontendOrigin: strings.TrimRight(frontendOrigin, "/"),
		rec:            rec,
		log:            log,
	}
}

// RegisterRoutes registers all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /auth/callback", s.handleAuthCallback)
	mux.HandleFunc("GET /api/holdings", s.requireToken(s.handleHoldings))
	mux.HandleFunc("GET /api/quote/{symbol}", s.requireToken(s.handleQuote))
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeUpstreamJSON forwards an upstream payload verbatim.
func writeUpstreamJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false when the header is missing or malformed, including
// a bare "Bearer" with no token.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

type tokenHandler func(w http.ResponseWriter, r *http.Request, token string)

// requireToken rejects requests without a valid bearer header before any
// upstream call is made. A missing credential is a client error, not an
// application error, so it is not logged.
func (s *Server) requireToken(next tokenHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing access token")
			return
		}
		next(w, r, token)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("upfolio proxy is running"))
}

// handleAuthCallback exchanges the authorization code and redirects the
// caller to the frontend with the token attached. The token rides in the
// redirect query string, so it briefly shows up in browser history; a
// documented risk of the flow, accepted here.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing code")
		return
	}

	token, err := s.upstream.ExchangeCode(r.Context(), code)
	if err != nil {
		s.log.Error("token exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "token exchange failed")
		return
	}

	dest := s.frontendOrigin + "?token=" + url.QueryEscape(token)
	http.Redirect(w, r, dest, http.StatusFound)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request, token string) {
	body, err := s.upstream.FetchHoldings(r.Context(), token)
	if err != nil {
		s.log.Error("fetching holdings", "error", err)
		writeError(w, http.StatusInternalServerError, "error fetching holdings")
		return
	}

	s.recordSnapshot(body)
	writeUpstreamJSON(w, body)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, token string) {
	symbol := r.PathValue("symbol")
	body, err := s.upstream.FetchQuote(r.Context(), token, symbol)
	if err != nil {
		s.log.Error("fetching quote", "symbol", symbol, "error", err)
		writeError(w, http.StatusInternalServerError, "error fetching quote")
		return
	}
	writeUpstreamJSON(w, body)
}

// recordSnapshot hands a successful holdings payload to the recorder.
// Failures are logged, never surfaced to the caller.
func (s *Server) recordSnapshot(body []byte) {
	snap, err := holdings.ParseResponse(body)
	if err != nil {
		s.log.Debug("skipping snapshot record, unparsable payload", "error", err)
		return
	}
	if err := s.rec.RecordSnapshot(snap); err != nil {
		s.log.Warn("recording snapshot", "error", err)
	}
}
