// Package server exposes the export catalog over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"
	"github.com/rs/cors"
	"github.com/sarunasign/btd/pkg/common"
	"github.com/sarunasign/btd/pkg/log"
)

// Server serves the series catalog and per-series exports. It holds no state
// between requests: every export request builds a fresh client for the
// requested date range.
type Server struct {
	listenAddr     string
	apiBaseURL     string
	requestTimeout time.Duration
	corsOrigins    []string
	serverName     string

	client     *http.Client
	httpServer *http.Server
}

// Configured initializes the Server.
// It uses lflag to register command-line flags for configuration.
func Configured() *Server {
	srv := &Server{
		serverName: "btd",
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	apiBaseURL := lflag.String("api-base-url", "", "Override for the transparency dashboard export endpoint")
	requestTimeout := lflag.Duration("request-timeout", 30*time.Second, "Timeout for upstream export requests")
	corsOrigins := lflag.String("cors-origins", "*", "comma-delimited list of allowed CORS origins")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.apiBaseURL = *apiBaseURL
		srv.requestTimeout = *requestTimeout
		for _, o := range strings.Split(*corsOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				srv.corsOrigins = append(srv.corsOrigins, o)
			}
		}
		srv.client = common.HTTPClient(srv.requestTimeout)
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/series", s.handleListSeries)
	mux.HandleFunc("GET /api/series/{name}", s.handleSeries)
	mux.HandleFunc("/healthz", s.handleHealthz)

	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return s.serverNameMiddleware(gziphandler.GzipHandler(c.Handler(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) serverNameMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
