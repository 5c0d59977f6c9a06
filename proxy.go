package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxProxyBody caps the circuit payload accepted by the proxy.
const maxProxyBody = 1 << 20

// Proxy forwards /api/simulate to the upstream simulator.
type Proxy struct {
	upstream string
	client   *http.Client
	logger   *slog.Logger
	router   *chi.Mux
}

// NewProxy builds the proxy router for the given upstream URL.
func NewProxy(upstream string, timeout time.Duration, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &Proxy{
		upstream: upstream,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(p.logRequests)
	p.RegisterHTTP(r)
	p.router = r
	return p
}

// RegisterHTTP mounts the simulate endpoints on r.
func (p *Proxy) RegisterHTTP(r chi.Router) {
	r.Get("/api/simulate", p.handleHealth)
	r.Post("/api/simulate", p.handleSimulate)
}

// ServeHTTP makes the proxy an http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled.
func (p *Proxy) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           p,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		p.logger.Info("simulate proxy listening", "addr", addr, "upstream", p.upstream)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("proxy server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p.logger.Info("simulate proxy stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (p *Proxy) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "msg": "Simulator proxy alive"})
}

func (p *Proxy) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
	if err != nil {
		p.fail(w, r, fmt.Errorf("read request body: %w", err))
		return
	}
	if !json.Valid(body) {
		p.fail(w, r, fmt.Errorf("request body is not valid JSON"))
		return
	}

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.upstream, bytes.NewReader(body))
	if err != nil {
		p.fail(w, r, err)
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	if id := middleware.GetReqID(r.Context()); id != "" {
		upReq.Header.Set("X-Request-ID", id)
	}

	resp, err := p.client.Do(upReq)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		p.fail(w, r, fmt.Errorf("read upstream body: %w", err))
		return
	}

	if json.Valid(text) {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(text)
}

func (p *Proxy) fail(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("proxy error",
		"request_id", middleware.GetReqID(r.Context()),
		"upstream", p.upstream,
		"error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Failed to proxy to simulator backend",
		"details": err.Error(),
	})
}

func (p *Proxy) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		p.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
