package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single simulate round trip.
const DefaultTimeout = 30 * time.Second

// SimulateRequest is the JSON body posted to the simulator.
type SimulateRequest struct {
	Circuit []ColumnOp `json:"circuit"`
}

// SimulateResponse is the simulator's reply.
type SimulateResponse struct {
	StatevectorStr string             `json:"statevector_str"`
	Probabilities  map[string]float64 `json:"probabilities"`
	HumanSteps     []HumanStep        `json:"human_steps,omitempty"`
	Hints          VisualizationHints `json:"visualizationHints,omitempty"`
}

// VisualizationHints carries optional chart hints. Highlight entries may be
// basis labels ("10", "|10⟩") or integer indices.
type VisualizationHints struct {
	Highlight []any `json:"highlight,omitempty"`
}

// HumanStep is one narrated step of a simulation.
type HumanStep struct {
	Step           StepLabel          `json:"step"`
	Text           string             `json:"text"`
	StatevectorStr string             `json:"statevector_str,omitempty"`
	Probabilities  map[string]float64 `json:"probabilities,omitempty"`
}

// StepLabel holds a step identifier that the simulator sends either as a
// number or as a string.
type StepLabel string

func (l *StepLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StepLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("step label: %w", err)
	}
	*l = StepLabel(n.String())
	return nil
}

// SimulationResult is a decoded simulator reply, published to the view as
// one update.
type SimulationResult struct {
	StatevectorText string
	State           Statevector
	Probabilities   map[string]float64
	Steps           []HumanStep
	Highlights      map[string]bool
}

// Simulator executes a circuit remotely.
type Simulator interface {
	Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error)
}

// NetworkError reports a failed round trip. Status is 0 when the request
// never got a response.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("simulate %s (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("simulate %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPSimulator posts circuits to a simulator endpoint.
type HTTPSimulator struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPSimulator returns a client for the simulate endpoint at url.
func NewHTTPSimulator(url string, timeout time.Duration, logger *slog.Logger) *HTTPSimulator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSimulator{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Simulate sends req and decodes the JSON reply.
func (s *HTTPSimulator) Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal simulate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Op: "request", Err: err}
	}
	reqID := uuid.Must(uuid.NewV7()).String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)

	s.logger.Debug("sending simulate request",
		"url", s.url,
		"request_id", reqID,
		"columns", len(req.Circuit),
		"payload_size", len(body))

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("simulate request failed", "request_id", reqID, "error", err)
		return nil, &NetworkError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read", Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("simulator returned error status",
			"request_id", reqID,
			"status", resp.StatusCode,
			"body", truncate(string(raw), 200),
			"duration", time.Since(start))
		return nil, &NetworkError{Op: "post", Status: resp.StatusCode, Err: fmt.Errorf("%s", truncate(strings.TrimSpace(string(raw)), 200))}
	}

	var out SimulateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &NetworkError{Op: "decode", Status: resp.StatusCode, Err: err}
	}

	s.logger.Debug("simulate response received",
		"request_id", reqID,
		"duration", time.Since(start),
		"steps", len(out.HumanSteps))

	return &out, nil
}

// DecodeResponse turns a simulator reply into a SimulationResult. The
// statevector text must decode; the probabilities fall back to those of the
// decoded state when the reply omits them.
func DecodeResponse(resp *SimulateResponse) (*SimulationResult, error) {
	if resp == nil {
		return nil, &NetworkError{Op: "decode", Err: fmt.Errorf("empty response")}
	}
	state, err := Decode(resp.StatevectorStr)
	if err != nil {
		return nil, fmt.Errorf("decode simulate response: %w", err)
	}

	probs := resp.Probabilities
	if len(probs) == 0 {
		probs = state.Probabilities()
	}
	hints := resp.Hints.Highlight
	if len(hints) == 0 {
		hints = termLabels(resp.StatevectorStr)
	}
	return &SimulationResult{
		StatevectorText: resp.StatevectorStr,
		State:           state,
		Probabilities:   probs,
		Steps:           resp.HumanSteps,
		Highlights:      NormalizeHighlights(hints),
	}, nil
}

// Label renders the step label for the log panel.
func (h HumanStep) Label() string {
	if h.Step == "" {
		return "?"
	}
	if n, err := strconv.ParseFloat(string(h.Step), 64); err == nil && n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return string(h.Step)
}

// truncate cuts s to n display cells, never inside a rune.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "…")
}
