package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSimulatorRoundTrip(t *testing.T) {
	var got SimulateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Errorf("X-Request-ID is not a uuid: %v", err)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"statevector_str": "(0.707)|00⟩ + (0.707)|11⟩",
			"probabilities": {"00": 0.5, "11": 0.5},
			"human_steps": [
				{"step": 1, "text": "Apply H to q0"},
				{"step": "2", "text": "Apply CNOT", "probabilities": {"00": 0.5, "11": 0.5}}
			]
		}`)
	}))
	defer srv.Close()

	sim := NewHTTPSimulator(srv.URL, time.Second, discardLogger())
	resp, err := sim.Simulate(context.Background(), SimulateRequest{Circuit: []ColumnOp{{Q0: "H"}, {Q0: "CNOT_control"}}})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if len(got.Circuit) != 2 || got.Circuit[1].Q0 != "CNOT_control" {
		t.Errorf("server saw %+v", got)
	}
	if len(resp.HumanSteps) != 2 {
		t.Fatalf("steps = %d, want 2", len(resp.HumanSteps))
	}
	if resp.HumanSteps[0].Label() != "1" || resp.HumanSteps[1].Label() != "2" {
		t.Errorf("labels = %q, %q", resp.HumanSteps[0].Label(), resp.HumanSteps[1].Label())
	}
	if resp.Probabilities["11"] != 0.5 {
		t.Errorf("probabilities = %v", resp.Probabilities)
	}
}

func TestHTTPSimulatorErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantOp   string
		wantCode int
	}{
		{"bad gateway", http.StatusBadGateway, "upstream down", "post", http.StatusBadGateway},
		{"not json", http.StatusOK, "<html>", "decode", http.StatusOK},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			io.WriteString(w, tt.body)
		}))

		sim := NewHTTPSimulator(srv.URL, time.Second, discardLogger())
		_, err := sim.Simulate(context.Background(), SimulateRequest{})
		srv.Close()

		var ne *NetworkError
		if !errors.As(err, &ne) {
			t.Errorf("%s: error = %v, want *NetworkError", tt.name, err)
			continue
		}
		if ne.Op != tt.wantOp || ne.Status != tt.wantCode {
			t.Errorf("%s: op=%q status=%d, want op=%q status=%d", tt.name, ne.Op, ne.Status, tt.wantOp, tt.wantCode)
		}
	}
}

func TestHTTPSimulatorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSimulator(url, time.Second, discardLogger()).Simulate(context.Background(), SimulateRequest{})
	var ne *NetworkError
	if !errors.As(err, &ne) || ne.Op != "post" || ne.Status != 0 {
		t.Errorf("error = %v, want transport NetworkError", err)
	}
}

func TestHTTPSimulatorCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPSimulator(srv.URL, time.Second, discardLogger()).Simulate(ctx, SimulateRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestStepLabelUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want StepLabel
	}{
		{`1`, "1"},
		{`2.5`, "2.5"},
		{`"init"`, "init"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var l StepLabel
		if err := json.Unmarshal([]byte(tt.raw), &l); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.raw, err)
			continue
		}
		if l != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.raw, l, tt.want)
		}
	}

	var l StepLabel
	if err := json.Unmarshal([]byte(`{}`), &l); err == nil {
		t.Error("object step label should fail")
	}
}

func TestHumanStepLabel(t *testing.T) {
	tests := []struct {
		step StepLabel
		want string
	}{
		{"", "?"},
		{"3", "3"},
		{"3.0", "3"},
		{"1.5", "1.5"},
		{"final", "final"},
	}
	for _, tt := range tests {
		if got := (HumanStep{Step: tt.step}).Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestDecodeResponse(t *testing.T) {
	res, err := DecodeResponse(&SimulateResponse{StatevectorStr: "(0.707)|01⟩(0.707)|10⟩"})
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if res.State.Kind() != Dual {
		t.Errorf("kind = %v", res.State.Kind())
	}
	if p := res.Probabilities["01"]; p < 49.9 || p > 50.1 {
		t.Errorf("fallback P(01) = %g, want ~50", p)
	}
	if !res.Highlights["01"] || !res.Highlights["10"] || res.Highlights["00"] {
		t.Errorf("derived highlights = %v", res.Highlights)
	}

	res, err = DecodeResponse(&SimulateResponse{
		StatevectorStr: "(1)|00⟩",
		Hints:          VisualizationHints{Highlight: []any{float64(3)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Highlights["11"] || res.Highlights["00"] {
		t.Errorf("explicit highlights = %v", res.Highlights)
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	_, err := DecodeResponse(&SimulateResponse{StatevectorStr: "not a state"})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error = %v, want *ParseError", err)
	}

	_, err = DecodeResponse(nil)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Errorf("nil response error = %v, want *NetworkError", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in string
		n  int
	}{
		{"(0.707)|00⟩(0.707)|11⟩", 11},
		{"(0.707)|00⟩(0.707)|11⟩", 12},
		{"⟩⟩⟩⟩⟩⟩", 3},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q, not valid UTF-8", tt.in, tt.n, got)
		}
		if w := ansi.StringWidth(got); w > tt.n {
			t.Errorf("truncate(%q, %d) is %d cells wide", tt.in, tt.n, w)
		}
	}

	if got := truncate("short", 200); got != "short" {
		t.Errorf("short input changed: %q", got)
	}
}
