package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	// ErrBusy is returned when a simulate trigger arrives while a request is pending.
	ErrBusy = errors.New("simulation already in progress")
	// ErrSuperseded is returned for an outcome whose sequence is no longer the latest.
	ErrSuperseded = errors.New("simulation result superseded")
)

// Ticket identifies one issued request.
type Ticket struct {
	Seq uint64
	Ctx context.Context
}

// Outcome is what a finished round trip reports back to the controller.
type Outcome struct {
	Seq    uint64
	Result *SimulationResult
	Err    error
}

// Coordinator allows one simulate request in flight at a time and applies
// only the reply to the most recently issued request.
type Coordinator struct {
	client Simulator
	logger *slog.Logger

	mu      sync.Mutex
	issued  uint64
	pending bool
	cancel  context.CancelFunc
}

// NewCoordinator returns a Coordinator using client for round trips.
func NewCoordinator(client Simulator, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{client: client, logger: logger}
}

// Pending reports whether a request is in flight.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Begin issues a new sequence number. It returns false when a request is
// already pending; the trigger must then be ignored.
func (c *Coordinator) Begin(parent context.Context) (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		c.logger.Debug("simulate trigger ignored", "pending_seq", c.issued)
		return Ticket{}, false
	}
	c.issued++
	ctx, cancel := context.WithCancel(parent)
	c.pending = true
	c.cancel = cancel
	return Ticket{Seq: c.issued, Ctx: ctx}, true
}

// Run performs the round trip for t. It is safe to call from a goroutine;
// it does not touch coordinator state.
func (c *Coordinator) Run(t Ticket, circuit []ColumnOp) Outcome {
	resp, err := c.client.Simulate(t.Ctx, SimulateRequest{Circuit: circuit})
	if err != nil {
		return Outcome{Seq: t.Seq, Err: err}
	}
	res, err := DecodeResponse(resp)
	if err != nil {
		return Outcome{Seq: t.Seq, Err: err}
	}
	return Outcome{Seq: t.Seq, Result: res}
}

// Finish settles an outcome. A stale outcome returns ErrSuperseded and leaves
// the pending state of the newer request alone.
func (c *Coordinator) Finish(o Outcome) (*SimulationResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o.Seq != c.issued {
		c.logger.Warn("discarding stale simulation outcome", "seq", o.Seq, "latest", c.issued)
		return nil, ErrSuperseded
	}
	c.pending = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if o.Err != nil {
		c.logger.Error("simulation failed", "seq", o.Seq, "error", o.Err)
		return nil, o.Err
	}
	c.logger.Info("simulation applied", "seq", o.Seq, "steps", len(o.Result.Steps))
	return o.Result, nil
}

// Invalidate discards any in-flight request. Its late reply will be
// reported as superseded.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued++
	c.pending = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Simulate runs a full round trip synchronously.
func (c *Coordinator) Simulate(ctx context.Context, circuit []ColumnOp) (*SimulationResult, error) {
	t, ok := c.Begin(ctx)
	if !ok {
		return nil, ErrBusy
	}
	return c.Finish(c.Run(t, circuit))
}
