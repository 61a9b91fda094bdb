// Package trigger accepts on-demand build requests over NATS.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/metrics"
	"github.com/stwalsh4118/playout/internal/playout"
)

const queueGroup = "playout-builders"

// Message outcomes used as the "outcome" label
const (
	OutcomeBuilt   = "built"
	OutcomeBusy    = "busy"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Request asks for one playout to be built
type Request struct {
	PlayoutID uint `json:"playout_id"`
	Reset     bool `json:"reset,omitempty"`
	// Hours overrides the configured horizon when positive
	Hours int `json:"hours,omitempty"`
}

// Reply is sent back when the request carried a reply subject
type Reply struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error,omitempty"`
	Result *playout.Result `json:"result,omitempty"`
}

// Builder runs a single playout build
type Builder interface {
	Build(ctx context.Context, playoutID uint, opts playout.BuildOptions) (*playout.Result, error)
}

// Subject returns the build subject under prefix
func Subject(prefix string) string {
	return prefix + ".build"
}

// Connect opens a NATS connection that keeps retrying in the background
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("playout"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subscriber runs builds for requests published on the build subject
type Subscriber struct {
	nc      *nats.Conn
	builder Builder
	subject string
	horizon time.Duration
	timeout time.Duration
	now     func() time.Time

	mu  sync.Mutex
	sub *nats.Subscription
}

// NewSubscriber creates a subscriber for <prefix>.build
func NewSubscriber(nc *nats.Conn, builder Builder, prefix string, cfg config.BuildConfig) *Subscriber {
	return &Subscriber{
		nc:      nc,
		builder: builder,
		subject: Subject(prefix),
		horizon: cfg.Horizon,
		timeout: cfg.Timeout,
		now:     time.Now,
	}
}

// Start subscribes in a queue group so each request is handled once
func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return errors.New("trigger subscriber already started")
	}
	sub, err := s.nc.QueueSubscribe(s.subject, queueGroup, s.handle)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}
	s.sub = sub

	logger.Log.Info().
		Str("subject", s.subject).
		Msg("Build trigger listening")
	return nil
}

// Stop drains the subscription, letting an in-flight build finish
func (s *Subscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Drain()
	s.sub = nil
	return err
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.finish(msg, OutcomeInvalid, Reply{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.PlayoutID == 0 {
		s.finish(msg, OutcomeInvalid, Reply{Error: "playout_id is required"})
		return
	}

	horizon := s.horizon
	if req.Hours > 0 {
		horizon = time.Duration(req.Hours) * time.Hour
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.builder.Build(ctx, req.PlayoutID, playout.BuildOptions{
		Until: s.now().Add(horizon),
		Reset: req.Reset,
	})
	switch {
	case err == nil:
		s.finish(msg, OutcomeBuilt, Reply{OK: true, Result: result})
	case playout.IsBuildInProgress(err):
		s.finish(msg, OutcomeBusy, Reply{Error: err.Error()})
	default:
		logger.Log.Warn().
			Err(err).
			Uint("playout_id", req.PlayoutID).
			Msg("Triggered build failed")
		s.finish(msg, OutcomeFailed, Reply{Error: err.Error()})
	}
}

func (s *Subscriber) finish(msg *nats.Msg, outcome string, reply Reply) {
	metrics.TriggerMessages.WithLabelValues(outcome).Inc()
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode trigger reply")
		return
	}
	if err := msg.Respond(data); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to send trigger reply")
	}
}

// Send publishes a build request and waits for the reply
func Send(nc *nats.Conn, prefix string, req Request, timeout time.Duration) (*Reply, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode build request: %w", err)
	}
	msg, err := nc.Request(Subject(prefix), data, timeout)
	if err != nil {
		return nil, fmt.Errorf("request build: %w", err)
	}
	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode build reply: %w", err)
	}
	return &reply, nil
}
