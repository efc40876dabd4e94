package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
	"github.com/hrygo/todoassist/plugin/ai/timeout"
)

// Interpreter is an upstream classifier, typically backed by a language model.
type Interpreter interface {
	Interpret(ctx context.Context, messages []Message, tc aitime.TemporalContext) (Result, error)
}

// Source names the layer that produced a result.
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceRules    Source = "rules"
)

// Service classifies with the upstream interpreter first and falls back to
// the local rules on any failure.
type Service struct {
	upstream   Interpreter
	classifier *Classifier
	timeout    time.Duration
}

// NewService creates a service. upstream may be nil.
func NewService(upstream Interpreter, upstreamTimeout time.Duration) *Service {
	if upstreamTimeout <= 0 {
		upstreamTimeout = timeout.InterpretTimeout
	}
	return &Service{
		upstream:   upstream,
		classifier: NewClassifier(),
		timeout:    upstreamTimeout,
	}
}

// Interpret never fails: when the upstream interpreter is absent, errors,
// times out or returns an unknown intent, the rule classifier answers.
func (s *Service) Interpret(ctx context.Context, messages []Message, tc aitime.TemporalContext) (Result, Source) {
	if s.upstream != nil {
		start := time.Now()
		result, err := s.callUpstream(ctx, messages, tc)
		if err == nil {
			slog.Debug("intent classified by upstream",
				"intent", result.Intent,
				"latency_ms", time.Since(start).Milliseconds())
			return result, SourceUpstream
		}
		slog.Warn("upstream interpreter failed, falling back to rules",
			"error", err,
			"latency_ms", time.Since(start).Milliseconds())
	}
	return s.classifier.Classify(messages, tc), SourceRules
}

// ErrNoUpstream is returned by InterpretUpstream when no upstream is configured.
var ErrNoUpstream = errors.New("no upstream interpreter configured")

// InterpretUpstream asks only the upstream interpreter, without falling back.
func (s *Service) InterpretUpstream(ctx context.Context, messages []Message, tc aitime.TemporalContext) (Result, error) {
	if s.upstream == nil {
		return Result{}, ErrNoUpstream
	}
	return s.callUpstream(ctx, messages, tc)
}

// Rewrite polishes a todo with the upstream rewriter when the upstream
// implements Rewriter, falling back to Polish on any failure.
func (s *Service) Rewrite(ctx context.Context, req RewriteRequest, tc aitime.TemporalContext) (Rewrite, Source) {
	if rewriter, ok := s.upstream.(Rewriter); ok {
		start := time.Now()
		rewrite, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (Rewrite, error) {
			return rewriter.RewriteTodo(ctx, req)
		})
		if err == nil && strings.TrimSpace(rewrite.Polished) != "" {
			return rewrite, SourceUpstream
		}
		if err == nil {
			err = errors.New("empty rewrite")
		}
		slog.Warn("upstream rewriter failed, falling back to local rewrite",
			"error", err,
			"latency_ms", time.Since(start).Milliseconds())
	}
	return Polish(req, tc), SourceRules
}

func (s *Service) callUpstream(ctx context.Context, messages []Message, tc aitime.TemporalContext) (Result, error) {
	result, err := withTimeout(ctx, s.timeout, func(ctx context.Context) (Result, error) {
		return s.upstream.Interpret(ctx, messages, tc)
	})
	if err != nil {
		return Result{}, err
	}
	if !result.Intent.Valid() {
		return Result{}, fmt.Errorf("unknown intent %q", result.Intent)
	}
	return result, nil
}

// withTimeout runs call under a deadline and returns as soon as the deadline
// passes, even if call ignores its context.
func withTimeout[T any](ctx context.Context, d time.Duration, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type reply struct {
		value T
		err   error
	}
	done := make(chan reply, 1)
	go func() {
		value, err := call(ctx)
		done <- reply{value, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// ErrMockUnavailable is returned by MockInterpreter when Err is unset and
// no result is configured.
var ErrMockUnavailable = errors.New("mock interpreter unavailable")

// MockInterpreter is an Interpreter for tests.
type MockInterpreter struct {
	Result  *Result
	Rewrite *Rewrite
	Err     error
	Delay   time.Duration
	Calls   int
}

func (m *MockInterpreter) Interpret(ctx context.Context, _ []Message, _ aitime.TemporalContext) (Result, error) {
	if err := m.call(ctx); err != nil {
		return Result{}, err
	}
	if m.Result == nil {
		return Result{}, ErrMockUnavailable
	}
	return *m.Result, nil
}

func (m *MockInterpreter) RewriteTodo(ctx context.Context, _ RewriteRequest) (Rewrite, error) {
	if err := m.call(ctx); err != nil {
		return Rewrite{}, err
	}
	if m.Rewrite == nil {
		return Rewrite{}, ErrMockUnavailable
	}
	return *m.Rewrite, nil
}

func (m *MockInterpreter) call(ctx context.Context) error {
	m.Calls++
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.Err
}
