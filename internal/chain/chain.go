// Package chain runs an ordered list of interchangeable providers for one
// capability until one of them yields an acceptable result. A provider that
// errors or exceeds its timeout is skipped; when every provider fails the
// chain hands back a configured default so a live call never dead-ends.
package chain

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Provider is one entry in a fallback chain. Invoke must honor ctx
// cancellation; a provider that outlives its timeout is abandoned and its
// eventual result discarded.
type Provider[I, O any] struct {
	Name    string
	Timeout time.Duration
	Invoke  func(ctx context.Context, payload I) (O, error)
}

// Chain tries providers in priority order, first-acceptable-wins.
type Chain[I, O any] struct {
	name      string
	providers []Provider[I, O]
	accept    func(O) bool
	relax     func(I) (I, bool)
	fallback  func() O
	logger    *zap.Logger
}

// Option customizes chain behavior
type Option[I, O any] func(*Chain[I, O])

// WithRelaxedRetry enables a single same-provider retry with a relaxed
// payload when a provider succeeds but the result is not acceptable
// (the low-confidence speech recognition case).
func WithRelaxedRetry[I, O any](relax func(I) (I, bool)) Option[I, O] {
	return func(c *Chain[I, O]) {
		c.relax = relax
	}
}

// New creates a fallback chain. accept decides whether a successful provider
// result is usable; fallback supplies the static default returned when every
// provider fails.
func New[I, O any](
	name string,
	providers []Provider[I, O],
	accept func(O) bool,
	fallback func() O,
	logger *zap.Logger,
	opts ...Option[I, O],
) *Chain[I, O] {
	c := &Chain[I, O]{
		name:      name,
		providers: providers,
		accept:    accept,
		fallback:  fallback,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run walks the providers in order and returns the first acceptable result,
// or the configured default. It never returns an error: degradation is the
// contract, not failure.
func (c *Chain[I, O]) Run(ctx context.Context, payload I) O {
	for _, p := range c.providers {
		out, err := c.invoke(ctx, p, payload)
		if err != nil {
			c.logger.Warn("Provider failed, falling through",
				zap.String("chain", c.name),
				zap.String("provider", p.Name),
				zap.Error(err))
			continue
		}
		if c.accept(out) {
			return out
		}

		// Low-confidence-but-success: optionally re-issue the same
		// provider once with relaxed settings before moving on.
		if c.relax != nil {
			if relaxed, ok := c.relax(payload); ok {
				retried, err := c.invoke(ctx, p, relaxed)
				if err == nil && c.accept(retried) {
					return retried
				}
			}
		}

		c.logger.Warn("Provider result not acceptable, falling through",
			zap.String("chain", c.name),
			zap.String("provider", p.Name))
	}

	c.logger.Warn("All providers exhausted, using default",
		zap.String("chain", c.name))
	return c.fallback()
}

// invoke races one provider call against its timeout. The losing call keeps
// running in its goroutine until its context fires; its result is dropped.
func (c *Chain[I, O]) invoke(ctx context.Context, p Provider[I, O], payload I) (O, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	type outcome struct {
		out O
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		out, err := p.Invoke(callCtx, payload)
		done <- outcome{out: out, err: err}
	}()

	select {
	case res := <-done:
		return res.out, res.err
	case <-callCtx.Done():
		var zero O
		return zero, callCtx.Err()
	}
}
