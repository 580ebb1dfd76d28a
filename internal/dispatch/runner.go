// Package dispatch applies the redelivery contract to event-triggered
// invocations: bounded attempts with exponential backoff, and a failure
// destination for invocations that exhaust their attempts.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"fileintake/internal/errorreport"
	"fileintake/internal/logx"
	"fileintake/internal/metrics"
)

// Redelivery is the explicit retry contract for one component.
type Redelivery struct {
	MaxAttempts     int
	InitialInterval time.Duration
}

// Runner retries a failed invocation up to the configured attempt count.
// When the attempts are exhausted, the terminal failure is published to the
// error channel and the event is dropped; the runner never blocks the event
// stream on a poison input forever.
type Runner struct {
	policy   Redelivery
	failures errorreport.Publisher
	mx       *metrics.Pipeline
}

// NewRunner constructs a runner with the given policy and failure destination.
func NewRunner(policy Redelivery, failures errorreport.Publisher, mx *metrics.Pipeline) *Runner {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = time.Second
	}
	return &Runner{
		policy:   policy,
		failures: failures,
		mx:       mx,
	}
}

// Invoke runs fn, retrying on error. The component name labels logs,
// metrics, and the failure-destination message.
func (r *Runner) Invoke(ctx context.Context, component string, fn func(context.Context) error) {
	attempt := 0
	operation := func() (struct{}, error) {
		attempt++
		if attempt > 1 {
			r.mx.Redeliveries.WithLabelValues(component).Inc()
			logx.Warn("dispatch", "invocation_retried", map[string]any{
				"invocation": component,
				"attempt":    attempt,
			})
		}
		return struct{}{}, fn(ctx)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.policy.InitialInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
	)
	if err == nil {
		return
	}

	logx.Error("dispatch", "invocation_failed", err, map[string]any{
		"invocation": component,
		"attempts":   attempt,
	})

	msg := fmt.Sprintf("%s invocation failed after %d attempts: %v", component, attempt, err)
	if pubErr := r.failures.Publish(ctx, msg); pubErr != nil {
		logx.Error("dispatch", "failure_publish_failed", pubErr, map[string]any{
			"invocation": component,
		})
	}
}
