// Package errorreport is the publish channel for rejection and failure
// messages. Consumers treat delivery as at-least-once; callers treat the
// channel as fire-and-forget and only log publish failures.
package errorreport

import "context"

// Publisher publishes a failure message to the configured error channel.
type Publisher interface {
	Publish(ctx context.Context, message string) error
}
