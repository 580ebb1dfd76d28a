package errorreport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// webhookMessage is the JSON body posted to the error channel.
type webhookMessage struct {
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WebhookPublisher posts failure messages as JSON to a configured URL.
type WebhookPublisher struct {
	client *resty.Client
	url    string
	source string
}

var _ Publisher = (*WebhookPublisher)(nil)

// NewWebhook creates a publisher targeting the given webhook URL.
func NewWebhook(url string) (*WebhookPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("error webhook url is required")
	}
	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &WebhookPublisher{
		client: resty.NewWithClient(httpClient),
		url:    url,
		source: "fileintake",
	}, nil
}

// Publish posts one message. A non-2xx response is an error so callers can
// log it, but the pipeline never fails an invocation over it alone.
func (p *WebhookPublisher) Publish(ctx context.Context, message string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(webhookMessage{
			Source:    p.source,
			Message:   message,
			Timestamp: time.Now().UTC(),
		}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("post error webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("error webhook returned status %d", resp.StatusCode())
	}
	return nil
}
