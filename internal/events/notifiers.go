package events

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/velora-shop/backend-storefront/internal/obs"
	"github.com/velora-shop/backend-storefront/internal/resilience"
)

// LogNotifier writes emitted events to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs the event at debug level.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Debug().
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		Str("event_id", event.ID).
		Msg("domain_event")
	return nil
}

// MetricsNotifier counts emitted events per topic.
type MetricsNotifier struct{}

// Notify increments the domain event counter.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if obs.DomainEventsTotal != nil {
		obs.DomainEventsTotal.WithLabelValues(event.Topic).Inc()
	}
	return nil
}

// WebhookNotifier delivers events to a single configured endpoint. When HTTP
// is set, delivery goes through the circuit-breaking client; otherwise Client
// (or a default) is used directly. Topics limits delivery to the listed
// topics; empty means DefaultTopics.
type WebhookNotifier struct {
	Endpoint string
	Client   *http.Client
	HTTP     *resilience.HTTPClient
	Topics   []string
}

func (n WebhookNotifier) wants(topic string) bool {
	topics := n.Topics
	if len(topics) == 0 {
		topics = DefaultTopics()
	}
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}

// HTTPClient builds an otel-instrumented client for webhook delivery.
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Notify posts the event payload as JSON. A missing endpoint disables delivery.
func (n WebhookNotifier) Notify(ctx context.Context, event Event) error {
	endpoint := strings.TrimSpace(n.Endpoint)
	if endpoint == "" || !n.wants(event.Topic) {
		return nil
	}
	body := fmt.Sprintf(`{"id":%q,"topic":%q,"aggregateId":%q,"payload":%s,"occurredAt":%q}`,
		event.ID, event.Topic, event.AggregateID, payloadOrEmpty(event.Payload), event.OccurredAt.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Storefront-Topic", event.Topic)

	var resp *http.Response
	if n.HTTP != nil {
		resp, err = n.HTTP.Do(ctx, req)
	} else {
		client := n.Client
		if client == nil {
			client = HTTPClient(0)
		}
		resp, err = client.Do(req)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func payloadOrEmpty(payload []byte) string {
	if len(payload) == 0 {
		return "{}"
	}
	return string(payload)
}
