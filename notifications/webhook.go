// Package notifications delivers fail-soft webhook notifications for trade
// opens and terminal position exits.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fvgbot/logger"
)

// Notifier POSTs JSON events to a configured webhook URL. A Notifier with an
// empty URL is a no-op, so callers never need to nil-check.
type Notifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

// NewNotifier creates a webhook notifier. url may be empty to disable.
func NewNotifier(url string, log *logger.Logger) *Notifier {
	return &Notifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Notify delivers the event asynchronously. Delivery failures are logged and
// never surface to the pipeline.
func (n *Notifier) Notify(event string, payload interface{}) {
	if n == nil || n.url == "" {
		return
	}

	body := map[string]interface{}{
		"event":   event,
		"payload": payload,
		"sent_at": time.Now().UTC(),
	}

	go func() {
		data, err := json.Marshal(body)
		if err != nil {
			n.log.WithComponent("webhook").WithError(err).Warn("failed to encode webhook payload")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
		if err != nil {
			n.log.WithComponent("webhook").WithError(err).Warn("failed to build webhook request")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			n.log.WithComponent("webhook").WithError(err).Warn("webhook delivery failed")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			n.log.WithComponent("webhook").WithFields(map[string]interface{}{
				"status": resp.StatusCode,
				"event":  event,
			}).Warn("webhook delivery rejected")
		}
	}()
}
