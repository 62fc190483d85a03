// Package notify relays engine events to an external agent over a webhook.
// Delivery is best-effort: failures are logged and never reach the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=notify

// Notifier sends one named event with its payload.
type Notifier interface {
	Notify(ctx context.Context, event string, data any) error
}

// Source identifies this system in outbound payloads.
const Source = "kaizen-flow"

// ErrNotConfigured is returned by a webhook without a URL.
var ErrNotConfigured = errors.New("webhook not configured")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Payload is the JSON body posted to the webhook.
type Payload struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// WebhookNotifier posts events as JSON with a bearer token.
type WebhookNotifier struct {
	url   string
	token string
	http  httpDoer
	now   func() time.Time
}

func NewWebhookNotifier(url, token string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: timeout},
		now:   time.Now,
	}
}

func (n *WebhookNotifier) SetHTTPClient(client httpDoer) {
	if client == nil {
		n.http = &http.Client{Timeout: 5 * time.Second}
		return
	}
	n.http = client
}

func (n *WebhookNotifier) SetClock(now func() time.Time) {
	if now != nil {
		n.now = now
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event string, data any) error {
	if n.url == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(Payload{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: n.now().UTC(),
		Source:    Source,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook %q: %w", event, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send webhook %q: unexpected status %d", event, resp.StatusCode)
	}
	return nil
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, string, any) error { return nil }

// Safe wraps a notifier so that errors and panics are logged and dropped.
type Safe struct {
	Next Notifier
}

func (s Safe) Notify(ctx context.Context, event string, data any) (err error) {
	if s.Next == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[webhook] recovered panic while sending %q: %v", event, r)
		}
		err = nil
	}()
	if sendErr := s.Next.Notify(ctx, event, data); sendErr != nil {
		log.Printf("[webhook] %v", sendErr)
	}
	return nil
}
