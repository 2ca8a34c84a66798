// Package notify posts relationship milestones (stage changes, betrayal
// latches) to a configured webhook. The notifier is optional; callers hold a
// nil *Notifier when no webhook is configured, and every failure is logged
// rather than propagated so a dead webhook never blocks event processing.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Milestone kinds.
const (
	KindStageChange = "stage_change"
	KindBetrayal    = "betrayal"
)

// Milestone is the webhook payload for one notable relationship moment.
type Milestone struct {
	Kind    string    `json:"kind"`
	Pair    string    `json:"pair"`
	EntityA uuid.UUID `json:"entity_a"`
	EntityB uuid.UUID `json:"entity_b"`
	From    string    `json:"from,omitempty"`
	To      string    `json:"to,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

type Notifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func New(url string, logger *slog.Logger) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Post sends one milestone to the webhook. Transport and status failures are
// returned for the caller to log; nothing is retried.
func (n *Notifier) Post(ctx context.Context, m Milestone) error {
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal milestone: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post milestone: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}

	n.logger.Info("milestone posted", "kind", m.Kind, "pair", m.Pair)
	return nil
}
