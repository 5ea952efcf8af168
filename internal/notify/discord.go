package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/driftwatch/driftwatch/internal/errors"
)

// DefaultTimeout is the per-request webhook timeout when none is
// configured.
const DefaultTimeout = 10 * time.Second

// DiscordSink posts alert batches to a Discord-compatible webhook as
// embed arrays.
type DiscordSink struct {
	url    string
	client *http.Client
}

// Verify interface implementation at compile time
var _ Sink = (*DiscordSink)(nil)

// NewDiscordSink creates a webhook sink posting to url.
func NewDiscordSink(url string, timeout time.Duration) *DiscordSink {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DiscordSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// discordEmbed is the wire shape of one alert.
type discordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Footer      discordFooter `json:"footer"`
	Timestamp   string        `json:"timestamp"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Send posts one delivery batch. Batches over MaxAlertsPerBatch are
// rejected without a request: Discord would drop the whole message.
func (s *DiscordSink) Send(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if len(alerts) > MaxAlertsPerBatch {
		return errors.ValidationError(
			fmt.Sprintf("delivery batch of %d alerts exceeds the webhook limit of %d",
				len(alerts), MaxAlertsPerBatch), nil)
	}

	msg := discordMessage{Embeds: make([]discordEmbed, len(alerts))}
	for i, a := range alerts {
		msg.Embeds[i] = discordEmbed{
			Title:       a.Title,
			Description: a.Description,
			Color:       a.Color,
			Footer:      discordFooter{Text: a.Footer},
			Timestamp:   a.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.InternalError("failed to encode webhook payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return errors.InternalError("failed to create webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.WebhookError("webhook request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.WebhookError(
			fmt.Sprintf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)), nil)
	}
	return nil
}
