// Package slack posts simulation summaries to an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"airlinesim"
)

const (
	defaultUsername = "Airline Simulation"
	defaultIcon     = ":airplane:"

	// Slack rejects messages above 40k characters.
	maxMessageLen = 39_000
)

type payload struct {
	Channel   string `json:"channel,omitempty"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
	Mrkdwn    bool   `json:"mrkdwn"`
}

// Notifier implements airlinesim.Notifier over a Slack incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient airlinesim.HTTPClient
	username   string
}

func NewNotifier(webhookURL string, httpClient airlinesim.HTTPClient) *Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		username:   defaultUsername,
	}
}

func (n *Notifier) PostMessage(ctx context.Context, channel string, message string) error {
	message = truncate(message, maxMessageLen)
	body, err := json.Marshal(payload{
		Channel:   channel,
		Text:      message,
		Username:  n.username,
		IconEmoji: defaultIcon,
		Mrkdwn:    true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: failed to post message: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}
	return nil
}

// truncate cuts message to at most limit bytes on a rune boundary.
func truncate(message string, limit int) string {
	if len(message) <= limit {
		return message
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut] + "\n..."
}

var _ airlinesim.Notifier = (*Notifier)(nil)
