package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Channel delivers rendered notification content.
type Channel interface {
	Send(ctx context.Context, content string) error
}

// WebhookChannel posts notifications to a webhook endpoint.
type WebhookChannel struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookChannel constructs a channel.
func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookChannel{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts the content as a text message.
func (c *WebhookChannel) Send(ctx context.Context, content string) error {
	if c == nil || c.url == "" {
		return errors.New("webhook channel: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: content},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook channel: non-2xx")
	}
	return nil
}
