package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hamed0406/apiprobe/internal/probe"
)

// Webhook posts a Slack-compatible payload to a configured URL.
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook returns nil for an empty URL so callers can pass the result
// straight into a Multi.
func NewWebhook(url string) *Webhook {
	if url == "" {
		return nil
	}
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

func (w *Webhook) Send(ctx context.Context, title, text string) error {
	if w == nil || w.URL == "" {
		return errors.New("webhook disabled")
	}
	body, _ := json.Marshal(webhookPayload{Text: "*" + title + "*\n" + text})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.New("webhook non-2xx")
	}
	return nil
}

// SummaryText formats the message sent when a run finishes with
// failures.
func SummaryText(target string, s probe.Summary) (title, text string) {
	title = "apiprobe: failures against " + target
	text = fmt.Sprintf("%d probes: %d passed, %d failed, %d errored (%.1f%% pass rate)",
		s.Total, s.Passed, s.Failed, s.Errored, s.PassRate*100)
	return title, text
}
