package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// LogNotifier writes dispatches to the service log. Used when no
// notification webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Dispatch(userID, templateKey string, params map[string]string) error {
	log.Printf("🔔 Notify: user=%s template=%s params=%v", userID, templateKey, params)
	return nil
}

// WebhookNotifier forwards dispatches to the notification service as
// JSON. The progression engine treats it as fire-and-forget: callers
// log failures and never let them fail the triggering award.
type WebhookNotifier struct {
	URL          string
	ServiceToken string
	httpClient   *http.Client
}

func NewWebhookNotifier(url, serviceToken string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:          url,
		ServiceToken: serviceToken,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type notificationPayload struct {
	UserID      string            `json:"user_id"`
	TemplateKey string            `json:"template_key"`
	Params      map[string]string `json:"params,omitempty"`
}

func (n *WebhookNotifier) Dispatch(userID, templateKey string, params map[string]string) error {
	body, err := json.Marshal(notificationPayload{
		UserID:      userID,
		TemplateKey: templateKey,
		Params:      params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.ServiceToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned %d", resp.StatusCode)
	}
	return nil
}
