package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Expo device tokens look like ExponentPushToken[xxxx] or ExpoPushToken[xxxx].
// Anything else is rejected locally, before any network call.
var pushTokenPattern = regexp.MustCompile(`^(ExponentPushToken|ExpoPushToken)\[[^\]]+\]$`)

func IsValidPushToken(token string) bool {
	return pushTokenPattern.MatchString(token)
}

type ExpoClient struct {
	BaseURL string
	Client  *http.Client
}

func NewExpoClient(baseURL string) *ExpoClient {
	if baseURL == "" {
		baseURL = "https://exp.host/--/api/v2/push/send"
	}
	return &ExpoClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type PushMessage struct {
	To       string         `json:"to"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Data     map[string]any `json:"data,omitempty"`
	Sound    string         `json:"sound,omitempty"`
	Priority string         `json:"priority,omitempty"`
}

type PushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type expoPushResp struct {
	Data   []PushTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// Send posts a batch of messages and returns one ticket per message.
func (c *ExpoClient) Send(ctx context.Context, messages []PushMessage) ([]PushTicket, error) {
	if c.Client == nil {
		return nil, errors.New("expo: http client is nil")
	}
	if len(messages) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("expo: %s", msg)
	}

	var decoded expoPushResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("expo: %s", decoded.Errors[0].Message)
	}
	return decoded.Data, nil
}

// SendOne sends a single message and surfaces a per-ticket error.
func (c *ExpoClient) SendOne(ctx context.Context, msg PushMessage) (*PushTicket, error) {
	tickets, err := c.Send(ctx, []PushMessage{msg})
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, errors.New("expo: empty ticket response")
	}
	t := tickets[0]
	if t.Status != "ok" {
		return &t, fmt.Errorf("expo: ticket error: %s", t.Message)
	}
	return &t, nil
}
