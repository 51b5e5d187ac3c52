// Package telegram sends order notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	SendTimeout    = 8 * time.Second
)

var ErrNotConfigured = errors.New("Missing telegram configuration.")

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendError carries the Bot API description, or the HTTP status when there is none.
type SendError struct {
	StatusCode  int
	Description string
}

func (e *SendError) Error() string {
	return e.Description
}

// Send posts text to chatID. A reply without ok:true is a *SendError.
func (c *Client) Send(ctx context.Context, token, chatID, text string) error {
	token = strings.TrimSpace(token)
	chatID = strings.TrimSpace(chatID)
	if token == "" || chatID == "" || strings.TrimSpace(text) == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var reply sendMessageResponse
	decodeErr := json.Unmarshal(raw, &reply)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && decodeErr == nil && reply.OK {
		return nil
	}
	description := reply.Description
	if description == "" {
		description = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &SendError{StatusCode: resp.StatusCode, Description: description}
}
