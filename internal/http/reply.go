package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ReplyClient sends reply messages to the platform's reply endpoint.
type ReplyClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

var _ Replier = (*ReplyClient)(nil)

func NewReplyClient(endpoint, accessToken string) *ReplyClient {
	return &ReplyClient{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *ReplyClient) Reply(ctx context.Context, replyToken string, messages []string) error {
	if len(messages) == 0 {
		return nil
	}

	req := replyRequest{ReplyToken: replyToken}
	for _, m := range messages {
		req.Messages = append(req.Messages, replyMessage{Type: "text", Text: m})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("reply endpoint returned %d: %s", resp.StatusCode, detail)
	}

	slog.InfoContext(ctx, "Sent replies", "count", len(messages))
	return nil
}
