// Package vision is the optional image-classification hook: an external
// service proposes an item and amount for a photographed object.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"ledgerbot/internal/core"
)

// Suggestion is a proposed ledger entry derived from an image. A nil
// Suggestion from Classify means nothing was recognized.
type Suggestion struct {
	Item   string
	Amount core.Money
}

type Classifier interface {
	Classify(ctx context.Context, imageRef string) (*Suggestion, error)
}

// HTTPClassifier calls a remote classification service.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

var _ Classifier = (*HTTPClassifier)(nil)

func NewHTTPClassifier(endpoint string) *HTTPClassifier {
	return &HTTPClassifier{
		endpoint: endpoint,
		// Model inference can be slow on cold start.
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyRequest struct {
	Image string `json:"image"`
}

type classifyResponse struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, imageRef string) (*Suggestion, error) {
	body, err := json.Marshal(classifyRequest{Image: imageRef})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if out.Item == "" {
		return nil, nil
	}
	cents := int64(math.Round(out.Amount * 100))
	return &Suggestion{Item: out.Item, Amount: core.Money{Cents: cents}}, nil
}
