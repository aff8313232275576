package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gmfsales/liffbackend/apperrors"
)

const pushPath = "/v2/bot/message/push"

// Client defines the interface for the LINE Messaging API push endpoint.
type Client interface {
	Push(ctx context.Context, to, text string) error
}

type clientImpl struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient creates a push client. timeout bounds every call, including
// reading the response.
func NewClient(token, baseURL string, timeout time.Duration) Client {
	return &clientImpl{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		timeout:    timeout,
	}
}

// Push makes exactly one attempt. Failures are *apperrors.NotificationError.
func (c *clientImpl) Push(ctx context.Context, to, text string) error {
	payload, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("encode push request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pushPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Line-Retry-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if readErr != nil {
		return classifyTransportError(readErr)
	}

	ne := &apperrors.NotificationError{
		Kind:       apperrors.NotificationRejected,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		ne.VendorMessage = er.Message
	}
	return ne
}

func classifyTransportError(err error) error {
	kind := apperrors.NotificationNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = apperrors.NotificationTimeout
	}
	return &apperrors.NotificationError{Kind: kind, Err: err}
}
