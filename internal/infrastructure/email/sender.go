// Package email sends transactional mail through a Resend-style JSON API.
// Delivery is best-effort: callers log failures and move on, a bounced
// confirmation never fails the operation that triggered it.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/infrastructure/config"
)

const sendPath = "/emails"

// ErrSendFailed is returned when the provider rejects a message
var ErrSendFailed = errors.New("email send failed")

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers transactional email
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Doer abstracts the HTTP client
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResendSender implements Sender against a Resend-style HTTP API
type ResendSender struct {
	config config.EmailConfig
	client Doer
	logger *zap.Logger
}

// NewResendSender creates a new sender
func NewResendSender(cfg config.EmailConfig, client Doer, logger *zap.Logger) (*ResendSender, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("email base_url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("email api_key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendSender{config: cfg, client: client, logger: logger}, nil
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type sendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers one message
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("recipient is required")
	}

	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}

	body, err := json.Marshal(sendRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read email response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp sendErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: %s - %s", ErrSendFailed, errResp.Name, errResp.Message)
		}
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}

	var sendResp sendResponse
	if err := json.Unmarshal(respBody, &sendResp); err == nil && sendResp.ID != "" {
		s.logger.Debug("email sent",
			zap.String("to", msg.To),
			zap.String("message_id", sendResp.ID))
	}

	return nil
}

var _ Sender = (*ResendSender)(nil)

// NoopSender discards all messages. Used in development and tests.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a sender that only logs
func NewNoopSender(logger *zap.Logger) *NoopSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopSender{logger: logger}
}

func (s *NoopSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email suppressed (noop sender)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

var _ Sender = (*NoopSender)(nil)
