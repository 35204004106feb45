package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/GrantAgent/pkg/logger_i"
)

const resendEndpoint = "https://api.resend.com/emails"

var ErrSendFailed = errors.New("email send failed")

type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var logger = logger_i.NewLogger("Email")

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	apiKey     string
	from       string
	endpoint   string
	httpClient *http.Client
}

func NewResendSender(apiKey string, from string, httpClient *http.Client) *ResendSender {
	return &ResendSender{apiKey: apiKey, from: from, endpoint: resendEndpoint, httpClient: httpClient}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: no recipient", ErrSendFailed)
	}
	from := msg.From
	if from == "" {
		from = s.from
	}
	body, err := json.Marshal(resendPayload{From: from, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// LogSender only logs messages. It is used when no mail provider is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.FromContext(ctx).Info("Email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
