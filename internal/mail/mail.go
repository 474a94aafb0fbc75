// Package mail sends test emails through Postmark.
package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"

	"github.com/mrz1836/postmark"
)

// Sentinel errors for mail operations.
var (
	ErrInvalidConfig  = errors.New("invalid mail configuration")
	ErrInvalidMessage = errors.New("invalid message")
	ErrSend           = errors.New("failed to send email")
)

// tag marks test sends in the Postmark activity feed.
const tag = "postcard-test"

// Config holds Postmark credentials and the sender identity.
type Config struct {
	ServerToken  string
	AccountToken string // optional, only needed for account-level API calls
	From         string
}

// Message is one test email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string // optional plain-text alternative
}

// Validate checks required fields.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if _, err := netmail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidMessage, err)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("%w: body is empty", ErrInvalidMessage)
	}
	return nil
}

// emailClient is the subset of the Postmark client used here.
type emailClient interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Compile-time interface check.
var _ emailClient = (*postmark.Client)(nil)

// Sender sends messages through Postmark's transactional API.
type Sender struct {
	client emailClient
	from   string
}

// NewSender creates a Sender. The server token and a valid sender address
// are required.
func NewSender(cfg Config) (*Sender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: server token is required", ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}
	if _, err := netmail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("%w: sender address: %v", ErrInvalidConfig, err)
	}

	return &Sender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		from:   cfg.From,
	}, nil
}

// Send delivers msg and returns the Postmark message ID.
// Tracking is left off: these are previews, not campaigns.
func (s *Sender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      tag,
		HTMLBody: msg.HTMLBody,
		TextBody: msg.TextBody,
	})
	if err != nil {
		return "", errors.Join(ErrSend, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(
			ErrSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return resp.MessageID, nil
}
