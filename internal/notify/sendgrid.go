package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

// SendGrid delivers receipts through the SendGrid v3 mail API.
type SendGrid struct {
	apiKey string
	from   string
	host   string
}

// NewSendGrid returns a notifier sending from the given address.
func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{apiKey: apiKey, from: from}
}

// WithHost points the client at another API host.
func (s *SendGrid) WithHost(host string) *SendGrid {
	cp := *s
	cp.host = host
	return &cp
}

func (s *SendGrid) message(r Receipt) *mail.SGMailV3 {
	from := mail.NewEmail("", s.from)
	to := mail.NewEmail(r.Name, r.Email)
	return mail.NewSingleEmail(from, r.subject(), to, r.body(), "")
}

func (s *SendGrid) SendReceipt(ctx context.Context, r Receipt) error {
	if r.Email == "" {
		return fmt.Errorf("send receipt to %s: no email address", r.Name)
	}
	req := sendgrid.GetRequest(s.apiKey, sendEndpoint, s.host)
	req.Method = "POST"
	req.Body = mail.GetRequestBody(s.message(r))
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("send receipt to %s: %w", r.Email, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send receipt to %s: sendgrid status %d: %s", r.Email, resp.StatusCode, resp.Body)
	}
	return nil
}
