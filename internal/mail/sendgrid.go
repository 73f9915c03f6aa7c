package mail

import (
	"context"
	"fmt"

	"furnimart-be/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender delivers transactional mail to a registered user.
type Sender interface {
	Send(ctx context.Context, userID uint, subject, body string) error
}

// AddressLookup resolves a user id to name and email address.
type AddressLookup func(ctx context.Context, userID uint) (name, email string, err error)

type sendGridSender struct {
	apiKey string
	from   string
	lookup AddressLookup
}

func NewSendGridSender(apiKey, from string, lookup AddressLookup) Sender {
	return &sendGridSender{apiKey: apiKey, from: from, lookup: lookup}
}

func (s *sendGridSender) Send(ctx context.Context, userID uint, subject, body string) error {
	if s.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if s.from == "" {
		return fmt.Errorf("mail sender address is empty")
	}

	name, email, err := s.lookup(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	from := sgmail.NewEmail("FurniMart", s.from)
	to := sgmail.NewEmail(name, email)
	htmlContent := fmt.Sprintf("<pre>%s</pre>", body)
	message := sgmail.NewSingleEmail(from, subject, to, body, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	logger.L().Info("mail sent",
		zap.Int("status", response.StatusCode),
		zap.String("to", email),
		zap.String("subject", subject),
	)
	return nil
}
