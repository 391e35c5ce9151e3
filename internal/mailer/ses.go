// internal/mailer/ses.go
package mailer

import (
	"context"

	"healthreport-service/internal/common/aws"
	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer sends report emails through AWS SES raw sending.
type SESMailer struct {
	client *aws.SESClient
	logger logger.Logger
}

func NewSESMailer(client *aws.SESClient, log logger.Logger) *SESMailer {
	return &SESMailer{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "ses-mailer"}),
	}
}

func (m *SESMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	raw := BuildRawMessage(msg)
	input := &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       &msg.From,
		Destinations: []string{msg.To},
	}

	out, err := m.client.SendRawEmail(ctx, input)
	if err != nil {
		m.logger.Error("email delivery failed", map[string]interface{}{
			"recipient": msg.To,
			"error":     err.Error(),
		})
		return errors.NewDeliveryFailedError(msg.To, err)
	}

	fields := map[string]interface{}{"recipient": msg.To}
	if out.MessageId != nil {
		fields["messageId"] = *out.MessageId
	}
	m.logger.Info("email delivered", fields)
	return nil
}
