package data

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/codeskytz/date-api/internal/conf"
	"github.com/codeskytz/date-api/internal/otp/biz"
)

// smtpMailer delivers verification codes over SMTP.
type smtpMailer struct {
	cfg conf.EmailConfig
}

func NewMailer(cfg conf.EmailConfig) biz.Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendCode(ctx context.Context, email, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in 10 minutes. If you did not request this code, ignore this email.\n", code))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
	}
	if m.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
