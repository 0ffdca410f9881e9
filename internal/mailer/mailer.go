package mailer

import (
	"github.com/campushack/portal/internal/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers a plain-text mail. Callers treat delivery failures as
// recoverable: an authentication or team action never fails just because
// the mail hop is down.
type Sender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}
