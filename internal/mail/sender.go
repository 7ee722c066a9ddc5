package mail

import (
	"fmt"

	"github.com/avrorin/auth-api/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers the password-recovery email. Delivery is best-effort:
// callers log failures and move on.
type Sender interface {
	SendPasswordResetEmail(emailAddress, token string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	d := gomail.NewDialer(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword)
	if !cfg.MailUseTLS {
		d.SSL = false
	}
	return &SMTPSender{dialer: d, from: cfg.MailSender}
}

func (s *SMTPSender) SendPasswordResetEmail(emailAddress, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", emailAddress)
	m.SetHeader("Subject", "Password Reset")
	m.SetBody("text/plain", fmt.Sprintf("Please, use that token to reset your password: %s", token))

	return s.dialer.DialAndSend(m)
}
