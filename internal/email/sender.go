package email

import (
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a single plain-text message.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}
