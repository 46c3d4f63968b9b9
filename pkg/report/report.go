// Package report mails lint results.
package report

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"lexscan/pkg/config"
	"lexscan/pkg/diag"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	From   string
	Sender Sender
}

// NewMailer builds a Mailer that dials the SMTP server named in cfg.
func NewMailer(cfg *config.Config) (*Mailer, error) {
	if !cfg.MailEnabled() {
		return nil, errors.New("SMTP_HOST and MAIL_FROM must be set to send reports")
	}
	return &Mailer{
		From:   cfg.MailFrom,
		Sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}, nil
}

// Compose renders bag as a plain-text lint report addressed to to.
func (m *Mailer) Compose(to string, bag *diag.Bag, lines []string) (*gomail.Message, error) {
	var body bytes.Buffer
	if bag.HasErrors() {
		if err := bag.Emit(&body, lines); err != nil {
			return nil, err
		}
	} else {
		fmt.Fprintf(&body, "%s: no lexical errors\n", bag.FilePath)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", Subject(bag))
	msg.SetBody("text/plain", body.String())
	return msg, nil
}

func (m *Mailer) Send(to string, bag *diag.Bag, lines []string) error {
	msg, err := m.Compose(to, bag, lines)
	if err != nil {
		return err
	}
	if err := m.Sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send report to %s: %w", to, err)
	}
	return nil
}

func Subject(bag *diag.Bag) string {
	if !bag.HasErrors() {
		return fmt.Sprintf("lexscan: %s is clean", bag.FilePath)
	}
	return fmt.Sprintf("lexscan: %d error(s) in %s", bag.Len(), bag.FilePath)
}
