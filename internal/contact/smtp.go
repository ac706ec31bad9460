package contact

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
)

// SMTPRelay mails messages to the owner's inbox with plain auth.
type SMTPRelay struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPRelay returns a relay that delivers to to. When to is empty the
// authenticated user receives the messages.
func NewSMTPRelay(host, port, user, password, to string) *SMTPRelay {
	if to == "" {
		to = user
	}
	return &SMTPRelay{Host: host, Port: port, User: user, Password: password, To: to, sendMail: smtp.SendMail}
}

// Name implements Relay.
func (r *SMTPRelay) Name() string {
	return "smtp"
}

// Send implements Relay. net/smtp has no context support, so ctx is only
// checked before dialing.
func (r *SMTPRelay) Send(ctx context.Context, m Message) error {
	if r.User == "" || r.Password == "" {
		return errors.New("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", r.User, r.Password, r.Host)
	err := r.sendMail(r.Host+":"+r.Port, auth, r.User, []string{r.To}, r.compose(m))
	if err != nil {
		return errors.Wrap(err, "smtp send")
	}
	return nil
}

func (r *SMTPRelay) compose(m Message) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s %s", m.Surname, m.Name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Surname, m.Name, m.Email, m.Text)

	return []byte("To: " + r.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + r.User + "\r\n" +
		"Reply-To: " + m.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")
}
