package outbound

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vendaflow/vendaflow/pkg/models"
)

// MailMessage is one outbound email.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends mail through a tenant's SMTP transport.
type Mailer interface {
	Send(ctx context.Context, settings *models.TenantSettings, msg MailMessage) error
}

// SMTPMailer sends through the tenant's configured SMTP server with plain
// auth. One attempt, no retries.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(_ context.Context, settings *models.TenantSettings, msg MailMessage) error {
	port := settings.SMTPPort
	if port == 0 {
		port = 587
	}

	addr := fmt.Sprintf("%s:%d", settings.SMTPHost, port)
	from := settings.SMTPUser
	fromName := strings.SplitN(from, "@", 2)[0]

	var body strings.Builder
	body.WriteString(fmt.Sprintf("From: %q <%s>\r\n", fromName, from))
	body.WriteString("To: " + msg.To + "\r\n")
	body.WriteString("Subject: " + msg.Subject + "\r\n")
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", settings.SMTPUser, settings.SMTPPassword, settings.SMTPHost)

	return smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(body.String()))
}
