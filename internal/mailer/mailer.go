package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/anahisv/whisperbox-be/internal/config"
)

// Mailer delivers verification codes. The SMTP implementation is the only
// one in production; services depend on the interface so tests can stub
// delivery.
type Mailer interface {
	SendVerificationCode(to, username, code string) error
}

// SMTPMailer sends mail through a plain SMTP relay. STARTTLS is negotiated
// automatically when the server advertises it.
type SMTPMailer struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// New creates a new SMTPMailer with the embedded templates parsed.
func New(cfg config.SMTPConfig) (*SMTPMailer, error) {
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, templates: tmpl}, nil
}

// SendVerificationCode sends the one-time code to a freshly registered (or
// re-registered) account.
func (m *SMTPMailer) SendVerificationCode(to, username, code string) error {
	var buf bytes.Buffer
	err := m.templates.ExecuteTemplate(&buf, "verification", struct {
		Username string
		Code     string
		AppName  string
	}{username, code, m.cfg.FromName})
	if err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}
	return m.send(to, m.cfg.FromName+" - Verification Code", buf.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

const emailTemplates = `
{{define "verification"}}
<html>
  <body style="font-family: sans-serif;">
    <h2>Hello {{.Username}},</h2>
    <p>Thanks for signing up for {{.AppName}}. Use this code to verify your account:</p>
    <p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
    <p>The code expires in one hour. If you did not request this, you can ignore this email.</p>
  </body>
</html>
{{end}}
`
