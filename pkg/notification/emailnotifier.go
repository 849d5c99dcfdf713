package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

//go:embed templates/email/*.tmpl
var templateFiles embed.FS

type message struct {
	subject  string
	template string
}

var messages = map[Kind]message{
	KindEmailVerify:   {subject: "Confirm your email", template: "templates/email/verify_email.tmpl"},
	KindPasswordReset: {subject: "Reset your password", template: "templates/email/password_reset.tmpl"},
	KindEmailChange:   {subject: "Confirm your new email", template: "templates/email/email_change.tmpl"},
	KindTwoFactor:     {subject: "2FA Code", template: "templates/email/two_factor.tmpl"},
}

// confirmation page paths, relative to the base URL
var linkPaths = map[Kind]string{
	KindEmailVerify:   "/auth/new-verification",
	KindPasswordReset: "/auth/new-password",
	KindEmailChange:   "/auth/new-email",
}

// EmailNotifier delivers verification tokens by email over SMTP
type EmailNotifier struct {
	config  SMTPConfig
	client  *mail.Client
	baseURL string
}

// NewEmailNotifier creates an email notifier. baseURL is the public address
// confirmation links point at.
func NewEmailNotifier(config SMTPConfig, baseURL string) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if !config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	slog.Info("Creating mail client", "host", config.Host, "port", config.Port)
	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	return &EmailNotifier{config: config, client: client, baseURL: baseURL}, nil
}

// Notify sends the message for kind to the recipient
func (e *EmailNotifier) Notify(ctx context.Context, kind Kind, recipient, token string) error {
	msg, ok := messages[kind]
	if !ok {
		return fmt.Errorf("no message registered for notification kind: %s", kind)
	}

	body, err := e.renderBody(kind, token)
	if err != nil {
		return err
	}

	m := mail.NewMsg()
	if err := m.From(e.config.From); err != nil {
		slog.Error("Failed to set from address", "err", err)
		return err
	}
	if err := m.To(recipient); err != nil {
		slog.Error("Failed to set to address", "err", err)
		return err
	}
	m.Subject(msg.subject)
	m.SetBodyString(mail.TypeTextHTML, body)

	if err := e.client.DialAndSendWithContext(ctx, m); err != nil {
		slog.Error("Failed to send email", "kind", kind, "err", err)
		return err
	}

	slog.Info("Email sent", "kind", kind, "to", recipient)
	return nil
}

func (e *EmailNotifier) renderBody(kind Kind, token string) (string, error) {
	msg := messages[kind]

	content, err := templateFiles.ReadFile(msg.template)
	if err != nil {
		slog.Error("Failed to read template file", "template", msg.template, "err", err)
		return "", err
	}

	tmpl, err := template.New(string(kind)).Parse(string(content))
	if err != nil {
		slog.Error("Failed to parse template", "template", msg.template, "err", err)
		return "", err
	}

	data := map[string]string{"Code": token}
	if path, ok := linkPaths[kind]; ok {
		data["Link"] = fmt.Sprintf("%s%s?token=%s", e.baseURL, path, url.QueryEscape(token))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to execute template", "template", msg.template, "err", err)
		return "", err
	}
	return buf.String(), nil
}
