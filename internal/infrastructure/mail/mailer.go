// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	dialTimeout    = 8 * time.Second
	sessionTimeout = 15 * time.Second
	verifySubject  = "Confirm your BizHub account"
)

var verifyTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
<p>Welcome to BizHub.</p>
<p>Confirm your email address to start using your account:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>This link expires at {{.ExpiresAt}}.</p>
</body>
</html>`))

// Transport delivers a fully formed message
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// Mailer renders and sends account email
type Mailer struct {
	transport     Transport
	from          string
	fromName      string
	verifyBaseURL string
	logger        *zap.Logger
}

func NewMailer(cfg config.SMTPConfig, transport Transport, logger *zap.Logger) *Mailer {
	return &Mailer{
		transport:     transport,
		from:          cfg.From,
		fromName:      cfg.FromName,
		verifyBaseURL: cfg.VerifyBaseURL,
		logger:        logger,
	}
}

// SendVerification mails the verification link for token
func (m *Mailer) SendVerification(ctx context.Context, to, token string, expiresAt time.Time) error {
	link := m.verifyBaseURL + "?token=" + url.QueryEscape(token)

	var body bytes.Buffer
	if err := verifyTemplate.Execute(&body, map[string]string{
		"Link":      link,
		"ExpiresAt": expiresAt.UTC().Format("15:04 MST, 2 Jan 2006"),
	}); err != nil {
		return fmt.Errorf("render verification mail: %w", err)
	}

	msg := m.compose(to, verifySubject, body.String())
	if err := m.transport.Send(ctx, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	m.logger.Info("Verification mail sent", zap.String("to", to))
	return nil
}

func (m *Mailer) compose(to, subject, html string) []byte {
	from := m.from
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.fromName), m.from)
	}
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		html,
	}, "\r\n"))
}

// SMTPTransport sends through an SMTP relay with STARTTLS when offered
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{host: cfg.Host, port: cfg.Port, username: cfg.Username, password: cfg.Password}
}

func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(sessionTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: t.host}); err != nil {
			return err
		}
	}
	if t.username != "" {
		if err := c.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
