package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/threatcombat/threatcombat/internal/api/domain"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// BaseURL is the public frontend origin used to build verification and
	// reset links, e.g. "https://app.threatcombat.org".
	BaseURL string
}

// SMTPNotifier delivers mail through a plain SMTP relay using AUTH PLAIN.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) VerificationEmail(ctx context.Context, to domain.User, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", n.cfg.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nVerify your email address to activate your account:\r\n\r\n%s\r\n\r\nThe link expires in 24 hours.\r\n",
		to.Name, link)
	return n.send(ctx, to.Email, "Verify your email address", body)
}

func (n *SMTPNotifier) PasswordResetEmail(ctx context.Context, to domain.User, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", n.cfg.BaseURL, token)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nA password reset was requested for your account. If this was you, set a new password here:\r\n\r\n%s\r\n\r\nThe link expires in 1 hour. If you did not request this, ignore this message.\r\n",
		to.Name, link)
	return n.send(ctx, to.Email, "Reset your password", body)
}

func (n *SMTPNotifier) RoleChanged(ctx context.Context, to domain.User, previous domain.Role) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour role was changed from %s to %s. If you believe this is a mistake, contact your chapter admin.\r\n",
		to.Name, previous, to.Role)
	return n.send(ctx, to.Email, "Your role has changed", body)
}

func (n *SMTPNotifier) WelcomeEmail(ctx context.Context, to domain.User) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome aboard. Your registration was received and your chapter admin will activate your membership shortly.\r\n",
		to.Name)
	return n.send(ctx, to.Email, "Welcome to ThreatCombat", body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
