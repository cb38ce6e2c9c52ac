package email

// internal/infrastructure/email/smtp_service.go
import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"course-payments/pkg/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
	SendReceiptEmail(ctx context.Context, data ReceiptEmailData) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	auth     smtp.Auth

	// swapped in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPEmailService sends unauthenticated mail when no username is configured (mailhog, mailpit).
func NewSMTPEmailService(cfg SMTPConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpEmailService{
		smtpAddr: cfg.Host + ":" + cfg.Port,
		smtpFrom: cfg.From,
		auth:     auth,
		send:     smtp.SendMail,
	}
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	contentType := "text/plain"
	if req.IsHTML {
		contentType = "text/html"
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s; charset=UTF-8\r\n\r\n%s",
		s.smtpFrom, strings.Join(req.To, ", "), req.Subject, contentType, req.Body))

	if err := s.send(s.smtpAddr, s.auth, s.smtpFrom, req.To, msg); err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        req.To,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) SendReceiptEmail(ctx context.Context, data ReceiptEmailData) error {
	return s.SendEmail(ctx, EmailRequest{
		To:      []string{data.Email},
		Subject: fmt.Sprintf("Payment receipt %s", data.Reference),
		Body:    RenderReceipt(data),
	})
}

// RenderReceipt builds the plain-text receipt body.
func RenderReceipt(data ReceiptEmailData) string {
	name := data.FullName
	if name == "" {
		name = data.Email
	}
	method := data.Method
	if method == "" {
		method = "-"
	}

	return fmt.Sprintf(`Hello %s,

Thank you for your payment. You are now enrolled in %s.

Reference: %s
Amount:    %s %s
Method:    %s
Paid at:   %s

Keep this email as your receipt.`,
		name, data.CourseTitle, data.Reference, data.Amount, data.Currency, method,
		data.PaidAt.UTC().Format(time.RFC1123))
}
