package utils

import (
	"fmt"
	"strconv"

	"study-abroad-backend/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Initialize the SMTP mailer once and store it in a global variable
var mailer *gomail.Dialer

var mailFrom string

// InitializeMailer sets up the mailer using environment variables
func InitializeMailer() {
	mailHost := config.GetEnv("SMTP_HOST")
	mailPort := config.GetEnvDefault("SMTP_PORT", "587")
	mailUser := config.GetEnv("SMTP_USER")
	mailPassword := config.GetEnv("SMTP_PASSWORD")
	mailFrom = config.GetEnvDefault("SMTP_FROM", mailUser)

	port, err := strconv.Atoi(mailPort)
	if err != nil {
		config.Logger.Error("Invalid SMTP_PORT value, defaulting to port 25",
			zap.String("provided_port", mailPort),
			zap.Error(err),
		)
		port = 25
	}

	mailer = gomail.NewDialer(mailHost, port, mailUser, mailPassword)
	config.Logger.Info("Mailer initialized successfully", zap.String("host", mailHost), zap.Int("port", port))
}

// GetMailer returns the initialized mailer
func GetMailer() *gomail.Dialer {
	return mailer
}

// BuildEmail assembles the message without sending it.
func BuildEmail(to, subject, htmlBody, textBody, attachmentPath string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", mailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}
	if attachmentPath != "" {
		m.Attach(attachmentPath)
	}
	return m
}

// SendEmail sends an HTML message with a plain-text fallback and an optional
// attachment.
func SendEmail(to, subject, htmlBody, textBody, attachmentPath string) error {
	if mailer == nil {
		err := fmt.Errorf("mailer is not initialized")
		config.Logger.Error("Email send failed: mailer is not initialized",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}

	m := BuildEmail(to, subject, htmlBody, textBody, attachmentPath)
	if err := mailer.DialAndSend(m); err != nil {
		config.Logger.Error("Failed to send email via SMTP",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Bool("has_attachment", attachmentPath != ""),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	config.Logger.Info("Email sent successfully",
		zap.String("to_email", to),
		zap.String("subject", subject),
	)
	return nil
}
