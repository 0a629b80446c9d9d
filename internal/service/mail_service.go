package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/config"
)

var (
	ErrEmailBuild = errors.New("failed to create email message")
	ErrEmailSend  = errors.New("failed to send email")
)

// Mailer delivers OTP codes.
type Mailer interface {
	SendOTP(ctx context.Context, to string, code int32) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain text OTP mails through an authenticated relay.
// smtp.SendMail upgrades with STARTTLS when the relay offers it.
type SMTPMailer struct {
	cfg      *config.SMTPConfig
	logger   *logrus.Logger
	sendMail sendMailFunc
}

func NewSMTPMailer(cfg *config.SMTPConfig, logger *logrus.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:      cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to string, code int32) error {
	from, recipient, msg, err := buildOTPMessage(m.cfg.User, to, code)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailSend, err)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := m.sendMail(addr, auth, from, []string{recipient}, msg); err != nil {
		m.logger.WithError(err).WithField("smtp_host", m.cfg.Host).Error("SMTP delivery failed")
		return fmt.Errorf("%w: %w", ErrEmailSend, err)
	}

	return nil
}

// buildOTPMessage validates both addresses and renders the RFC 5322 message.
func buildOTPMessage(sender, to string, code int32) (from, recipient string, msg []byte, err error) {
	fromAddr, err := mail.ParseAddress(sender)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: invalid sender %q: %w", ErrEmailBuild, sender, err)
	}
	toAddr, err := mail.ParseAddress(to)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: invalid recipient %q: %w", ErrEmailBuild, to, err)
	}
	fromAddr.Name = "OTP Service"

	var sb strings.Builder
	sb.WriteString("From: " + fromAddr.String() + "\r\n")
	sb.WriteString("To: " + toAddr.String() + "\r\n")
	sb.WriteString("Subject: Your OTP Code\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Your OTP is: %d\r\n", code))

	return fromAddr.Address, toAddr.Address, []byte(sb.String()), nil
}
