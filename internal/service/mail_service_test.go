package service

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xerp/xerp/internal/config"
)

func TestBuildOTPMessage(t *testing.T) {
	from, to, msg, err := buildOTPMessage("otp@xerp.example", "user@example.com", 482913)
	require.NoError(t, err)
	require.Equal(t, "otp@xerp.example", from)
	require.Equal(t, "user@example.com", to)
	require.Contains(t, string(msg), "Subject: Your OTP Code\r\n")
	require.Contains(t, string(msg), `From: "OTP Service" <otp@xerp.example>`)
	require.Contains(t, string(msg), "Your OTP is: 482913")
}

func TestBuildOTPMessage_InvalidAddresses(t *testing.T) {
	_, _, _, err := buildOTPMessage("otp@xerp.example", "not-an-address", 1)
	require.ErrorIs(t, err, ErrEmailBuild)

	_, _, _, err = buildOTPMessage("", "user@example.com", 1)
	require.ErrorIs(t, err, ErrEmailBuild)
}

func newTestMailer(send sendMailFunc) *SMTPMailer {
	m := NewSMTPMailer(&config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "otp@xerp.example",
		Password: "secret",
	}, quietLogger())
	m.sendMail = send
	return m
}

func TestSMTPMailer_SendOTP(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	m := newTestMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		return nil
	})

	require.NoError(t, m.SendOTP(context.Background(), "user@example.com", 123456))
	require.Equal(t, "smtp.example.com:587", gotAddr)
	require.Equal(t, "otp@xerp.example", gotFrom)
	require.Equal(t, []string{"user@example.com"}, gotTo)
}

func TestSMTPMailer_TransportFailure(t *testing.T) {
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	})

	err := m.SendOTP(context.Background(), "user@example.com", 123456)
	require.ErrorIs(t, err, ErrEmailSend)
	require.NotErrorIs(t, err, ErrEmailBuild)
}

func TestSMTPMailer_BuildFailureSkipsTransport(t *testing.T) {
	called := false
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	})

	err := m.SendOTP(context.Background(), "bogus", 123456)
	require.ErrorIs(t, err, ErrEmailBuild)
	require.False(t, called)
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendOTP(ctx, "user@example.com", 123456)
	require.ErrorIs(t, err, ErrEmailSend)
	require.ErrorIs(t, err, context.Canceled)
}
