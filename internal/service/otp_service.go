package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/config"
	"github.com/xerp/xerp/internal/models"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var (
	ErrOTPNotFound = errors.New("OTP not found")
	ErrOTPExpired  = errors.New("OTP expired")
)

// OTPStore persists issued codes.
type OTPStore interface {
	Add(ctx context.Context, code int32) (*models.OTP, error)
	FetchAll(ctx context.Context) ([]models.OTP, error)
	Delete(ctx context.Context, id int32) (int64, error)
}

type OTPService struct {
	store  OTPStore
	mailer Mailer
	cfg    *config.OTPConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewOTPService(store OTPStore, mailer Mailer, cfg *config.OTPConfig, logger *logrus.Logger) *OTPService {
	return &OTPService{
		store:  store,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SendLoginOTP mails a fresh code to email and stores it only after the mail
// went out.
func (s *OTPService) SendLoginOTP(ctx context.Context, email, mobile string) (*models.OTP, error) {
	code, err := generateRandomOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return nil, err
	}

	otp, err := s.store.Add(ctx, code)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"otp_id": otp.ID,
		"email":  email,
		"mobile": mobile,
	}).Info("OTP sent and stored")

	return otp, nil
}

// VerifyOTP consumes the first stored row containing code. The row is deleted
// whether the code is still valid or already expired.
func (s *OTPService) VerifyOTP(ctx context.Context, code int32) error {
	otps, err := s.store.FetchAll(ctx)
	if err != nil {
		return err
	}

	var match *models.OTP
	for i := range otps {
		if otps[i].Contains(code) {
			match = &otps[i]
			break
		}
	}
	if match == nil {
		return ErrOTPNotFound
	}

	expired := s.now().Sub(match.CreatedAt) > s.cfg.Expiry

	deleted, err := s.store.Delete(ctx, match.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		// Another request consumed the row first.
		return ErrOTPNotFound
	}

	if expired {
		return ErrOTPExpired
	}

	s.logger.WithField("otp_id", match.ID).Info("OTP verified")
	return nil
}

func generateRandomOTP() (int32, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, err
	}
	return int32(n.Int64() + otpMin), nil
}
