package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, username, email, mobile string) (*models.User, error)
}

type AdminStore interface {
	InsertAdmin(ctx context.Context, code, userName, mobile, email, pincode string) (*models.Admin, error)
	InsertAdminUser(ctx context.Context, adminID int32, code, userName, mobile, email, pincode string) (*models.AdminUser, error)
}

// CodeIssuer hands out registration codes.
type CodeIssuer interface {
	GenerateAdminCode(ctx context.Context) (string, error)
	GenerateSubUserCode(ctx context.Context, adminID int32) (string, CodeOutcome, error)
}

// CodeError marks a failure while generating a registration code, as opposed
// to a failure storing the registrant.
type CodeError struct {
	Err error
}

func (e *CodeError) Error() string { return e.Err.Error() }

func (e *CodeError) Unwrap() error { return e.Err }

type AdminInput struct {
	UserName string
	Mobile   string
	Email    string
	Pincode  string
}

type RegistrationService struct {
	users  UserStore
	admins AdminStore
	codes  CodeIssuer
	logger *logrus.Logger
}

func NewRegistrationService(users UserStore, admins AdminStore, codes CodeIssuer, logger *logrus.Logger) *RegistrationService {
	return &RegistrationService{
		users:  users,
		admins: admins,
		codes:  codes,
		logger: logger,
	}
}

func (s *RegistrationService) RegisterUser(ctx context.Context, username, email, mobile string) (*models.User, error) {
	return s.users.Create(ctx, username, email, mobile)
}

func (s *RegistrationService) CreateAdmin(ctx context.Context, in AdminInput) (*models.Admin, error) {
	code, err := s.codes.GenerateAdminCode(ctx)
	if err != nil {
		return nil, &CodeError{Err: err}
	}

	admin, err := s.admins.InsertAdmin(ctx, code, in.UserName, in.Mobile, in.Email, in.Pincode)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"regcode":  admin.RegCode,
	}).Info("Admin registered")
	return admin, nil
}

// CreateAdminUser registers a sub-user under adminID. When no code can be
// derived the sub-user is still stored with an empty regcode.
func (s *RegistrationService) CreateAdminUser(ctx context.Context, adminID int32, in AdminInput) (*models.AdminUser, error) {
	code, outcome, err := s.codes.GenerateSubUserCode(ctx, adminID)
	if err != nil {
		return nil, &CodeError{Err: err}
	}
	if outcome != CodeIssued {
		s.logger.WithFields(logrus.Fields{
			"admin_id": adminID,
			"outcome":  outcome.String(),
		}).Warn("No sub-user code derived, storing empty regcode")
	}

	user, err := s.admins.InsertAdminUser(ctx, adminID, code, in.UserName, in.Mobile, in.Email, in.Pincode)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"admin_id":      adminID,
		"admin_user_id": user.ID,
		"regcode":       user.RegCode,
	}).Info("Admin user registered")
	return user, nil
}
