package repository

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/models"
)

type UserRepository struct {
	db     DBTX
	logger *logrus.Logger
}

func NewUserRepository(db DBTX, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a registrant. A clash on email or mobile returns an error
// matching ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, username, email, mobile string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx,
		"INSERT INTO registration (username, email, mobile) VALUES ($1, $2, $3) RETURNING id, username, email, mobile",
		username, email, mobile,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Mobile)
	if err != nil {
		err = wrapInsertErr("user", err)
		if !errors.Is(err, ErrDuplicate) {
			r.logger.WithError(err).Error("Failed to create user")
		}
		return nil, err
	}

	return &user, nil
}
