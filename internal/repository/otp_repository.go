package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/models"
)

type OTPRepository struct {
	db     DBTX
	logger *logrus.Logger
}

func NewOTPRepository(db DBTX, logger *logrus.Logger) *OTPRepository {
	return &OTPRepository{
		db:     db,
		logger: logger,
	}
}

// Add stores a new OTP row holding a single code.
func (r *OTPRepository) Add(ctx context.Context, code int32) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.QueryRow(ctx,
		"INSERT INTO otp (otp) VALUES (ARRAY[$1::int4]) RETURNING id, otp, created_at",
		code,
	).Scan(&otp.ID, &otp.Codes, &otp.CreatedAt)
	if err != nil {
		r.logger.WithError(err).Error("Failed to store OTP")
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	return &otp, nil
}

// FetchAll returns every stored OTP row, oldest first.
func (r *OTPRepository) FetchAll(ctx context.Context) ([]models.OTP, error) {
	rows, err := r.db.Query(ctx, "SELECT id, otp, created_at FROM otp ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch OTPs: %w", err)
	}

	otps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OTP, error) {
		var otp models.OTP
		err := row.Scan(&otp.ID, &otp.Codes, &otp.CreatedAt)
		return otp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan OTPs: %w", err)
	}

	return otps, nil
}

// Delete removes one OTP row and reports how many rows went away.
func (r *OTPRepository) Delete(ctx context.Context, id int32) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM otp WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete OTP: %w", err)
	}

	return tag.RowsAffected(), nil
}
