package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/models"
)

type AdminRepository struct {
	db     DBTX
	logger *logrus.Logger
}

func NewAdminRepository(db DBTX, logger *logrus.Logger) *AdminRepository {
	return &AdminRepository{
		db:     db,
		logger: logger,
	}
}

// LatestAdminCode returns the regcode of the most recently inserted admin.
// found is false when there are no admins.
func (r *AdminRepository) LatestAdminCode(ctx context.Context) (code string, found bool, err error) {
	err = r.db.QueryRow(ctx, "SELECT regcode FROM admins ORDER BY id DESC LIMIT 1").Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read latest admin code: %w", err)
	}
	return code, true, nil
}

func (r *AdminRepository) AdminExists(ctx context.Context, adminID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM admins WHERE id = $1)", adminID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}
	return exists, nil
}

// LatestSubUserCode returns the regcode of the newest sub-user under adminID
// whose code has a G followed later by a U.
func (r *AdminRepository) LatestSubUserCode(ctx context.Context, adminID int32) (code string, found bool, err error) {
	err = r.db.QueryRow(ctx,
		"SELECT regcode FROM admins_users WHERE regcode LIKE '%G%U%' AND admin_id = $1 ORDER BY id DESC LIMIT 1",
		adminID,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read latest sub-user code: %w", err)
	}
	return code, true, nil
}

func (r *AdminRepository) InsertAdmin(ctx context.Context, code, userName, mobile, email, pincode string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.QueryRow(ctx,
		`INSERT INTO admins (regcode, user_name, mobile, email, pincode)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, regcode, user_name, mobile, email, pincode`,
		code, userName, mobile, email, pincode,
	).Scan(&admin.ID, &admin.RegCode, &admin.UserName, &admin.Mobile, &admin.Email, &admin.Pincode)
	if err != nil {
		r.logger.WithError(err).WithField("regcode", code).Error("Failed to insert admin")
		return nil, wrapInsertErr("admin", err)
	}

	return &admin, nil
}

func (r *AdminRepository) InsertAdminUser(ctx context.Context, adminID int32, code, userName, mobile, email, pincode string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.QueryRow(ctx,
		`INSERT INTO admins_users (regcode, admin_id, user_name, mobile, email, pincode)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, admin_id, regcode, user_name, mobile, email, pincode`,
		code, adminID, userName, mobile, email, pincode,
	).Scan(&user.ID, &user.AdminID, &user.RegCode, &user.UserName, &user.Mobile, &user.Email, &user.Pincode)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"admin_id": adminID,
			"regcode":  code,
		}).Error("Failed to insert admin user")
		return nil, wrapInsertErr("admin user", err)
	}

	return &user, nil
}
