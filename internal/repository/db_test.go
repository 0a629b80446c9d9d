package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestWrapInsertErr(t *testing.T) {
	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "registration_email_key"}
		err := wrapInsertErr("user", fmt.Errorf("query: %w", pgErr))
		require.ErrorIs(t, err, ErrDuplicate)

		var got *pgconn.PgError
		require.True(t, errors.As(err, &got))
		require.Equal(t, "registration_email_key", got.ConstraintName)
	})

	t.Run("other database errors stay generic", func(t *testing.T) {
		err := wrapInsertErr("user", &pgconn.PgError{Code: "23502"})
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrDuplicate)
	})

	t.Run("non driver errors stay generic", func(t *testing.T) {
		err := wrapInsertErr("admin", errors.New("connection reset"))
		require.NotErrorIs(t, err, ErrDuplicate)
		require.Contains(t, err.Error(), "failed to create admin")
	})
}

// newTestPool connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests using it are skipped when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set (skipping postgres tests)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE admins_users, admins, otp, registration RESTART IDENTITY")
	require.NoError(t, err)
	return pool
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
