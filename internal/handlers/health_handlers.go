package handlers

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

// DBProbe runs the connectivity query. *pgxpool.Pool satisfies it.
type DBProbe interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type HealthHandlers struct {
	db     DBProbe
	logger *logrus.Logger
}

func NewHealthHandlers(db DBProbe, logger *logrus.Logger) *HealthHandlers {
	return &HealthHandlers{
		db:     db,
		logger: logger,
	}
}

// CheckDatabase runs SELECT 1 against db.
func CheckDatabase(ctx context.Context, db DBProbe) error {
	_, err := db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Hello from Axum!"})
}

func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := CheckDatabase(r.Context(), h.db); err != nil {
		h.logger.WithError(err).Warn("Health check failed")
		respondWithJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Postgres error: " + err.Error()})
		return
	}
	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "✅ Database connection successful"})
}
