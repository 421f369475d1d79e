package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"notesapp/internal/models"
)

type SessionRepository interface {
	// Replace overwrites any session of the user with a fresh one.
	Replace(ctx context.Context, userID string) (*models.Session, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Replace(ctx context.Context, userID string) (*models.Session, error) {
	if !validID(userID) {
		return nil, ErrNotFound
	}
	// один upsert: параллельные логины не упираются в UNIQUE(user_id)
	const q = `
		INSERT INTO sessions (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET id = EXCLUDED.id, created_at = NOW()
		RETURNING created_at
	`
	s := &models.Session{ID: uuid.NewString(), UserID: userID}
	if err := r.db.QueryRowContext(ctx, q, s.ID, s.UserID).Scan(&s.CreatedAt); err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}
	return s, nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if !validID(userID) {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *sessionRepository) Exists(ctx context.Context, userID string) (bool, error) {
	if !validID(userID) {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE user_id = $1)`, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("select session: %w", err)
	}
	return ok, nil
}
