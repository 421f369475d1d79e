package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"notesapp/internal/models"
)

// NoteRepository scopes every lookup by (note id, owner id).
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	ListByUser(ctx context.Context, userID string) ([]models.Note, error)
	Get(ctx context.Context, id, userID string) (*models.Note, error)
	UpdateContent(ctx context.Context, id, userID, content string) (*models.Note, error)
	Delete(ctx context.Context, id, userID string) error
}

type noteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	const q = `
		INSERT INTO notes (id, user_id, name, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	note.ID = uuid.NewString()
	if err := r.db.QueryRowContext(ctx, q, note.ID, note.UserID, note.Name, note.Content).
		Scan(&note.CreatedAt, &note.UpdatedAt); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]models.Note, error) {
	notes := []models.Note{}
	if !validID(userID) {
		return notes, nil
	}
	const q = `
		SELECT id, user_id, name, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Get(ctx context.Context, id, userID string) (*models.Note, error) {
	if !validID(id) || !validID(userID) {
		return nil, ErrNotFound
	}
	const q = `
		SELECT id, user_id, name, content, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2`
	return scanNote(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *noteRepository) UpdateContent(ctx context.Context, id, userID, content string) (*models.Note, error) {
	if !validID(id) || !validID(userID) {
		return nil, ErrNotFound
	}
	const q = `
		UPDATE notes SET content = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, content, created_at, updated_at`
	return scanNote(r.db.QueryRowContext(ctx, q, content, id, userID))
}

func (r *noteRepository) Delete(ctx context.Context, id, userID string) error {
	if !validID(id) || !validID(userID) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNote(row *sql.Row) (*models.Note, error) {
	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.UserID, &n.Name, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select note: %w", err)
	}
	return n, nil
}
