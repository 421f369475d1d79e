package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notesapp/internal/dbx"
	"notesapp/internal/models"
)

// IssueFunc produces the verification token for a freshly inserted user.
type IssueFunc func(userID string) (string, error)

type UserRepository interface {
	// Create inserts the user and, when issue is set, stores the token it
	// returns. Either both land or neither does.
	Create(ctx context.Context, user *models.User, issue IssueFunc) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// verification
	MarkVerified(ctx context.Context, userID string) error

	SetLoggedIn(ctx context.Context, userID string, loggedIn bool) error

	// password reset
	SetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID string) error
	// UpdatePassword swaps the hash only while it still equals oldHash.
	UpdatePassword(ctx context.Context, userID, oldHash, newHash string) error

	Ping(ctx context.Context) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, username, email, password_hash, is_verified, token, is_logged_in,
	otp, otp_expiry, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *models.User, issue IssueFunc) error {
	const q = `
		INSERT INTO users (id, username, email, password_hash, is_verified, token, is_logged_in)
		VALUES ($1, $2, $3, $4, FALSE, NULL, FALSE)
		RETURNING created_at, updated_at
	`
	user.ID = uuid.NewString()
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, q, user.ID, user.Username, user.Email, user.PasswordHash).
			Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert user: %w", err)
		}
		user.IsVerified = false
		user.IsLoggedIn = false
		if issue == nil {
			return nil
		}

		token, err := issue(user.ID)
		if err != nil {
			return fmt.Errorf("issue verification token: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET token=$1 WHERE id=$2`, token, user.ID); err != nil {
			return fmt.Errorf("store verification token: %w", err)
		}
		user.Token = &token
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, q string, arg any) (*models.User, error) {
	u := &models.User{}
	var (
		token     sql.NullString
		otp       sql.NullString
		otpExpiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsVerified, &token, &u.IsLoggedIn,
		&otp, &otpExpiry, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	if token.Valid {
		s := token.String
		u.Token = &s
	}
	// OTP считается выданным только если есть и код, и срок
	if otp.Valid && otpExpiry.Valid {
		s, t := otp.String, otpExpiry.Time
		u.OTP = &s
		u.OTPExpiry = &t
	}
	return u, nil
}

func (r *userRepository) MarkVerified(ctx context.Context, userID string) error {
	return r.exec(ctx, `UPDATE users SET is_verified=TRUE, token=NULL, updated_at=NOW() WHERE id=$1`, userID)
}

func (r *userRepository) SetLoggedIn(ctx context.Context, userID string, loggedIn bool) error {
	return r.exec(ctx, `UPDATE users SET is_logged_in=$1, updated_at=NOW() WHERE id=$2`, loggedIn, userID)
}

func (r *userRepository) SetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error {
	return r.exec(ctx, `UPDATE users SET otp=$1, otp_expiry=$2, updated_at=NOW() WHERE id=$3`, otp, expiresAt, userID)
}

func (r *userRepository) ClearOTP(ctx context.Context, userID string) error {
	return r.exec(ctx, `UPDATE users SET otp=NULL, otp_expiry=NULL, updated_at=NOW() WHERE id=$1`, userID)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, oldHash, newHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash=$1, updated_at=NOW() WHERE password_hash=$2 AND id=$3`,
		newHash, oldHash, userID)
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// exec runs an UPDATE whose last argument is the user id.
func (r *userRepository) exec(ctx context.Context, q string, args ...any) error {
	if id, ok := args[len(args)-1].(string); ok && !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
