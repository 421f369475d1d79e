package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"notesapp/internal/models"
	"notesapp/internal/repositories"
	"notesapp/internal/utils"
	"notesapp/internal/validation"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	VerifyRegistration(ctx context.Context, token string) error
	Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	// VerifyOTP consumes the pending code and returns a short-lived reset token.
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ChangePassword(ctx context.Context, email string, req models.ChangePasswordRequest) error
	Refresh(ctx context.Context, refreshToken string) (string, error)

	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type LoginResult struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

type AuthOptions struct {
	VerifyTokenTTL    time.Duration
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	ResetTokenTTL     time.Duration
	OTPTTL            time.Duration
	RequireResetToken bool
	EnforceSession    bool
	BcryptCost        int

	// Now defaults to time.Now.
	Now func() time.Time
}

type authService struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	emails   EmailService
	tokens   *utils.TokenManager
	opts     AuthOptions
	newOTP   func() (string, error)
}

func NewAuthService(
	users repositories.UserRepository,
	sessions repositories.SessionRepository,
	emails EmailService,
	tokens *utils.TokenManager,
	opts AuthOptions,
) AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:    users,
		sessions: sessions,
		emails:   emails,
		tokens:   tokens.WithClock(opts.Now),
		opts:     opts,
		newOTP:   utils.NewOTP,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, &ValidationError{Msg: "user already exists", Cause: ErrDuplicate}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	// токен хранится в той же транзакции, что и сам пользователь
	var token string
	err = s.users.Create(ctx, user, func(userID string) (string, error) {
		t, err := s.tokens.Issue(userID, user.Username, utils.PurposeVerify, s.opts.VerifyTokenTTL)
		token = t
		return t, err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{Msg: "user already exists", Cause: ErrDuplicate}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Token = &token

	if err := s.emails.SendVerificationEmail(user.Email, token); err != nil {
		// пользователь уже создан, письмо не критично
		log.Printf("[auth][register] warning: verification email to %s failed: %v", user.Email, err)
	}
	return user, nil
}

func (s *authService) VerifyRegistration(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, utils.PurposeVerify)
	if err != nil {
		return tokenErr(err)
	}
	if err := s.users.MarkVerified(ctx, claims.UserID); err != nil {
		return storeErr("mark verified", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("lookup user", err)
	}
	if !s.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid password", ErrAuth)
	}
	if !user.IsVerified {
		return nil, fmt.Errorf("%w: email not verified", ErrForbidden)
	}

	if _, err := s.sessions.Replace(ctx, user.ID); err != nil {
		return nil, storeErr("replace session", err)
	}

	access, err := s.tokens.Issue(user.ID, user.Username, utils.PurposeAccess, s.opts.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(user.ID, user.Username, utils.PurposeRefresh, s.opts.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetLoggedIn(ctx, user.ID, true); err != nil {
		return nil, storeErr("set logged in", err)
	}
	user.IsLoggedIn = true

	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Logout is idempotent: a user without sessions is still logged out.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if _, err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return storeErr("delete sessions", err)
	}
	if err := s.users.SetLoggedIn(ctx, userID, false); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("set logged out: %w", err)
	}
	return nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalid("email is required", validation.FieldError{Field: "email", Message: "email is required"})
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storeErr("lookup user", err)
	}

	otp, err := s.newOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := s.opts.Now().Add(s.opts.OTPTTL)
	if err := s.users.SetOTP(ctx, user.ID, otp, expiresAt); err != nil {
		return storeErr("store otp", err)
	}

	if err := s.emails.SendOTPEmail(user.Email, otp); err != nil {
		return err
	}
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return "", invalid("otp is required", validation.FieldError{Field: "otp", Message: "otp is required"})
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", storeErr("lookup user", err)
	}
	if !user.HasPendingOTP() {
		return "", ErrNoOTP
	}
	if s.opts.Now().After(*user.OTPExpiry) {
		return "", fmt.Errorf("%w: otp", ErrExpired)
	}
	if subtle.ConstantTimeCompare([]byte(*user.OTP), []byte(otp)) != 1 {
		return "", fmt.Errorf("%w: otp", ErrMismatch)
	}

	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return "", storeErr("clear otp", err)
	}

	resetToken, err := s.tokens.IssueStamped(user.ID, user.Username, utils.PurposeReset,
		s.opts.ResetTokenTTL, passwordStamp(user.PasswordHash))
	if err != nil {
		return "", err
	}
	return resetToken, nil
}

func (s *authService) ChangePassword(ctx context.Context, email string, req models.ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return &ValidationError{
			Msg:    "passwords do not match",
			Fields: []validation.FieldError{{Field: "confirmPassword", Message: "Passwords do not match"}},
			Cause:  ErrMismatch,
		}
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeErr("lookup user", err)
	}

	if s.opts.RequireResetToken {
		claims, err := s.tokens.Parse(req.ResetToken, utils.PurposeReset)
		if err != nil {
			return fmt.Errorf("%w: reset token: %v", ErrAuth, err)
		}
		if claims.UserID != user.ID {
			return fmt.Errorf("%w: reset token issued for another user", ErrAuth)
		}
		// после смены пароля штамп не совпадёт, токен одноразовый
		if subtle.ConstantTimeCompare([]byte(claims.Stamp), []byte(passwordStamp(user.PasswordHash))) != 1 {
			return fmt.Errorf("%w: reset token already used", ErrAuth)
		}
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.PasswordHash, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: password was changed concurrently", ErrAuth)
		}
		return storeErr("update password", err)
	}
	return nil
}

// passwordStamp fingerprints a password hash for reset tokens.
func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, utils.PurposeRefresh)
	if err != nil {
		return "", tokenErr(err)
	}
	if s.opts.EnforceSession {
		ok, err := s.sessions.Exists(ctx, claims.UserID)
		if err != nil {
			return "", fmt.Errorf("check session: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: no active session", ErrAuth)
		}
	}
	return s.tokens.Issue(claims.UserID, claims.Username, utils.PurposeAccess, s.opts.AccessTokenTTL)
}

func (s *authService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func tokenErr(err error) error {
	if errors.Is(err, utils.ErrTokenExpired) {
		return fmt.Errorf("%w: token", ErrExpired)
	}
	return fmt.Errorf("%w: %v", ErrAuth, err)
}
