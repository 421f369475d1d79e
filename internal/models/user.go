package models

import "time"

type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // не отдаём наружу
	IsVerified   bool   `json:"isVerified"`
	IsLoggedIn   bool   `json:"isLoggedIn"`

	// одноразовый токен подтверждения почты
	Token *string `json:"-"`

	// OTP для сброса пароля: оба поля либо заданы, либо NULL
	OTP       *string    `json:"-"`
	OTPExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPendingOTP reports whether a reset code is waiting to be verified.
func (u *User) HasPendingOTP() bool {
	return u.OTP != nil && u.OTPExpiry != nil
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp" validate:"required"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	ResetToken      string `json:"resetToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
