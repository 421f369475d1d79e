package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"notesapp/internal/middleware"
	"notesapp/internal/models"
	"notesapp/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// @Summary      Регистрация
// @Description  Создаёт неподтверждённого пользователя и отправляет письмо со ссылкой подтверждения
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Данные пользователя"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]interface{}
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, "[auth][register]", &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][register]", err,
			errCase{services.ErrDuplicate, http.StatusBadRequest, "User already exists..."},
			errCase{services.ErrValidation, http.StatusBadRequest, ""},
		)
		return
	}
	log.Printf("[auth][register] created user id=%s", user.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully...",
		"data":    user,
	})
}

// @Summary      Подтверждение почты
// @Description  Принимает токен из письма в заголовке Authorization: Bearer <token>
// @Tags         Auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer <verification token>"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Authorization token is invalid or missing..."})
		return
	}

	if err := h.authService.VerifyRegistration(c.Request.Context(), token); err != nil {
		respondError(c, "[auth][verify]", err,
			errCase{services.ErrExpired, http.StatusBadRequest, "The registration token has expired..."},
			errCase{services.ErrAuth, http.StatusBadRequest, "Token verification failed"},
			errCase{services.ErrNotFound, http.StatusNotFound, "User not found"},
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully.."})
}

// @Summary      Вход в систему
// @Description  Заменяет сессию пользователя и возвращает access/refresh токены
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Failure      402    {object}  map[string]interface{}
// @Failure      403    {object}  map[string]interface{}
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, "[auth][login]", &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][login]", err,
			errCase{services.ErrValidation, http.StatusBadRequest, "All fields are required..."},
			errCase{services.ErrNotFound, http.StatusUnauthorized, "User Does not exists"},
			errCase{services.ErrAuth, http.StatusPaymentRequired, "Invalid password"},
			errCase{services.ErrForbidden, http.StatusForbidden, "Verify your email and login"},
		)
		return
	}
	log.Printf("[auth][login] success userID=%s", res.User.ID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Welcome back " + res.User.Username,
		"userdata": res,
	})
}

// @Summary      Выход
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, "[auth][logout]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully..."})
}

// @Summary      Обновление access токена
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshRequest  true  "Refresh token"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, "[auth][refresh]", &req) {
		return
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Refresh token is required"})
		return
	}

	access, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, "[auth][refresh]", err,
			errCase{services.ErrExpired, http.StatusUnauthorized, "Refresh token has expired, please login again"},
			errCase{services.ErrAuth, http.StatusUnauthorized, "Invalid refresh token"},
		)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": access})
}

// @Summary      Запрос OTP для сброса пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ForgetPasswordRequest  true  "Email"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      402   {object}  map[string]interface{}
// @Router       /api/auth/forget-password [post]
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req models.ForgetPasswordRequest
	if !bindJSON(c, "[auth][forget-password]", &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, "[auth][forget-password]", err,
			errCase{services.ErrValidation, http.StatusPaymentRequired, "Email field is required"},
			errCase{services.ErrNotFound, http.StatusUnauthorized, "User not found.."},
		)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully.."})
}

// @Summary      Проверка OTP
// @Description  При успехе возвращает resetToken для смены пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        email  path      string                   true  "Email"
// @Param        body   body      models.VerifyOTPRequest  true  "OTP"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Router       /api/auth/verify-otp/{email} [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if !bindJSON(c, "[auth][verify-otp]", &req) {
		return
	}

	resetToken, err := h.authService.VerifyOTP(c.Request.Context(), c.Param("email"), req.OTP)
	if err != nil {
		respondError(c, "[auth][verify-otp]", err,
			errCase{services.ErrValidation, http.StatusBadRequest, "OTP is required.."},
			errCase{services.ErrNotFound, http.StatusNotFound, "User not found.."},
			errCase{services.ErrExpired, http.StatusUnauthorized, "OTP has expired.."},
			errCase{services.ErrMismatch, http.StatusBadRequest, "Invalid OTP.."},
			errCase{services.ErrAuth, http.StatusUnauthorized, "OTP is not generated or Already verified.."},
		)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "OTP verified successfully",
		"resetToken": resetToken,
	})
}

// @Summary      Смена пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        email  path      string                        true  "Email"
// @Param        body   body      models.ChangePasswordRequest  true  "Новый пароль и resetToken"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Router       /api/auth/change-password/{email} [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, "[auth][change-password]", &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), c.Param("email"), req); err != nil {
		respondError(c, "[auth][change-password]", err,
			errCase{services.ErrMismatch, http.StatusBadRequest, "Password do not match"},
			errCase{services.ErrValidation, http.StatusBadRequest, "All fields are required"},
			errCase{services.ErrNotFound, http.StatusNotFound, "User not found.."},
			errCase{services.ErrAuth, http.StatusUnauthorized, "Reset token is invalid or expired, verify the OTP again"},
		)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully.."})
}
