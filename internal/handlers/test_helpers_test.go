package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"notesapp/internal/middleware"
	"notesapp/internal/models"
	"notesapp/internal/services"
)

const testUserID = "0b9a3a8e-3c1e-4c52-9d59-6f4f3c1d2a10"

type stubAuth struct {
	services.AuthService // nil: unexpected calls panic

	register       func(models.RegisterRequest) (*models.User, error)
	verify         func(token string) error
	login          func(models.LoginRequest) (*services.LoginResult, error)
	logout         func(userID string) error
	resetRequest   func(email string) error
	verifyOTP      func(email, otp string) (string, error)
	changePassword func(email string, req models.ChangePasswordRequest) error
	refresh        func(token string) (string, error)
}

func (s *stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	return s.register(req)
}

func (s *stubAuth) VerifyRegistration(_ context.Context, token string) error {
	return s.verify(token)
}

func (s *stubAuth) Login(_ context.Context, req models.LoginRequest) (*services.LoginResult, error) {
	return s.login(req)
}

func (s *stubAuth) Logout(_ context.Context, userID string) error {
	return s.logout(userID)
}

func (s *stubAuth) RequestPasswordReset(_ context.Context, email string) error {
	return s.resetRequest(email)
}

func (s *stubAuth) VerifyOTP(_ context.Context, email, otp string) (string, error) {
	return s.verifyOTP(email, otp)
}

func (s *stubAuth) ChangePassword(_ context.Context, email string, req models.ChangePasswordRequest) error {
	return s.changePassword(email, req)
}

func (s *stubAuth) Refresh(_ context.Context, token string) (string, error) {
	return s.refresh(token)
}

type stubNotes struct {
	services.NoteService

	create func(userID, name string) (*models.Note, error)
	list   func(userID string) ([]models.Note, error)
	get    func(userID, noteID string) (*models.Note, error)
	update func(userID, noteID, content string) (*models.Note, error)
	remove func(userID, noteID string) error
	export func(userID, noteID string, w io.Writer) (*models.Note, error)
}

func (s *stubNotes) Create(_ context.Context, userID, name string) (*models.Note, error) {
	return s.create(userID, name)
}

func (s *stubNotes) List(_ context.Context, userID string) ([]models.Note, error) {
	return s.list(userID)
}

func (s *stubNotes) Get(_ context.Context, userID, noteID string) (*models.Note, error) {
	return s.get(userID, noteID)
}

func (s *stubNotes) Update(_ context.Context, userID, noteID, content string) (*models.Note, error) {
	return s.update(userID, noteID, content)
}

func (s *stubNotes) Delete(_ context.Context, userID, noteID string) error {
	return s.remove(userID, noteID)
}

func (s *stubNotes) Export(_ context.Context, userID, noteID string, w io.Writer) (*models.Note, error) {
	return s.export(userID, noteID, w)
}

func withTestUserID(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
