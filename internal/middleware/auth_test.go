package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapp/internal/utils"
)

type stubSessions struct {
	alive map[string]bool
	err   error
}

func (s stubSessions) Exists(_ context.Context, userID string) (bool, error) {
	return s.alive[userID], s.err
}

func setupGate(tokens *utils.TokenManager, sessions SessionChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsAccessToken(t *testing.T) {
	tokens := utils.NewTokenManager("secret")
	userID := uuid.NewString()
	token, err := tokens.Issue(userID, "alice", utils.PurposeAccess, time.Hour)
	require.NoError(t, err)

	r := setupGate(tokens, stubSessions{alive: map[string]bool{userID: true}})
	w := doGet(r, "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tokens := utils.NewTokenManager("secret")
	userID := uuid.NewString()
	access, err := tokens.Issue(userID, "alice", utils.PurposeAccess, time.Hour)
	require.NoError(t, err)
	refresh, err := tokens.Issue(userID, "alice", utils.PurposeRefresh, time.Hour)
	require.NoError(t, err)
	foreign, err := utils.NewTokenManager("other").Issue(userID, "alice", utils.PurposeAccess, time.Hour)
	require.NoError(t, err)
	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(userID, "alice", utils.PurposeAccess, time.Hour)
	require.NoError(t, err)

	r := setupGate(tokens, nil)
	cases := map[string]string{
		"no header":     "",
		"no prefix":     access,
		"basic scheme":  "Basic " + access,
		"empty bearer":  "Bearer ",
		"garbage":       "Bearer abc.def.ghi",
		"refresh token": "Bearer " + refresh,
		"other secret":  "Bearer " + foreign,
		"expired":       "Bearer " + expired,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doGet(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestAuthMiddlewareSessionCheck(t *testing.T) {
	tokens := utils.NewTokenManager("secret")
	userID := uuid.NewString()
	token, err := tokens.Issue(userID, "alice", utils.PurposeAccess, time.Hour)
	require.NoError(t, err)

	w := doGet(setupGate(tokens, stubSessions{alive: map[string]bool{}}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(setupGate(tokens, stubSessions{err: errors.New("db down")}), "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// without session checking the token alone is enough
	w = doGet(setupGate(tokens, nil), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewarePassesPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.OPTIONS("/me", AuthMiddleware(utils.NewTokenManager("secret"), nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/me", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
