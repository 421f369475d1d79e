package handlers

import (
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesapp/internal/models"
	"notesapp/internal/services"
)

const testNoteID = "5d0c8a3e-7f5b-4c1a-a7a6-1f0e2d3c4b5a"

func notesRouter(svc *stubNotes) *gin.Engine {
	r := newTestRouter()
	h := NewNoteHandler(svc)
	g := r.Group("/api/notes", withTestUserID(testUserID))
	g.POST("/create", h.Create)
	g.GET("/all", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/export", h.Export)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func sampleNote() *models.Note {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Note{ID: testNoteID, UserID: testUserID, Name: "Groceries", CreatedAt: ts, UpdatedAt: ts}
}

func TestCreateNoteHandler(t *testing.T) {
	svc := &stubNotes{create: func(userID, name string) (*models.Note, error) {
		if name == "" {
			return nil, &services.ValidationError{}
		}
		n := sampleNote()
		n.UserID, n.Name = userID, name
		return n, nil
	}}
	r := notesRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/api/notes/create", map[string]string{"name": "Groceries"})
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Note created successfully", out["message"])
	note := out["note"].(map[string]any)
	assert.Equal(t, testNoteID, note["_id"])
	assert.Equal(t, testUserID, note["userId"])
	assert.Equal(t, "", note["content"])

	w = doJSON(t, r, http.MethodPost, "/api/notes/create", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name field is required", decode(t, w)["message"])
}

func TestListNotesHandler(t *testing.T) {
	svc := &stubNotes{list: func(userID string) ([]models.Note, error) {
		assert.Equal(t, testUserID, userID)
		return []models.Note{}, nil
	}}
	w := doJSON(t, notesRouter(svc), http.MethodGet, "/api/notes/all", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestGetNoteHandler(t *testing.T) {
	svc := &stubNotes{get: func(userID, noteID string) (*models.Note, error) {
		if noteID != testNoteID {
			return nil, services.ErrNotFound
		}
		return sampleNote(), nil
	}}
	r := notesRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/notes/"+testNoteID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Groceries", decode(t, w)["note"].(map[string]any)["name"])

	w = doJSON(t, r, http.MethodGet, "/api/notes/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Note not found", decode(t, w)["message"])
}

func TestUpdateNoteHandler(t *testing.T) {
	var content string
	svc := &stubNotes{update: func(userID, noteID, c string) (*models.Note, error) {
		if noteID != testNoteID {
			return nil, services.ErrNotFound
		}
		content = c
		return sampleNote(), nil
	}}
	r := notesRouter(svc)

	w := doJSON(t, r, http.MethodPut, "/api/notes/"+testNoteID, map[string]string{"content": "<p>hi</p>"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>hi</p>", content)
	assert.Equal(t, "Note saved", decode(t, w)["message"])

	w = doJSON(t, r, http.MethodPut, "/api/notes/other", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteNoteHandler(t *testing.T) {
	svc := &stubNotes{remove: func(userID, noteID string) error {
		if noteID != testNoteID {
			return services.ErrNotFound
		}
		return nil
	}}
	r := notesRouter(svc)

	w := doJSON(t, r, http.MethodDelete, "/api/notes/"+testNoteID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Note deleted successfully", decode(t, w)["message"])

	w = doJSON(t, r, http.MethodDelete, "/api/notes/other", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportNoteHandler(t *testing.T) {
	svc := &stubNotes{export: func(userID, noteID string, w io.Writer) (*models.Note, error) {
		if noteID != testNoteID {
			return nil, services.ErrNotFound
		}
		n := sampleNote()
		n.Name = "My notes / 2024"
		_, err := io.WriteString(w, "%PDF-1.3 fake")
		return n, err
	}}
	r := notesRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/api/notes/"+testNoteID+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="My_notes_2024.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/notes/other/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoteHandlerInternalError(t *testing.T) {
	svc := &stubNotes{list: func(string) ([]models.Note, error) { return nil, errors.New("db down") }}
	w := doJSON(t, notesRouter(svc), http.MethodGet, "/api/notes/all", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestNoteHandlerRequiresUser(t *testing.T) {
	r := newTestRouter()
	h := NewNoteHandler(&stubNotes{})
	r.GET("/api/notes/all", h.List)

	w := doJSON(t, r, http.MethodGet, "/api/notes/all", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPDFFilename(t *testing.T) {
	assert.Equal(t, "Report", pdfFilename("Report"))
	assert.Equal(t, "note", pdfFilename("Заметка"))
	assert.Equal(t, "a_b", pdfFilename("a / b"))
}
