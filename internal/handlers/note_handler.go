package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"notesapp/internal/models"
	"notesapp/internal/services"
)

type NoteHandler struct {
	service services.NoteService
}

func NewNoteHandler(service services.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

var notFound = errCase{services.ErrNotFound, http.StatusNotFound, "Note not found"}

// @Summary      Создать заметку
// @Tags         Notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.CreateNoteRequest  true  "Название"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /api/notes/create [post]
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.CreateNoteRequest
	if !bindJSON(c, "[notes][create]", &req) {
		return
	}

	note, err := h.service.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, "[notes][create]", err,
			errCase{services.ErrValidation, http.StatusBadRequest, "Name field is required"},
		)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Note created successfully",
		"note":    note,
	})
}

// @Summary      Все заметки пользователя
// @Description  Новые сверху
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /api/notes/all [get]
func (h *NoteHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	notes, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "[notes][list]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": notes})
}

// @Summary      Получить заметку
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID заметки"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	note, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, "[notes][get]", err, notFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "note": note})
}

// @Summary      Сохранить текст заметки
// @Tags         Notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "ID заметки"
// @Param        body  body      models.UpdateNoteRequest  true  "HTML-текст"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.UpdateNoteRequest
	if !bindJSON(c, "[notes][update]", &req) {
		return
	}

	if _, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req.Content); err != nil {
		respondError(c, "[notes][update]", err, notFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Note saved"})
}

// @Summary      Удалить заметку
// @Tags         Notes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID заметки"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, "[notes][delete]", err, notFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Note deleted successfully"})
}

// @Summary      Экспорт заметки в PDF
// @Tags         Notes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path      string  true  "ID заметки"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/notes/{id}/export [get]
func (h *NoteHandler) Export(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	note, err := h.service.Export(c.Request.Context(), userID, c.Param("id"), &buf)
	if err != nil {
		respondError(c, "[notes][export]", err, notFound)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, pdfFilename(note.Name)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func pdfFilename(name string) string {
	s := strings.Trim(unsafeFilename.ReplaceAllString(name, "_"), "._")
	if s == "" {
		return "note"
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
