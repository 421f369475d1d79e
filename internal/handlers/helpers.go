package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"notesapp/internal/middleware"
	"notesapp/internal/services"
)

// errCase maps an error kind to the status and message of one endpoint.
// Cases are checked in order, so narrower kinds go first.
type errCase struct {
	kind    error
	status  int
	message string // "": берём текст самой ошибки
}

func respondError(c *gin.Context, tag string, err error, cases ...errCase) {
	for _, ec := range cases {
		if !errors.Is(err, ec.kind) {
			continue
		}
		msg := ec.message
		if msg == "" {
			msg = err.Error()
		}
		body := gin.H{"success": false, "message": msg}
		var verr *services.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		log.Printf("%s %d: %v", tag, ec.status, err)
		c.JSON(ec.status, body)
		return
	}
	log.Printf("%s internal error request_id=%s: %v", tag, middleware.RequestIDFromContext(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}

// bindJSON treats an empty body as an empty request so that missing fields
// are reported by validation, not as malformed JSON.
func bindJSON(c *gin.Context, tag string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("%s bad request: bind json failed: err=%v", tag, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON body"})
		return false
	}
	return true
}

func getUserID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.UserIDKey)
	return id, id != ""
}

func requireUserID(c *gin.Context) (string, bool) {
	id, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
	}
	return id, ok
}
