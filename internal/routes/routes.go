package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notesapp/internal/handlers"
)

// SetupRoutes mounts the API. auth is the access-token gate.
func SetupRoutes(
	r *gin.Engine,
	auth gin.HandlerFunc,
	authHandler *handlers.AuthHandler,
	noteHandler *handlers.NoteHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	r.GET("/healthz", healthHandler.Healthz)

	// ---- /api/auth
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/verify", authHandler.Verify)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forget-password", authHandler.ForgetPassword)
		authGroup.POST("/verify-otp/:email", authHandler.VerifyOTP)
		authGroup.POST("/change-password/:email", authHandler.ChangePassword)

		authGroup.POST("/logout", auth, authHandler.Logout)
	}

	// ---- /api/notes (JWT)
	notes := r.Group("/api/notes", auth)
	{
		notes.POST("/create", noteHandler.Create)
		notes.GET("/all", noteHandler.List)
		notes.GET("/:id", noteHandler.Get)
		notes.GET("/:id/export", noteHandler.Export)
		notes.PUT("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "message": "Method not allowed"})
	})

	return r
}
