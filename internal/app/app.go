package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "notesapp/docs"
	"notesapp/internal/config"
	"notesapp/internal/handlers"
	"notesapp/internal/middleware"
	"notesapp/internal/migrations"
	"notesapp/internal/pdf"
	"notesapp/internal/repositories"
	"notesapp/internal/routes"
	"notesapp/internal/services"
	"notesapp/internal/utils"
)

const shutdownTimeout = 10 * time.Second

// Run connects to the database, applies migrations and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Printf("migrations applied")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      NewRouter(cfg, db),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return serve(ctx, srv)
}

// NewRouter builds the whole handler graph on top of db.
func NewRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	noteRepo := repositories.NewNoteRepository(db)

	// === Services ===
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Server.AppBaseURL,
		cfg.Email.DryRun,
	)
	authService := services.NewAuthService(userRepo, sessionRepo, emailService, tokens, services.AuthOptions{
		VerifyTokenTTL:    cfg.Auth.VerifyTokenTTL,
		AccessTokenTTL:    cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL:   cfg.Auth.RefreshTokenTTL,
		ResetTokenTTL:     cfg.Auth.ResetTokenTTL,
		OTPTTL:            cfg.Auth.OTPTTL,
		RequireResetToken: cfg.Auth.RequireResetToken,
		EnforceSession:    cfg.Auth.EnforceSession,
		BcryptCost:        cfg.Auth.BcryptCost,
	})
	noteService := services.NewNoteService(noteRepo, pdf.NewNoteRenderer(cfg.PDF.FontPath, cfg.PDF.Author))

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	noteHandler := handlers.NewNoteHandler(noteService)
	healthHandler := handlers.NewHealthHandler(userRepo)

	// === Gin ===
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.RequestIDMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var sessions middleware.SessionChecker
	if cfg.Auth.EnforceSession {
		sessions = sessionRepo
	}
	routes.SetupRoutes(
		router,
		middleware.AuthMiddleware(tokens, sessions),
		authHandler,
		noteHandler,
		healthHandler,
	)
	return router
}

func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Сервер запущен на %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
