package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"notesapp/internal/app"
	"notesapp/internal/config"
)

// @title                       Notes API
// @version                     1.0
// @description                 Заметки: регистрация с подтверждением почты, сессии, сброс пароля по OTP.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
