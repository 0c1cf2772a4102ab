package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"webapp/config"
	"webapp/database"
	handler "webapp/handlers"
	"webapp/middleware"
	"webapp/models"
	"webapp/repository"
	"webapp/router"
	"webapp/storage"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("env", cfg.Env).Info("configuration loaded")

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Error("closing database connection")
		}
	}()

	if err := db.Migrate(&models.User{}, &models.Image{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store, err := storage.New(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal(err)
	}

	users := repository.NewUserRepo(db.Gorm)
	images := repository.NewImageRepo(db.Gorm)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	router.SetupRoutes(app, router.Deps{
		Users:  &handler.UserHandler{Users: users, Log: log},
		Images: &handler.ImageHandler{Images: images, Store: store, Log: log},
		Health: &handler.HealthHandler{DB: db, Log: log},
		Auth:   middleware.BasicAuth(users, log),
	})

	log.WithField("addr", cfg.Addr()).Info("server listening")
	log.Fatal(app.Listen(cfg.Addr()))
}
