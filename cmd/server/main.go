package main

import (
	"log"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/api"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/config"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/database"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/detection"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/handler"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/repository"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewEventRepository(db)

	sessionService := service.NewSessionService(sessionRepo)
	eventService := service.NewEventService(eventRepo)
	detectionService := service.NewDetectionService(sessionRepo, eventRepo, detection.DefaultParams())

	router := api.SetupRouter(cfg,
		handler.NewSessionHandler(sessionService, detectionService),
		handler.NewEventHandler(eventService),
	)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
