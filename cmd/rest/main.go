package main

import (
	"context"
	"log"

	"branching-chat-be/internal/bootstrap"
	"branching-chat-be/internal/config"
	"branching-chat-be/internal/server"
	"branching-chat-be/internal/tracer"
	"branching-chat-be/pkg/database"
)

func main() {
	// 1. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	container.StartConsumers(context.Background())

	// 6. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
