package main

import (
	"log"
	"os"

	"branching-chat-be/internal/model"
	"branching-chat-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Model Catalog Seeder...")
	seedModels(db)
	log.Println("✅ Success: Model catalog seeding completed.")
}

func seedModels(db *gorm.DB) {
	configs := []model.ModelConfig{
		{Name: "gpt-4o", Provider: "openai", Reasoning: false, IsActive: true},
		{Name: "gpt-4o-mini", Provider: "openai", Reasoning: false, IsActive: true},
		{Name: "o3-mini", Provider: "openai", Reasoning: true, IsActive: true},
		{Name: "claude-sonnet-4-20250514", Provider: "anthropic", Reasoning: false, IsActive: true},
		{Name: "claude-3-5-haiku-20241022", Provider: "anthropic", Reasoning: false, IsActive: true},
		{Name: "llama3.1", Provider: "ollama", Reasoning: false, IsActive: true},
		{Name: "qwen2.5", Provider: "ollama", Reasoning: false, IsActive: true},
	}

	for _, cfg := range configs {
		// Re-running the seeder refreshes provider/reasoning flags without
		// duplicating rows.
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"provider", "reasoning", "is_active"}),
		}).Create(&cfg).Error
		if err != nil {
			log.Printf("Warn: Failed to seed model %s: %v", cfg.Name, err)
			continue
		}
		log.Printf("Seeded model: %s (%s)", cfg.Name, cfg.Provider)
	}
}
