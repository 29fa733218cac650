package main

import (
	"log"
	"os"

	"branching-chat-be/internal/model"
	"branching-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
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

	color.Cyan("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (things AutoMigrate doesn't handle)
	color.Yellow("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	color.Yellow("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.MessageEmbedding{},
		&model.ModelConfig{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Constraints AutoMigrate can't express
	color.Yellow("Step 3: Creating Indexes and Foreign Keys...")

	postMigrationSQL := []string{
		// Branch order is dense and unique among siblings. Roots have a NULL
		// parent, which a plain unique index would not constrain, hence the
		// two partial indexes.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_messages_sibling_order
		 ON messages (conversation_id, parent_message_id, branch_order)
		 WHERE parent_message_id IS NOT NULL;`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uq_messages_root_order
		 ON messages (conversation_id, branch_order)
		 WHERE parent_message_id IS NULL;`,

		// Parent links are immutable and must always point at a real node.
		`DO $$ BEGIN
		   ALTER TABLE messages ADD CONSTRAINT fk_messages_parent
		     FOREIGN KEY (parent_message_id) REFERENCES messages(id);
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		`DO $$ BEGIN
		   ALTER TABLE messages ADD CONSTRAINT fk_messages_conversation
		     FOREIGN KEY (conversation_id) REFERENCES conversations(id);
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		`DO $$ BEGIN
		   ALTER TABLE conversations ADD CONSTRAINT fk_conversations_active_message
		     FOREIGN KEY (active_message_id) REFERENCES messages(id);
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		`DO $$ BEGIN
		   ALTER TABLE message_embeddings ADD CONSTRAINT fk_embeddings_message
		     FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE;
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		// HNSW index for cosine similarity search over message embeddings.
		`CREATE INDEX IF NOT EXISTS idx_message_embeddings_hnsw
		 ON message_embeddings USING hnsw (embedding_value vector_cosine_ops);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v. Continuing...", err)
		}
	}

	color.Green("✅ Success: Migration completed.")
}
