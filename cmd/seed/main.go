package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"planner/internal/config"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
	"planner/internal/repository/postgres"
	"planner/internal/service"
)

const demoProjectID = "demo-project"

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	projectRepo := postgres.NewProjectRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)
	sessionRepo := postgres.NewSessionRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)

	sessionService := service.NewSessionService(sessionRepo, projectRepo, cfg.SessionFreshness, logger)

	log.Printf("📝 Seeding demo project %q...", demoProjectID)

	if err := seedDemoProject(ctx, sessionService, documentRepo, conversationRepo); err != nil {
		log.Fatalf("Failed to seed demo project: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}

// seedDemoProject creates a project with two members, a short conversation,
// and a starter planning document.
func seedDemoProject(
	ctx context.Context,
	sessions services.SessionService,
	documents repositories.DocumentRepository,
	conversations repositories.ConversationRepository,
) error {
	alice, err := sessions.Join(ctx, &services.JoinRequest{ProjectID: demoProjectID, UserName: "Alice"})
	if err != nil {
		return err
	}
	log.Printf("✅ Session for Alice: %s", alice.ID)

	bob, err := sessions.Join(ctx, &services.JoinRequest{ProjectID: demoProjectID, UserName: "Bob"})
	if err != nil {
		return err
	}
	log.Printf("✅ Session for Bob: %s", bob.ID)

	convID := service.ConversationID(demoProjectID, alice.ID)
	if err := conversations.Ensure(ctx, convID, demoProjectID, &alice.ID); err != nil {
		return err
	}
	turns := []models.Message{
		{Role: models.RoleUser, Content: "Let's plan the Q3 platform migration."},
		{Role: models.RoleAssistant, Content: "Starting a plan. First milestone: inventory current services and their owners."},
	}
	for _, msg := range turns {
		if err := conversations.AppendMessage(ctx, convID, msg.Role, msg.Content); err != nil {
			return err
		}
	}
	log.Printf("✅ Conversation %s seeded with %d messages", convID, len(turns))

	doc := "# Q3 Platform Migration\n\n## Milestones\n\n1. Inventory current services and owners\n2. Define migration order\n3. Dry-run on staging\n"
	if err := documents.Replace(ctx, demoProjectID, doc); err != nil {
		return err
	}
	log.Printf("✅ Planning document seeded (%d chars)", len(doc))

	return nil
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Children before parents
	order := []string{
		tables.Invitations,
		tables.Uploads,
		tables.Conversations,
		tables.Sessions,
		tables.Documents,
		tables.Projects,
	}
	for _, table := range order {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
