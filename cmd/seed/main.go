package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/db"
	"todoapp/internal/errors"
	"todoapp/internal/model"
	"todoapp/internal/repository"
	"todoapp/internal/service"
)

// sampleTodos are created for the demo user; done ones are toggled after creation.
var sampleTodos = []struct {
	Title       string
	Description string
	Done        bool
}{
	{"Buy groceries", "Milk, eggs, bread", false},
	{"Read the API docs", "Start at /swagger/index.html", true},
	{"Book dentist appointment", "", false},
}

func main() {
	email := flag.String("email", "demo@example.com", "demo user email")
	password := flag.String("password", "demo-password", "demo user password")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	ctx := context.Background()
	if _, err := db.Migrate(ctx, gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	hasher := auth.NewPasswordHasher(auth.HashParams{
		Memory:      cfg.HashMemoryKiB,
		Iterations:  cfg.HashIterations,
		Parallelism: cfg.HashParallelism,
	})
	authService := service.NewAuthService(userRepo, nil, hasher, auth.NewJWTService(cfg.JWTSecret), cfg.AccessTokenTTL)
	todoService := service.NewTodoService(repository.NewTodoRepository(gormDB))

	user, created, err := ensureUser(ctx, authService, userRepo, *email, *password)
	if err != nil {
		log.Fatalf("Failed to seed user: %v", err)
	}
	if !created {
		log.Printf("User %s already exists, leaving its todos alone", user.Email)
		return
	}
	log.Printf("Created user %s (id %d)", user.Email, user.ID)

	count, err := seedTodos(ctx, todoService, user.ID)
	if err != nil {
		log.Fatalf("Failed to seed todos: %v", err)
	}

	stats, err := todoService.Stats(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}
	log.Printf("Seed completed successfully!")
	log.Printf("  - Todos created: %d", count)
	log.Printf("  - Completed: %d (%s)", stats.Completed, stats.Percentage)
}

// ensureUser registers the demo user, or loads it when the email is taken.
func ensureUser(ctx context.Context, authService service.AuthService, repo repository.UserRepository, email, password string) (*model.User, bool, error) {
	user, err := authService.Register(ctx, email, password, "Demo User")
	if err == nil {
		return user, true, nil
	}
	if !stderrors.Is(err, errors.ErrDuplicateEmail) {
		return nil, false, err
	}

	existing, err := repo.FindByEmail(ctx, service.NormalizeEmail(email))
	if err != nil {
		return nil, false, fmt.Errorf("load existing user: %w", err)
	}
	return existing, false, nil
}

func seedTodos(ctx context.Context, todoService service.TodoService, ownerID uint) (int, error) {
	for i, sample := range sampleTodos {
		var description *string
		if sample.Description != "" {
			d := sample.Description
			description = &d
		}

		todo, err := todoService.Create(ctx, ownerID, sample.Title, description)
		if err != nil {
			return i, fmt.Errorf("create %q: %w", sample.Title, err)
		}
		if sample.Done {
			if _, err := todoService.Toggle(ctx, ownerID, todo.ID); err != nil {
				return i, fmt.Errorf("complete %q: %w", sample.Title, err)
			}
		}
	}
	return len(sampleTodos), nil
}
