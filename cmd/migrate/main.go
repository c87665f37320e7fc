package main

import (
	"context"
	"flag"
	"log"
	"time"

	"todoapp/internal/config"
	"todoapp/internal/db"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 1, "number of migrations to revert with -direction down; 0 reverts all")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	migrator, err := db.NewMigrator(gormDB)
	if err != nil {
		log.Fatalf("load migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var ids []string
	switch *direction {
	case "up":
		ids, err = migrator.Up(ctx)
	case "down":
		ids, err = migrator.Down(ctx, *steps)
	default:
		log.Fatalf("unknown direction %q, want up or down", *direction)
	}
	for _, id := range ids {
		log.Printf("%s: %s", *direction, id)
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", *direction, err)
	}

	applied, err := migrator.Applied(ctx)
	if err != nil {
		log.Fatalf("list applied migrations: %v", err)
	}
	if len(ids) == 0 {
		log.Println("Nothing to do")
	}
	log.Printf("Schema at %d applied migrations", len(applied))
}
