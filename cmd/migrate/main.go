// Command migrate applies or inspects the database schema. Production servers
// do not migrate on startup, so deployments run "migrate up" first.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/models"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema up to date")
	case "status":
		migrator := db.Migrator()
		missing := 0
		for _, m := range models.AllModels() {
			state := "present"
			if !migrator.HasTable(m) {
				state = "missing"
				missing++
			}
			log.Printf("%-20T %s", m, state)
		}
		log.Printf("driver=%s env=%s missing=%d", cfg.DBDriver, cfg.Env, missing)
	default:
		return usage()
	}
	return nil
}
