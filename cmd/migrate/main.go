package main

import (
	"fmt"
	"log"
	"os"

	"fieldtrack-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if os.Getenv("SEED_USERS") == "true" {
		if err := database.SeedUsers(db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Println("Users seeded successfully!")
	}

	// Query and display summary
	var result struct {
		Users        int `db:"users"`
		WorkSessions int `db:"work_sessions"`
		Meetings     int `db:"meetings"`
		Samples      int `db:"samples"`
		Sales        int `db:"sales"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM work_sessions) AS work_sessions,
			(SELECT COUNT(*) FROM meetings) AS meetings,
			(SELECT COUNT(*) FROM samples) AS samples,
			(SELECT COUNT(*) FROM sales) AS sales
	`

	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:          %d\n", result.Users)
	fmt.Printf("Work sessions:  %d\n", result.WorkSessions)
	fmt.Printf("Meetings:       %d\n", result.Meetings)
	fmt.Printf("Samples:        %d\n", result.Samples)
	fmt.Printf("Sales:          %d\n", result.Sales)
	fmt.Println("============================================================")
}
