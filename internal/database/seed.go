package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	fieldPassword, err := bcrypt.GenerateFromPassword([]byte("field123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "officer@fieldtrack.in",
			"password": string(fieldPassword),
			"name":     "Ravi Officer",
			"phone":    "9800000001",
			"role":     "field",
			"state":    "Karnataka",
			"district": "Bengaluru Urban",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@fieldtrack.in",
			"password": string(adminPassword),
			"name":     "Admin User",
			"phone":    "9800000002",
			"role":     "admin",
			"state":    "Karnataka",
			"district": "Bengaluru Urban",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, phone, role, state, district)
			VALUES (:id, :email, :password, :name, :phone, :role, :state, :district)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Field: officer@fieldtrack.in / field123")
	log.Println("  📧 Admin: admin@fieldtrack.in / admin123")
	return nil
}
