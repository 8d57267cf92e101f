package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and coursewares for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"sessions", "payments", "coursewares", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUsers := []struct {
			Username string
			Email    string
			Premium  bool
		}{
			{"student", "student@mail.com", false},
			{"premium_student", "premium@mail.com", true},
		}

		for _, u := range seedUsers {
			var exists int
			row := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Username)
				continue
			}

			if err := db.Exec(
				"INSERT INTO users (id, username, email, password_hash, is_premium, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
				uuid.New().String(), u.Username, u.Email, string(hash), u.Premium,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Printf("Seeded user: %s (password: %s)\n", u.Username, password)
		}

		// 20 coursewares, the first 10 free, matching the launch catalog.
		categories := []string{"mathematics", "physics", "chemistry", "biology", "history"}
		for i := 1; i <= 20; i++ {
			id := fmt.Sprintf("cw-%03d", i)

			var exists int
			row := db.Raw("SELECT 1 FROM coursewares WHERE id = ?", id).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}

			isFree := i <= 10
			priceCents := int64(0)
			if !isFree {
				priceCents = cfg.Payment.DefaultUpgradeAmountCents
			}

			if err := db.Exec(
				"INSERT INTO coursewares (id, title, description, thumbnail, file_path, is_free, price_cents, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, now(), now())",
				id,
				fmt.Sprintf("Courseware %d", i),
				fmt.Sprintf("Lesson material for unit %d", i),
				fmt.Sprintf("/public/thumbnails/%s.png", id),
				fmt.Sprintf("%s.html", id),
				isFree,
				priceCents,
				categories[(i-1)%len(categories)],
			).Error; err != nil {
				log.Fatalf("failed to insert courseware %s: %v", id, err)
			}
			fmt.Printf("Seeded courseware: %s (free=%v)\n", id, isFree)
		}

		fmt.Println("Seed data loaded successfully")
	},
}
