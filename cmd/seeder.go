package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(gormPostgres.Open(cfg.Database.Source), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"audit_records", "messages", "time_entries", "team_members", "teams", "holidays", "projects", "portal_contacts", "clients", "users", "companies"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		if err := db.Exec("INSERT INTO companies (id, name, timezone, is_active, created_at, updated_at) VALUES (1, 'Acme Studio', 'UTC', true, now(), now()) ON CONFLICT (id) DO NOTHING").Error; err != nil {
			log.Fatalf("failed to insert company: %v", err)
		}

		seedUser(db, "root@worklog.dev", "Root", "superadmin", nil, hash)
		companyID := int64(1)
		seedUser(db, "admin@acme.dev", "Acme Admin", "admin", &companyID, hash)
		seedUser(db, "dev@acme.dev", "Acme Dev", "member", &companyID, hash)

		if err := db.Exec("INSERT INTO clients (id, company_id, name, created_at) VALUES (1, 1, 'Globex', now()) ON CONFLICT (id) DO NOTHING").Error; err != nil {
			log.Fatalf("failed to insert client: %v", err)
		}

		if err := db.Exec(`INSERT INTO projects (company_id, code, name, client_id, is_active, created_at, updated_at)
			VALUES (1, 'GLX-01', 'Globex Website', 1, true, now(), now()) ON CONFLICT DO NOTHING`).Error; err != nil {
			log.Fatalf("failed to insert project: %v", err)
		}

		if err := db.Exec(`INSERT INTO portal_contacts (company_id, client_id, email, access_key_hash, created_at)
			VALUES (1, 1, 'contact@globex.dev', crypt('portal-key', gen_salt('bf')), now()) ON CONFLICT DO NOTHING`).Error; err != nil {
			log.Fatalf("failed to insert portal contact: %v", err)
		}

		fmt.Println("Seed complete")
	},
}

func seedUser(db *gorm.DB, email, name, role string, companyID *int64, hash []byte) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists\n", email)
		return
	}

	err := db.Exec(`INSERT INTO users (email, name, password_hash, role, company_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, now(), now())`, email, name, string(hash), role, companyID).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}
