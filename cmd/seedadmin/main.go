package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"

	"communityhub/internal/config"
	"communityhub/internal/database"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/security"
)

// seedadmin creates an admin account, or promotes an existing user to
// admin. When no password is supplied a random one is generated and
// printed once.
func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "Admin email address (or ADMIN_EMAIL)")
	name := flag.String("name", "Administrator", "Admin display name")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (or ADMIN_PASSWORD; generated if empty)")
	flag.Parse()

	if *email == "" {
		fmt.Println("Usage: seedadmin -email admin@example.org [-name Name] [-password secret]")
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)

	adminRole, err := userRepo.GetRoleByName(models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to look up admin role: %v", err)
	}
	if adminRole == nil {
		log.Fatal("Admin role is not seeded; run migrations first")
	}

	existing, err := userRepo.GetUserByEmail(*email)
	if err != nil {
		log.Fatalf("Failed to look up user: %v", err)
	}
	if existing != nil {
		if err := userRepo.UpdateUserRole(existing.ID, adminRole.ID); err != nil {
			log.Fatalf("Failed to promote user: %v", err)
		}
		log.Printf("Promoted %s to admin", existing.Email)
		return
	}

	plaintext := *password
	generated := false
	if plaintext == "" {
		plaintext, err = generatePassword()
		if err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}
		generated = true
	}

	hash, err := security.HashPassword(plaintext)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user, err := userRepo.CreateMemberAccount(*email, hash, *name, adminRole.ID)
	if err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("Created admin account %s (id %d)", user.Email, user.ID)
	if generated {
		fmt.Printf("Generated password (shown once): %s\n", plaintext)
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
