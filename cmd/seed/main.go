package main

import (
	"log"
	"os"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/model"
	"studenthub-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the initial admin account. Registration via the API only creates
// student accounts, so every deployment needs at least one seeded admin.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding StudentHub admin account\n")

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@studenthub.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme-admin"
		color.Yellow("ADMIN_PASSWORD not set, using the default. Change it before going live.")
	}

	var existing model.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		color.Yellow("Admin '%s' already exists, skipping...", adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash admin password: %v", err)
	}
	hashStr := string(hash)

	admin := model.User{
		Email:        adminEmail,
		PasswordHash: &hashStr,
		FirstName:    "Portal",
		LastName:     "Admin",
		Role:         string(entity.UserRoleAdmin),
		Status:       string(entity.UserStatusActive),
	}

	if err := db.Create(&admin).Error; err != nil {
		color.Red("Failed to create admin: %v", err)
		os.Exit(1)
	}

	color.Green("Created admin: %s (%s)", adminEmail, admin.Id)
	color.Cyan("Seeding completed!")
}
