// Command create-admin adds an admin identity with a generated password.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/model"
	"jobboard-backend/internal/utilities"
	"jobboard-backend/internal/validation"
)

// generatePassword returns a random password that satisfies the password rule.
func generatePassword() string {
	for {
		b := make([]byte, 5)
		if _, err := rand.Read(b); err != nil {
			log.Fatal(err)
		}
		// hex is lowercase and digits; the suffix adds upper and special
		password := hex.EncodeToString(b) + "A@"
		if validation.ValidPassword(password) {
			return password
		}
	}
}

func main() {
	email := flag.String("email", "", "admin email address")
	mobile := flag.String("mobile", "", "admin mobile number")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email <address> [-mobile <number>]")
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := database.GetMainDB(cfg.Database)
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}
	defer func() { _ = db.Close() }()

	var existing int64
	if err := db.Model(&model.User{}).Where("email = ?", *email).Count(&existing).Error; err != nil {
		log.Fatal(err)
	}
	if existing > 0 {
		log.Fatalf("An account with email %s already exists", *email)
	}

	password := generatePassword()
	admin, err := utilities.CreateAdmin(db.DB, utilities.AdminInfo{
		Email:        *email,
		Password:     password,
		MobileNumber: *mobile,
		Cost:         cfg.HashCost,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("ID:       %s\n", admin.ID)
	fmt.Printf("Email:    %s\n", admin.Email)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")
}
