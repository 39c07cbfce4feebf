// One-off migration: bcrypt-hash any plaintext passwords left over from
// legacy imports.
package main

import (
	"log"
	"strings"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"
	"innovation-tracking-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	config.InitDB()

	var users []models.User
	if err := config.DB.Find(&users).Error; err != nil {
		log.Fatal("Failed to fetch users:", err)
	}

	for _, user := range users {
		// bcrypt hashes start with $2
		if strings.HasPrefix(user.Password, "$2") {
			continue
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("Failed to hash password for user %s: %v\n", user.Email, err)
			continue
		}

		if err := config.DB.Model(&user).Update("password", hashed).Error; err != nil {
			log.Printf("Failed to update password for user %s: %v\n", user.Email, err)
			continue
		}

		log.Printf("Updated password for user %s\n", user.Email)
	}

	log.Println("Password migration completed")
}
