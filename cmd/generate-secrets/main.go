package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hrdocs/personnel-backend/internal/utils"
)

func main() {
	passwordLength := flag.Int("password-length", 0, "also print a random password of this length")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)

	if *passwordLength > 0 {
		password, err := utils.GeneratePassword(*passwordLength)
		if err != nil {
			log.Fatalf("Failed to generate password: %v", err)
		}
		fmt.Println()
		fmt.Printf("PASSWORD=%s\n", password)
	}

	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
