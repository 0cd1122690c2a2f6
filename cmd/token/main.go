// Command token mints a bearer token for local testing.
//
//	go run ./cmd/token -uid tutor-1 -email tutor@example.com -role tutor
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Radennn1/tutoring-backend/pkg/utils"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	uid := flag.String("uid", "", "subject of the token")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", "", "role claim")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
	flag.Parse()

	if *uid == "" {
		log.Fatal("-uid is required")
	}

	token, err := utils.GenerateToken(*uid, *email, *role, *secret)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	fmt.Println(token)
}
