// Command devtoken mints access tokens for local testing against the API.
// Tokens are signed with JWT_SECRET, the same secret the API validates with.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cinescope-backend/internal/domain"
	"cinescope-backend/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	userID := flag.String("user", "dev-user", "subject (user id) of the token")
	email := flag.String("email", "", "email claim, defaults to <user>@localhost")
	role := flag.String("role", domain.RoleUser, "role claim: user, admin or superadmin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	switch *role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	if *email == "" {
		*email = *userID + "@localhost"
	}

	utils.SetSecret(secret)
	token, err := utils.GenerateJWT(*userID, *email, *role, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
