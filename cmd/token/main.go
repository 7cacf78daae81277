// Command token mints a signed employee token for calling the protected
// routes during local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/wichananm65/grocery-pos-backend/internal/auth"
)

func main() {
	_ = godotenv.Load()

	employeeID := flag.Int64("employee", 0, "employee id to embed in the token")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *employeeID <= 0 {
		log.Fatal("-employee must be a positive id")
	}

	token, err := auth.IssueToken(secret, *employeeID, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
