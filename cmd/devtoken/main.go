// Command devtoken prints a staff bearer token signed with JWT_SECRET, for local use
// against the api.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"eventmanager/config"
	"eventmanager/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "staff user id recorded as grantor or canceller")
	email := flag.String("email", "", "staff email")
	roles := flag.String("roles", "organizer", "comma-separated roles")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "devtoken: -user is required")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "devtoken: JWT_SECRET is not set")
		os.Exit(1)
	}
	token, err := auth.NewJWT(cfg.JWTSecret).Issue(*userID, *email, strings.Split(*roles, ","), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
