// Command admin provides maintenance utilities for the admin account and counters.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"portfolio/internal/bootstrap"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/featureflags"
	"portfolio/internal/repository"
	"portfolio/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin bootstrap-admin            - Create the ADMIN_EMAIL account from ADMIN_PASSWORD")
	fmt.Println("  go run ./cmd/admin reset-password <email>     - Set a new password (read from stdin)")
	fmt.Println("  go run ./cmd/admin reconcile-likes            - Recount post likes from like rows")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "bootstrap-admin":
		if cfg.AdminPassword == "" {
			log.Fatal("ADMIN_PASSWORD must be set")
		}
		if err := bootstrap.EnsureAdmin(ctx, cfg, db); err != nil {
			log.Fatalf("Failed to bootstrap admin: %v", err)
		}
		fmt.Printf("✅ Admin account %s is in place\n", cfg.AdminEmail)

	case "reset-password":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin reset-password <email>")
			os.Exit(1)
		}
		password, err := readPassword()
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		if err := bootstrap.AuthService(cfg, db).ResetPassword(ctx, os.Args[2], password); err != nil {
			log.Fatalf("Failed to reset password: %v", err)
		}
		fmt.Printf("✅ Password updated for %s\n", os.Args[2])

	case "reconcile-likes":
		likes := service.NewLikeService(
			repository.NewLikeRepository(db),
			repository.NewPostRepository(db),
			featureflags.NewManager(cfg.FeatureFlags),
		)
		n, err := likes.Reconcile(ctx)
		if err != nil {
			log.Fatalf("Failed to reconcile likes: %v", err)
		}
		fmt.Printf("✅ Reconciled like counters on %d posts\n", n)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "New password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
