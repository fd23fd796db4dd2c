package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"todo_backend/internal/domain"
	"todo_backend/internal/repository"
	"todo_backend/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seeds a login-ready account for local development.
func main() {
	username := flag.String("username", "testuser", "username")
	email := flag.String("email", "test@example.com", "email")
	password := flag.String("password", "testpass123", "plaintext password (will be hashed)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hashed, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := &domain.User{
		Username:  *username,
		Email:     *email,
		Password:  hashed,
		FirstName: "Test",
		LastName:  "User",
	}

	repo := repository.NewUserRepository(db)
	if err := repo.Create(context.Background(), user); err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("created user %s (id=%d)\n", user.Username, user.ID)
}
