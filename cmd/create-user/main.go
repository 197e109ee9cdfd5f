// CLI tool to create a user with bcrypt-hashed password and a profile seeded
// with the default 2000 kcal targets. The user still goes through onboarding.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"lg/nutrition-go-api/nutrition"
)

// defaultCalories seeds new profiles until onboarding computes real targets.
const defaultCalories = 2000

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	if username == "" || email == "" || len(password) < 8 {
		fmt.Fprintln(os.Stderr, "Username and email are required and the password must be at least 8 characters")
		os.Exit(1)
	}

	targets, err := nutrition.DeriveMacros(defaultCalories, nutrition.DietNone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving default targets: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	authToken := uuid.New().String()

	ctx := context.Background()
	tx, err := conn.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (user_id, diet, calories, protein_g, carbs_g, fat_g, split_protein, split_carbs, split_fat)
		 VALUES (@userID, @diet, @calories, @proteinG, @carbsG, @fatG, @splitProtein, @splitCarbs, @splitFat)`,
		pgx.NamedArgs{
			"userID": userID, "diet": string(targets.Diet),
			"calories": targets.Calories, "proteinG": targets.ProteinG,
			"carbsG": targets.CarbsG, "fatG": targets.FatG,
			"splitProtein": targets.Split.Protein, "splitCarbs": targets.Split.Carbs,
			"splitFat": targets.Split.Fat,
		})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating profile: %v\n", err)
		os.Exit(1)
	}
	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Printf("  Targets:    %d kcal, %dg protein, %dg carbs, %dg fat\n",
		targets.Calories, targets.ProteinG, targets.CarbsG, targets.FatG)
}
