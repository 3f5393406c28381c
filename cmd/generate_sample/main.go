// Command generate_sample creates a database seeded with a handful of
// public domain books, useful for local development without a real
// reading list CSV.
// Usage: go run cmd/generate_sample/main.go [-db path/to/sample.db]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

const defaultSampleDatabasePath = "./sample.db"

func intPtr(v int) *int { return &v }

func main() {
	dbPath := flag.String("db", defaultSampleDatabasePath, "path to the sample database file")
	flag.Parse()

	log.Printf("Generating sample database at %s...", *dbPath)

	// Delete existing sample database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing sample database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	sampleBooks := []entities.Book{
		{Title: "Pride and Prejudice", Author: "Jane Austen", Year: intPtr(1813), OrderIndex: 0},
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Year: intPtr(1960), OrderIndex: 1},
		{Title: "1984", Author: "George Orwell", Year: intPtr(1949), OrderIndex: 2},
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Year: intPtr(1925), OrderIndex: 3},
		{Title: "Jane Eyre", Author: "Charlotte Brontë", Year: intPtr(1847), OrderIndex: 4},
	}

	repo := books.NewRepository(db.DB)
	if err := repo.CreateBooks(sampleBooks); err != nil {
		log.Fatalf("Failed to insert sample books: %v", err)
	}

	log.Printf("Sample database ready: %d books", len(sampleBooks))
}
