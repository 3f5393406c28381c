package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skaufmann/reading-challenge/internal/config"
	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/importers"
)

// ImportCSVCommand loads the reading list CSV into the database.
type ImportCSVCommand struct {
	CSVPath      string
	DatabasePath string
	Force        bool
}

// NewImportCSVCommand creates a new ImportCSVCommand
func NewImportCSVCommand() *ImportCSVCommand {
	return &ImportCSVCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)

	fs.StringVar(&cmd.CSVPath, "csv", config.DefaultCSVPath, "Path to the reading list CSV file")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Force, "force", false, "Replace the existing catalog instead of skipping the import")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-csv [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load the reading list CSV into the database.\n\n")
		fmt.Fprintf(os.Stderr, "The CSV columns are: read flag (Silas), read flag (Nadine), title, author.\n")
		fmt.Fprintf(os.Stderr, "A trailing year in the title, e.g. \"Emma (1815)\", is stored separately.\n")
		fmt.Fprintf(os.Stderr, "The import is skipped when books already exist unless -force is given.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-csv -csv ./book_list.csv -force\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the import command
func (cmd *ImportCSVCommand) Run() error {
	absCSVPath, err := filepath.Abs(cmd.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for csv: %w", err)
	}

	file, err := os.Open(absCSVPath)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	fmt.Printf("📁 Database: %s\n", cmd.DatabasePath)
	fmt.Printf("📄 CSV: %s\n", absCSVPath)

	repo := books.NewRepository(db.DB)
	result, err := importers.ImportBooks(repo, file, cmd.Force)
	if err != nil {
		return err
	}

	if result.AlreadyLoaded {
		fmt.Println("⏭️  Books already loaded, nothing to do (use -force to replace)")
		return nil
	}

	for _, warning := range result.Warnings {
		fmt.Printf("⚠️  %s\n", warning)
	}
	fmt.Printf("✅ Imported %d books (%d rows skipped)\n", result.Imported, result.Skipped)
	return nil
}
