package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/skaufmann/reading-challenge/internal/config"
	"github.com/skaufmann/reading-challenge/internal/covers"
	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/database/books"
	"github.com/skaufmann/reading-challenge/internal/metadata"
)

// DownloadCoversCommand fetches missing cover images from OpenLibrary and
// stores them in the local cover directory.
type DownloadCoversCommand struct {
	DatabasePath string
	CoversDir    string
	MappingPath  string
	BaseURL      string
	Limit        int
}

// NewDownloadCoversCommand creates a new DownloadCoversCommand
func NewDownloadCoversCommand() *DownloadCoversCommand {
	return &DownloadCoversCommand{}
}

// ParseFlags parses command line flags
func (cmd *DownloadCoversCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("download-covers", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.CoversDir, "covers-dir", config.DefaultCoversDir, "Directory where cover images are stored")
	fs.StringVar(&cmd.MappingPath, "mapping", config.DefaultCoversMappingPath, "Path to the cover mapping JSON file")
	fs.StringVar(&cmd.BaseURL, "openlibrary-url", "https://openlibrary.org", "OpenLibrary base URL")
	fs.IntVar(&cmd.Limit, "limit", 0, "Maximum number of books to process (0 for all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s download-covers [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Download missing book covers from OpenLibrary.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Lists all books and skips those that already have a local cover\n")
		fmt.Fprintf(os.Stderr, "  2. Searches OpenLibrary for each remaining book\n")
		fmt.Fprintf(os.Stderr, "  3. Downloads, normalizes and stores the cover images\n")
		fmt.Fprintf(os.Stderr, "  4. Records the results in the cover mapping file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s download-covers\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s download-covers -limit 10\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the download command
func (cmd *DownloadCoversCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	resolver, err := covers.NewResolver(cmd.CoversDir, cmd.MappingPath)
	if err != nil {
		return fmt.Errorf("failed to initialize cover resolver: %w", err)
	}

	fmt.Println("📚 Cover download")
	fmt.Println("=================")
	fmt.Printf("📁 Database: %s\n", cmd.DatabasePath)
	fmt.Printf("📁 Covers: %s\n", cmd.CoversDir)

	client := metadata.NewOpenLibraryClient(cmd.BaseURL)
	downloader := covers.NewDownloader(client, resolver)

	repo := books.NewRepository(db.DB)
	stats, err := downloader.Run(context.Background(), repo, cmd.Limit)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Done: %d downloaded, %d already present, %d without a cover\n",
		stats.Downloaded, stats.AlreadyHad, stats.Failed)
	return nil
}
