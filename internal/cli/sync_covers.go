package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/skaufmann/reading-challenge/internal/config"
	"github.com/skaufmann/reading-challenge/internal/covers"
	"github.com/skaufmann/reading-challenge/internal/database"
	"github.com/skaufmann/reading-challenge/internal/database/books"
)

// SyncCoversCommand re-resolves every book's cover from the local cover
// directory and writes the resulting URLs to the book rows. No network
// requests are made.
type SyncCoversCommand struct {
	DatabasePath string
	CoversDir    string
	MappingPath  string
	StatsOnly    bool
	ListMissing  bool
}

// NewSyncCoversCommand creates a new SyncCoversCommand
func NewSyncCoversCommand() *SyncCoversCommand {
	return &SyncCoversCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncCoversCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync-covers", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.CoversDir, "covers-dir", config.DefaultCoversDir, "Directory where cover images are stored")
	fs.StringVar(&cmd.MappingPath, "mapping", config.DefaultCoversMappingPath, "Path to the cover mapping JSON file")
	fs.BoolVar(&cmd.StatsOnly, "stats", false, "Report cover coverage without changing anything")
	fs.BoolVar(&cmd.ListMissing, "list-missing", false, "List books without a local cover, without changing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync-covers [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Point every book at its local cover image, or the placeholder when none\n")
		fmt.Fprintf(os.Stderr, "exists. Useful after copying cover files around or editing the mapping.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the sync command
func (cmd *SyncCoversCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	resolver, err := covers.NewResolver(cmd.CoversDir, cmd.MappingPath)
	if err != nil {
		return fmt.Errorf("failed to initialize cover resolver: %w", err)
	}

	repo := books.NewRepository(db.DB)

	if cmd.StatsOnly || cmd.ListMissing {
		stats, err := resolver.Stats(repo)
		if err != nil {
			return err
		}
		fmt.Printf("📚 %d books with a local cover, %d without\n", stats.WithCover, len(stats.Missing))
		fmt.Printf("🗂️  %d mappings, %d cover files on disk\n", stats.Mappings, stats.CoverFiles)
		if cmd.ListMissing {
			for _, missing := range stats.Missing {
				fmt.Printf("   - %s\n", missing)
			}
		}
		return nil
	}

	result, err := resolver.SyncDatabase(repo)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Synced %d books: %d with local covers, %d using the placeholder\n",
		result.Total, result.Mapped+result.Adopted, result.Defaulted)
	return nil
}
