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

// AddCoverCommand installs a cover for a single book from a local image
// file: the image is normalized, stored in the covers directory and the
// book row is pointed at it.
type AddCoverCommand struct {
	DatabasePath string
	CoversDir    string
	MappingPath  string
	BookID       uint
	ImagePath    string
}

// NewAddCoverCommand creates a new AddCoverCommand
func NewAddCoverCommand() *AddCoverCommand {
	return &AddCoverCommand{}
}

// ParseFlags parses command line flags
func (cmd *AddCoverCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add-cover", flag.ExitOnError)

	var bookID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.CoversDir, "covers-dir", config.DefaultCoversDir, "Directory where cover images are stored")
	fs.StringVar(&cmd.MappingPath, "mapping", config.DefaultCoversMappingPath, "Path to the cover mapping JSON file")
	fs.Uint64Var(&bookID, "book", 0, "ID of the book to attach the cover to")
	fs.StringVar(&cmd.ImagePath, "image", "", "Path to the cover image file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add-cover -book <id> -image <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Attach a manually sourced cover image to a book. The image is resized\n")
		fmt.Fprintf(os.Stderr, "and re-encoded like downloaded covers, so any common format works.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.BookID = uint(bookID)

	if cmd.BookID == 0 || cmd.ImagePath == "" {
		fs.Usage()
		return fmt.Errorf("both -book and -image are required")
	}
	return nil
}

// Run executes the add command
func (cmd *AddCoverCommand) Run() error {
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
	book, err := repo.GetBookByID(cmd.BookID)
	if err != nil {
		return fmt.Errorf("book %d: %w", cmd.BookID, err)
	}

	if err := resolver.AddCover(book.ID, book.Title, book.Author, cmd.ImagePath); err != nil {
		return fmt.Errorf("failed to add cover: %w", err)
	}

	res := resolver.Resolve(book.ID, book.Title, book.Author)
	if err := repo.UpdateCoverURL(book.ID, res.URL); err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	fmt.Printf("✅ Cover added for %q (%s)\n", book.Title, res.URL)
	return nil
}
