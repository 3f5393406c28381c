package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/skaufmann/reading-challenge/internal/auth"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

// HashPasswordCommand generates bcrypt password hashes for the .env file.
type HashPasswordCommand struct {
	Cost int
}

// NewHashPasswordCommand creates a new HashPasswordCommand
func NewHashPasswordCommand() *HashPasswordCommand {
	return &HashPasswordCommand{}
}

// ParseFlags parses command line flags
func (cmd *HashPasswordCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)

	fs.IntVar(&cmd.Cost, "cost", 12, "bcrypt cost factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s hash-password [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate bcrypt password hashes for both readers, to be placed in the\n")
		fmt.Fprintf(os.Stderr, ".env file as SILAS_PASSWORD_HASH and NADINE_PASSWORD_HASH.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the hash command
func (cmd *HashPasswordCommand) Run() error {
	fmt.Println("🔐 Password hash generator")
	fmt.Println("==========================")

	envVars := map[entities.Reader]string{
		entities.ReaderSilas:  "SILAS_PASSWORD_HASH",
		entities.ReaderNadine: "NADINE_PASSWORD_HASH",
	}

	lines := make([]string, 0, len(entities.Readers))
	for _, reader := range entities.Readers {
		var password string
		for {
			var err error
			password, err = promptPassword(fmt.Sprintf("Password for %s: ", reader.DisplayName()))
			if err != nil {
				return err
			}
			if len(password) >= auth.MinPasswordLength {
				break
			}
			fmt.Printf("⚠️  Password must be at least %d characters long, try again\n", auth.MinPasswordLength)
		}

		hash, err := auth.HashPassword(password, cmd.Cost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		lines = append(lines, fmt.Sprintf("%s=%s", envVars[reader], hash))
	}

	fmt.Println("\nAdd these lines to your .env file:")
	fmt.Println()
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// promptPassword reads a password without echoing when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
