package config

// Default paths for the application's persisted state.
const (
	// DefaultDatabasePath is the default path for the application database.
	DefaultDatabasePath = "./reading-challenge.db"

	// DefaultCoversDir is where locally stored cover images live. It is
	// expected to be under the static root so covers are served directly.
	DefaultCoversDir = "./static/covers"

	// DefaultCoversMappingPath is the JSON sidecar mapping book identities
	// to local cover filenames.
	DefaultCoversMappingPath = "./covers_mapping.json"

	// DefaultCSVPath is where the shared book list CSV is expected.
	DefaultCSVPath = "./book_list.csv"
)
