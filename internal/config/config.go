package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Covers
		OpenLibrary
		Import
		UI
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Covers struct {
		Dir         string // Directory where cover images are stored
		MappingPath string // JSON sidecar mapping book identity -> filename
	}
	OpenLibrary struct {
		BaseURL string
	}
	Import struct {
		CSVPath string
	}
	UI struct {
		StaticPath string
	}
	Auth struct {
		SilasPasswordHash  string
		NadinePasswordHash string
		SessionSecret      string
		SessionLifetime    time.Duration
		BcryptCost         int
		SecureCookies      bool // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("covers_dir", DefaultCoversDir)
	v.SetDefault("covers_mapping_path", DefaultCoversMappingPath)
	v.SetDefault("openlibrary_base_url", "https://openlibrary.org")
	v.SetDefault("csv_path", DefaultCSVPath)
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("silas_password_hash", "")
	v.SetDefault("nadine_password_hash", "")
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "720h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Covers: Covers{
			Dir:         v.GetString("COVERS_DIR"),
			MappingPath: v.GetString("COVERS_MAPPING_PATH"),
		},
		OpenLibrary: OpenLibrary{
			BaseURL: v.GetString("OPENLIBRARY_BASE_URL"),
		},
		Import: Import{
			CSVPath: v.GetString("CSV_PATH"),
		},
		UI: UI{
			StaticPath: v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			SilasPasswordHash:  v.GetString("SILAS_PASSWORD_HASH"),
			NadinePasswordHash: v.GetString("NADINE_PASSWORD_HASH"),
			SessionSecret:      v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:    v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:         v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:      v.GetBool("AUTH_SECURE_COOKIES"),
		},
	}
}
