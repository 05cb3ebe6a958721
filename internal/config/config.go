// Package config loads Chronicles configuration from flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App          AppConfig
	Logger       LoggerConfig
	Store        StoreConfig
	Server       ServerConfig
	Reader       ReaderConfig
	Library      LibraryConfig
	Achievements AchievementsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	Name        string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StoreConfig holds the embedded database configuration.
type StoreConfig struct {
	// DataPath is the base directory; the database lives in {DataPath}/db.
	DataPath string
	// InMemory runs Badger without touching disk. Useful for demos and tests.
	InMemory bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        // Bind address (default: 127.0.0.1)
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      // Allowed origins for the browser client
}

// ReaderConfig holds reader and gallery presentation settings.
type ReaderConfig struct {
	// PageTurnDelay is how long a page flip animates before the chapter index commits.
	PageTurnDelay time.Duration
	// AlbumDir is prefixed to bare album filenames.
	AlbumDir string
	// CoverDir is prefixed to bare cover filenames.
	CoverDir string
	// AssetRoot is the local directory the relative image paths are resolved against
	// when computing blurhash placeholders. Empty disables placeholders.
	AssetRoot string
}

// LibraryConfig holds import inbox and search index settings.
type LibraryConfig struct {
	// ImportInbox is watched for dropped JSON snapshots. Empty disables the watcher.
	ImportInbox string
	// SearchIndexPath defaults to {DataPath}/search.
	SearchIndexPath string
}

// AchievementsConfig toggles the achievement notifier.
type AchievementsConfig struct {
	Enabled bool
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("chronicles", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for the database and search index")
	inMemory := fs.String("in-memory", "", "Run the store in memory (default: false)")

	host := fs.String("host", "", "Bind address (default: 127.0.0.1)")
	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins")

	pageTurn := fs.String("page-turn-delay", "", "Page flip animation delay (default: 300ms)")
	albumDir := fs.String("album-dir", "", "Prefix for bare album filenames (default: img/album/)")
	coverDir := fs.String("cover-dir", "", "Prefix for bare cover filenames (default: img/historias/)")
	assetRoot := fs.String("asset-root", "", "Local directory holding img/ assets")

	importInbox := fs.String("import-inbox", "", "Directory watched for JSON snapshots")
	searchPath := fs.String("search-index-path", "", "Path of the search index")
	achievements := fs.String("achievements", "", "Enable achievements (default: true)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			Name:        getConfigValue("", "APP_NAME", "Chronicles"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
			InMemory: getBoolConfigValue(*inMemory, "STORE_IN_MEMORY", false),
		},
		Server: ServerConfig{
			Host:        getConfigValue(*host, "SERVER_HOST", "127.0.0.1"),
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Reader: ReaderConfig{
			AlbumDir:  ensureTrailingSlash(getConfigValue(*albumDir, "READER_ALBUM_DIR", "img/album/")),
			CoverDir:  ensureTrailingSlash(getConfigValue(*coverDir, "READER_COVER_DIR", "img/historias/")),
			AssetRoot: getConfigValue(*assetRoot, "READER_ASSET_ROOT", ""),
		},
		Library: LibraryConfig{
			ImportInbox:     getConfigValue(*importInbox, "IMPORT_INBOX", ""),
			SearchIndexPath: getConfigValue(*searchPath, "SEARCH_INDEX_PATH", ""),
		},
		Achievements: AchievementsConfig{
			Enabled: getBoolConfigValue(*achievements, "ACHIEVEMENTS_ENABLED", true),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Reader.PageTurnDelay, err = getDurationConfigValue(*pageTurn, "READER_PAGE_TURN_DELAY", "300ms"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.DataPath == "" && !c.Store.InMemory {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	if c.Reader.PageTurnDelay < 0 {
		return fmt.Errorf("page turn delay must not be negative: %s", c.Reader.PageTurnDelay)
	}

	if c.Reader.AlbumDir == "" || c.Reader.CoverDir == "" {
		return errors.New("album and cover directories are required")
	}

	return nil
}

// DatabasePath returns the Badger directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Store.DataPath, "db")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Store.DataPath, err = expandPath(c.Store.DataPath, filepath.Join(homeDir, "Chronicles")); err != nil {
		return err
	}
	if c.Library.SearchIndexPath, err = expandPath(c.Library.SearchIndexPath, filepath.Join(c.Store.DataPath, "search")); err != nil {
		return err
	}
	// Empty inbox disables the watcher.
	if c.Library.ImportInbox, err = expandPath(c.Library.ImportInbox, ""); err != nil {
		return err
	}
	if c.Reader.AssetRoot, err = expandPath(c.Reader.AssetRoot, ""); err != nil {
		return err
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s %q: %w", envKey, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func ensureTrailingSlash(dir string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
