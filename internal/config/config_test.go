package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store:  StoreConfig{DataPath: "/some/path"},
		Server: ServerConfig{Port: "8080"},
		Reader: ReaderConfig{
			PageTurnDelay: 300 * time.Millisecond,
			AlbumDir:      "img/album/",
			CoverDir:      "img/historias/",
		},
	}
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "APP_NAME", "LOG_LEVEL", "DATA_PATH", "STORE_IN_MEMORY",
		"SERVER_HOST", "SERVER_PORT", "CORS_ORIGINS",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"READER_PAGE_TURN_DELAY", "READER_ALBUM_DIR", "READER_COVER_DIR", "READER_ASSET_ROOT",
		"IMPORT_INBOX", "SEARCH_INDEX_PATH", "ACHIEVEMENTS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_DataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.DataPath = ""
	assert.Error(t, cfg.Validate())

	// In-memory stores do not need a path.
	cfg.Store.InMemory = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NegativePageTurnDelay(t *testing.T) {
	cfg := validConfig()
	cfg.Reader.PageTurnDelay = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page turn delay")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load([]string{"-env-file", filepath.Join(dir, "missing.env"), "-data-path", dir})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 300*time.Millisecond, cfg.Reader.PageTurnDelay)
	assert.Equal(t, "img/album/", cfg.Reader.AlbumDir)
	assert.Equal(t, "img/historias/", cfg.Reader.CoverDir)
	assert.Equal(t, filepath.Join(dir, "search"), cfg.Library.SearchIndexPath)
	assert.Equal(t, filepath.Join(dir, "db"), cfg.DatabasePath())
	assert.Empty(t, cfg.Library.ImportInbox)
	assert.True(t, cfg.Achievements.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=7000\nLOG_LEVEL=warn\nREADER_ALBUM_DIR=assets/album\n"), 0o644))

	// Environment beats the .env file, flags beat the environment.
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SERVER_PORT", "7100")

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", dir, "-port", "7200"})
	require.NoError(t, err)

	assert.Equal(t, "7200", cfg.Server.Port)
	assert.Equal(t, "error", cfg.Logger.Level)
	assert.Equal(t, "assets/album/", cfg.Reader.AlbumDir)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load([]string{"-env-file", filepath.Join(dir, "none"), "-data-path", dir, "-page-turn-delay", "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READER_PAGE_TURN_DELAY")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/stories", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "stories"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/path", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "relative/path")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "X", false))
	assert.True(t, getBoolConfigValue("1", "X", false))
	assert.False(t, getBoolConfigValue("off", "X", true))
	assert.True(t, getBoolConfigValue("", "UNSET_BOOL_KEY", true))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b"))
	assert.Nil(t, splitList(""))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `# Test env file
ENV=staging
LOG_LEVEL=debug
# Comment line
QUOTED_VALUE="some value"
SINGLE_QUOTED='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, k := range []string{"ENV", "LOG_LEVEL", "QUOTED_VALUE", "SINGLE_QUOTED"} {
		t.Setenv(k, "")
	}

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("ENV"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "some value", os.Getenv("QUOTED_VALUE"))
	assert.Equal(t, "another value", os.Getenv("SINGLE_QUOTED"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VALID_KEY=v\nINVALID LINE WITHOUT EQUALS\n"), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "original-value", os.Getenv("TEST_VAR"))
}
