package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agstrans/internal/setupcfg"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DataDir                      string
	TextPackDir                  string
	SetupFile                    string
	Language                     string
	FallbackLanguage             string
	PackFormat                   string
	QuitOnError                  bool
	LogUntranslated              bool
	UnfactorSpeechFromTextLength bool
	GameUniqueID                 int
	GameName                     string
	TextEncoding                 string
	DatabaseURL                  string
	WorkerCount                  int
}

// Load reads .env, then the setup file, then the environment. Environment
// values win over the setup file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	dataDir := getEnv("AGS_DATA_DIR", ".")
	cfg := &Config{
		DataDir:     dataDir,
		TextPackDir: getEnv("AGS_TEXTPACK_DIR", dataDir),
		SetupFile:   getEnv("AGS_SETUP_FILE", filepath.Join(dataDir, "acsetup.cfg")),
		PackFormat:  "tra",
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/agstrans?sslmode=disable"),
		WorkerCount: getEnvInt("WORKER_COUNT", 8),
	}

	if tree, err := setupcfg.Read(cfg.SetupFile); err == nil {
		cfg.applySetup(tree)
	} else {
		log.Debug().Err(err).Str("path", cfg.SetupFile).Msg("Setup file not loaded")
	}

	cfg.Language = getEnv("AGS_LANGUAGE", cfg.Language)
	cfg.FallbackLanguage = getEnv("AGS_FALLBACK_LANGUAGE", cfg.FallbackLanguage)
	cfg.PackFormat = getEnv("AGS_PACK_FORMAT", cfg.PackFormat)
	cfg.QuitOnError = getEnvBool("AGS_QUIT_ON_ERROR", cfg.QuitOnError)
	cfg.LogUntranslated = getEnvBool("AGS_LOG_UNTRANSLATED", cfg.LogUntranslated)
	cfg.UnfactorSpeechFromTextLength = getEnvBool("AGS_UNFACTOR_SPEECH_LENGTH", cfg.UnfactorSpeechFromTextLength)
	cfg.GameUniqueID = getEnvInt("AGS_GAME_UNIQUE_ID", cfg.GameUniqueID)
	cfg.GameName = getEnv("AGS_GAME_NAME", cfg.GameName)
	cfg.TextEncoding = getEnv("AGS_TEXT_ENCODING", cfg.TextEncoding)

	return cfg
}

// applySetup copies the [language] and [game] values of the setup file.
func (c *Config) applySetup(tree setupcfg.Tree) {
	if v, ok := tree.Get("language", "translation"); ok {
		c.Language = LanguageFromSetup(v)
	}
	if v, ok := tree.Get("language", "fallback"); ok {
		c.FallbackLanguage = LanguageFromSetup(v)
	}
	if v, ok := tree.Get("language", "format"); ok && v != "" {
		c.PackFormat = v
	}
	if v, ok := tree.Get("language", "encoding"); ok {
		c.TextEncoding = v
	}
	if v, ok := tree.Get("language", "log_untranslated"); ok {
		c.LogUntranslated = parseBool(v, c.LogUntranslated)
	}
	if v, ok := tree.Get("language", "quit_on_error"); ok {
		c.QuitOnError = parseBool(v, c.QuitOnError)
	}
	if v, ok := tree.Get("game", "uniqueid"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.GameUniqueID = n
		}
	}
	if v, ok := tree.Get("game", "name"); ok {
		c.GameName = v
	}
}

// HasGameIdentity reports whether packs should be checked against a game.
func (c *Config) HasGameIdentity() bool {
	return c.GameName != "" || c.GameUniqueID != 0
}

// LanguageFromSetup maps a stored translation name to a language: the
// setup program stores "default" or nothing for the built-in text.
func LanguageFromSetup(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "default") {
		return ""
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	return parseBool(os.Getenv(key), fallback)
}

func parseBool(v string, fallback bool) bool {
	if v == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
