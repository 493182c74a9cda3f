package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/utils"
	"github.com/joho/godotenv"
)

const (
	AppEnvKey  = "APP_ENV"
	EnvFileKey = "ENV_FILE"

	defaultEnvFile = ".env"
)

var ErrAutoMigrateNotAllowed = errors.New("--auto-migrate is only allowed in development environments")

// developmentEnvs are the APP_ENV values allowed to run --auto-migrate.
var developmentEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads ENV_FILE (default .env) without overriding variables
// already set in the process environment.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBool("SKIP_DOTENV", false) {
		logger.Info("Skipping env file load (SKIP_DOTENV=true)")
		return
	}

	path := utils.GetEnvTrimmedOrDefault(EnvFileKey, defaultEnvFile)
	if err := godotenv.Load(path); err != nil {
		logger.Warn("Env file not loaded", "file", path, "error", err.Error())
		return
	}

	logger.Info("Environment loaded", "file", path)
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return normalizeAppEnv(os.Getenv(AppEnvKey))
}

func IsDevelopmentEnv(appEnv string) bool {
	return slices.Contains(developmentEnvs, normalizeAppEnv(appEnv))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	if IsDevelopmentEnv(appEnv) {
		return nil
	}
	return fmt.Errorf("%w: %s=%q", ErrAutoMigrateNotAllowed, AppEnvKey, normalizeAppEnv(appEnv))
}

func normalizeAppEnv(appEnv string) string {
	return strings.ToLower(strings.TrimSpace(appEnv))
}
