package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver          string // postgres (default) or sqlite
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string // defaults to "require"
	PingRetry       *retry.Config
}

func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Driver:          DriverPostgres,
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Minute,
		SSLMode:         "require",
		PingRetry: &retry.Config{
			MaxAttempts: 5,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    5 * time.Second,
			Multiplier:  2,
		},
	}
}

// NewDBConfigFromEnv honours DB_DRIVER; everything else keeps its default.
func NewDBConfigFromEnv() *DBConfig {
	cfg := DefaultDBConfig()
	if driver := strings.ToLower(sanitizeEnv(GetValueFromEnvironmentVariable("DB_DRIVER", ""))); driver != "" {
		cfg.Driver = driver
	}
	return cfg
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DefaultDBConfig()
	}

	dialector, err := buildDialector(logger, cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := OpenDatabase(dialector)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("Failed to get database instance", "error", err)
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	policy := retry.NewExponentialBackoff(cfg.PingRetry)
	err = policy.Execute(context.Background(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if pingErr := sqlDB.PingContext(pingCtx); pingErr != nil {
			logger.Warn("Database ping failed", "error", pingErr)
			return pingErr
		}
		return nil
	})
	if err != nil {
		logger.Error("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established successfully", "driver", cfg.Driver)
	return gdb, nil
}

// OpenDatabase applies the GORM settings every caller relies on. TranslateError
// surfaces unique violations as gorm.ErrDuplicatedKey.
func OpenDatabase(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func buildDialector(logger *log.Logger, cfg *DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		dsn := sanitizeEnv(GetValueFromEnvironmentVariable("SQLITE_DSN", "waitlist.db"))
		logger.Info("Using SQLite database", "dsn", dsn)
		return sqlite.Open(dsn), nil
	case DriverPostgres, "":
		dsn, err := buildDSNFromEnv(logger, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (allowed: postgres, sqlite)", cfg.Driver)
	}
}

func buildDSNFromEnv(logger *log.Logger, cfg *DBConfig) (string, error) {
	if appDatabaseURL := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")); appDatabaseURL != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return appDatabaseURL, nil
	}

	host, portStr, user, pass, dbName, ssl := getDatabaseEnvParams()
	if ssl == "" {
		ssl = cfg.SSLMode
	}

	missing := []string{}

	if host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}

	if portStr == "" {
		missing = append(missing, "POSTGRES_PORT")
	}

	if user == "" {
		missing = append(missing, "POSTGRES_USER")
	}

	if dbName == "" {
		missing = append(missing, "POSTGRES_DB_NAME")
	}

	if len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))
		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Error("Invalid POSTGRES_PORT", "error", err)
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", portStr, err)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, dbName, ssl,
	)

	logger.Info("Connecting to database",
		"host", host,
		"port", port,
		"user", user,
		"dbname", dbName,
		"sslmode", ssl,
	)
	return dsn, nil
}

func getDatabaseEnvParams() (host, port, user, pass, dbName, ssl string) {
	host = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_HOST", ""))
	port = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PORT", ""))
	user = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_USER", ""))
	pass = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PASSWORD", ""))
	dbName = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_DB_NAME", ""))
	ssl = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_SSLMODE", ""))

	return host, port, user, pass, dbName, ssl
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		logger.Error("Cannot migrate: db is empty")
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database migration completed successfully")

	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	} else {
		logger.Info("Database closed successfully")
	}
}
