package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akeren/multiverse-waitlist/config"
	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/migrations"
	"github.com/akeren/multiverse-waitlist/pkg/utils"
	"github.com/akeren/multiverse-waitlist/pkg/waitlistclient"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger)

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "migrate":
		err = runMigrate(logger, args[1:])
	case "export":
		err = runExport(logger, args[1:])
	case "stats":
		err = runStats(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Command failed", "command", args[0], "error", err.Error())
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate [up|down N|version]  Run the SQL migrations (default: up)")
	fmt.Println("  export  [-out file]          Log in as admin and write the waitlist as CSV")
	fmt.Println("  stats                        Log in as admin and print waitlist stats as JSON")
	fmt.Println("  help                         Show this message")
	fmt.Println()
	fmt.Println("export and stats read WAITLIST_API_URL and ADMIN_PASSWORD.")
}

func runMigrate(logger *log.Logger, args []string) error {
	dbCfg := config.NewDBConfigFromEnv()
	if dbCfg.Driver == config.DriverSQLite {
		return errors.New("SQL migrations target postgres; start the server with --auto-migrate for sqlite")
	}

	db, err := config.NewDatabase(logger, dbCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	cfg := migrations.Config{
		Dir:    utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", migrations.DefaultDir),
		Logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	action := "up"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "up":
		return migrations.Up(ctx, sqlDB, cfg)
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[1])
			}
		}
		return migrations.Down(ctx, sqlDB, cfg, steps)
	case "version":
		status, err := migrations.CurrentVersion(ctx, sqlDB, cfg)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(status)
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
}

func runExport(logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (default qsv-waitlist-YYYY-MM-DD.csv, - for stdout)")
	period := fs.String("period", string(waitlistclient.PeriodAll), "all, today or week")
	search := fs.String("search", "", "case-insensitive match on email, country or utm source")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := time.Now()
	entries, err := fetchEntries()
	if err != nil {
		return err
	}
	entries = waitlistclient.FilterEntries(entries, waitlistclient.Period(*period), *search, now)
	waitlistclient.SortEntries(entries, waitlistclient.SortByCreatedAt, false)

	path := *out
	if path == "" {
		path = waitlistclient.ExportFilename(now)
	}

	if err := writeExport(path, entries); err != nil {
		return err
	}

	logger.Info("Waitlist exported", "entries", len(entries), "file", path)
	return nil
}

// writeExport writes entries as CSV to path, or to stdout when path is "-".
// The file is closed before returning so a failed final write is reported.
func writeExport(path string, entries []waitlistclient.Entry) error {
	if path == "-" {
		if err := waitlistclient.WriteCSV(os.Stdout, entries); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := waitlistclient.WriteCSV(f, entries); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := fetchEntries()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(waitlistclient.ComputeStats(entries, time.Now()))
}

// fetchEntries logs in, reads the full listing and revokes the session again.
func fetchEntries() ([]waitlistclient.Entry, error) {
	baseURL := utils.GetEnvTrimmedOrDefault("WAITLIST_API_URL", "http://localhost:8080")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return nil, errors.New("ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := waitlistclient.New(baseURL)
	session, err := client.Login(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer func() { _ = client.Logout(ctx, session.Token) }()

	entries, err := client.ListEntries(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}
