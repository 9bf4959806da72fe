package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// command is one migrate subcommand. Database commands get a migrator,
// file commands get nil.
type command struct {
	usage   string
	args    int
	needsDB bool
	run     func(env *cliEnv, args []string) error
}

type cliEnv struct {
	log  *zap.Logger
	path string
	m    *migration.Migrator
}

var commands = map[string]command{
	"up":   {usage: "up", needsDB: true, run: func(e *cliEnv, _ []string) error { return e.m.Up() }},
	"down": {usage: "down", needsDB: true, run: func(e *cliEnv, _ []string) error { return e.m.Down() }},
	"step": {usage: "step <n>", args: 1, needsDB: true, run: func(e *cliEnv, a []string) error {
		n, err := strconv.Atoi(a[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", a[0])
		}
		return e.m.Steps(n)
	}},
	"goto": {usage: "goto <version>", args: 1, needsDB: true, run: func(e *cliEnv, a []string) error {
		v, err := strconv.ParseUint(a[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", a[0])
		}
		return e.m.GoTo(uint(v))
	}},
	"force": {usage: "force <version>", args: 1, needsDB: true, run: func(e *cliEnv, a []string) error {
		v, err := strconv.Atoi(a[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", a[0])
		}
		return e.m.Force(v)
	}},
	"status": {usage: "status", needsDB: true, run: printStatus},
	"version": {usage: "version", needsDB: true, run: printStatus},
	"create": {usage: "create <name> [description]", args: 1, run: func(e *cliEnv, a []string) error {
		desc := ""
		if len(a) > 1 {
			desc = a[1]
		}
		mf, err := migration.CreateMigration(e.path, a[0], desc)
		if err != nil {
			return err
		}
		e.log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath))
		return nil
	}},
	"list": {usage: "list", run: func(e *cliEnv, _ []string) error {
		files, err := migration.ListMigrations(e.path)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			e.log.Info("No migrations found")
		}
		for _, f := range files {
			fmt.Println("  -", f.Name)
		}
		return nil
	}},
}

func printStatus(e *cliEnv, _ []string) error {
	st, err := e.m.Status()
	if err != nil {
		return err
	}
	e.log.Info("Migration status",
		zap.Uint("version", st.Version),
		zap.Bool("dirty", st.Dirty),
		zap.Int("applied", len(st.Applied)),
		zap.Strings("pending", st.Pending))
	return nil
}

func main() {
	path := flag.String("path", "", "Path to migrations directory (default: ./migrations)")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	if len(args)-1 < cmd.args {
		fmt.Fprintf(os.Stderr, "usage: migrate %s\n", cmd.usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(log, *path, cmd, args[1:]); err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
}

func run(log *zap.Logger, path string, cmd command, args []string) error {
	dir, err := resolveMigrationsPath(path)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}
	env := &cliEnv{log: log, path: dir}
	if !cmd.needsDB {
		return cmd.run(env, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("SQL migrations target PostgreSQL; sqlite databases are created by the server on startup")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	env.m, err = migration.New(db, dir, log)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer env.m.Close()
	return cmd.run(env, args)
}

// resolveMigrationsPath tries ./migrations, then ../../migrations relative
// to the executable
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	fmt.Println(`Murdhanno database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  status                Show current version and pending migrations
  force <version>       Clear a dirty state by forcing the version
  create <name> [desc]  Create a new migration file pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: ./migrations)
  -log-level string     debug, info, warn, error (default: info)

The database comes from the same MURDHANNO_DATABASE_* settings the server uses.`)
}
