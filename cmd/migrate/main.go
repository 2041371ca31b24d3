// Command migrate applies or rolls back the embedded schema migrations
// against the session database, independent of the server. Useful for
// resetting a deployment without starting the console.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/userconsole/internal/db/migrations"
)

func main() {
	_ = godotenv.Load()

	dbURL := flag.String("database-url", envOr("DATABASE_URL", "console.db"), "SQLite database path")
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	db, err := sql.Open("sqlite", *dbURL)
	if err != nil {
		slog.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		slog.Error("failed to read migrations", "err", err)
		os.Exit(1)
	}

	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		slog.Error("failed to init driver", "err", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		slog.Error("failed to init migrator", "err", err)
		os.Exit(1)
	}

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no change")
		return
	}
	if err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	version, dirty, _ := m.Version()
	fmt.Printf("migrations complete (version %d, dirty %v)\n", version, dirty)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
