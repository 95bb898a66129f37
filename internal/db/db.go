package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // The database driver
	"github.com/pressly/goose/v3"
	sqldblogger "github.com/simukti/sqldb-logger"
)

const dialect = "postgres"

// DB is the global database connection.
var DB *sqlx.DB

//go:embed migrations/*.sql
var migrations embed.FS

// psql builds statements with Postgres placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// InitDB initializes the database connection. When logQueries is set every statement
// is logged along with its duration.
func InitDB(databaseURL string, logQueries bool) {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var conn *sql.DB
	var err error
	if logQueries {
		conn = sqldblogger.OpenDriver(databaseURL, &pq.Driver{}, queryLogger{},
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
		)
	} else {
		conn, err = sql.Open(dialect, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
	}

	DB = sqlx.NewDb(conn, dialect)
	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Database connection established")
}

// Migrate applies the embedded migrations.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("cannot migrate before the database is initialized")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.Default())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(DB.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

type queryLogger struct{}

func (queryLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	query, ok := data["query"]
	if !ok {
		query = ""
	}
	switch level {
	case sqldblogger.LevelError:
		log.Printf("SQL %s: %v -- %s", msg, data["error"], query)
	default:
		log.Printf("SQL %s [%vms] -- %s", msg, data["duration"], query)
	}
}
