// Database schema and seed data for the internal article store
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const Schema = `
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMP NOT NULL,
    source_name TEXT NOT NULL,
    source_id TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    sentiment TEXT NOT NULL CHECK(sentiment IN ('positive', 'negative', 'neutral')),
    url TEXT NOT NULL DEFAULT '',
    image TEXT,
    author TEXT,
    content TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const Indexes = `
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
CREATE INDEX IF NOT EXISTS idx_articles_category_published ON articles(category COLLATE NOCASE, published_at DESC);`

// DB represents our database connection and operations
type DB struct {
	*sql.DB
}

// Configuration for the database
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// SeedDemo inserts the dashboard demo headlines into an empty store.
	SeedDemo bool
}

// DefaultConfig returns the default database configuration
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
		SeedDemo:        true,
	}
}

// NewDB opens the SQLite store at dbPath and applies the schema.
func NewDB(dbPath string, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=ON&_synchronous=NORMAL",
		dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	if cfg.SeedDemo {
		if err := seedDemoArticles(ctx, db, time.Now().UTC()); err != nil {
			db.Close()
			return nil, fmt.Errorf("error seeding articles: %w", err)
		}
	}

	return &DB{db}, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
        PRAGMA journal_mode=WAL;
        PRAGMA synchronous=NORMAL;
        PRAGMA temp_store=MEMORY;
    `); err != nil {
		return fmt.Errorf("error setting pragmas: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, Indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing schema: %w", err)
	}
	return nil
}

type demoArticle struct {
	title, description, source, category, sentiment string
	age                                             time.Duration
}

var demoArticles = []demoArticle{
	{"AI Breakthrough in Medical Diagnostics", "New AI system can detect diseases with 99% accuracy, revolutionizing early diagnosis.", "Tech Innovations", "Technology", "positive", 0},
	{"Global Climate Summit Reaches Historic Agreement", "World leaders commit to ambitious carbon reduction targets by 2030.", "Global News Network", "World", "positive", time.Hour},
	{"Stock Markets Reach All-Time High", "Major indices surge as investor confidence grows amid economic recovery.", "Financial Times", "Business", "positive", 2 * time.Hour},
	{"New Security Vulnerability Found in Popular Software", "Millions of devices potentially affected by critical security flaw.", "Cyber Security News", "Technology", "negative", 3 * time.Hour},
	{"Major Sports Championship Ends in Upset Victory", "Underdog team wins championship in stunning last-minute victory.", "Sports Network", "Sports", "positive", 4 * time.Hour},
}

// seedDemoArticles fills an empty store; a store with rows is left alone.
func seedDemoArticles(ctx context.Context, db *sql.DB, now time.Time) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	insert := sq.Insert("articles").Columns("title", "description", "published_at", "source_name", "category", "sentiment")
	for _, d := range demoArticles {
		insert = insert.Values(d.title, d.description, now.Add(-d.age), d.source, d.category, d.sentiment)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}
