package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"staysearch/models"
	"staysearch/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter persists ranked listings and dual-mode evaluation runs.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens and pings the database.
func NewPostgresWriter(connStr string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// CreateTables creates the listings and evaluations tables if they don't
// exist, with indexes.
func (w *PostgresWriter) CreateTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id              SERIAL PRIMARY KEY,
		title           TEXT          NOT NULL,
		price_per_night NUMERIC(10,2) DEFAULT 0,
		currency        VARCHAR(3),
		rating          NUMERIC(4,2),
		review_count    INTEGER,
		url             TEXT UNIQUE,
		location        TEXT,
		check_in        DATE,
		check_out       DATE,
		saved_at        TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings (price_per_night);
	CREATE INDEX IF NOT EXISTS idx_listings_location ON listings (location);

	CREATE TABLE IF NOT EXISTS evaluations (
		session_id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		location   TEXT,
		winner     TEXT,
		payload    JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_winner ON evaluations (winner);
	`
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	w.logger.Info("Tables 'listings' and 'evaluations' are ready")
	return nil
}

// SaveListings inserts a ranked listing set in one transaction, skipping
// URL duplicates.
func (w *PostgresWriter) SaveListings(ctx models.SearchContext, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO listings (title, price_per_night, currency, rating, review_count, url, location, check_in, check_out, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (url) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, l := range listings {
		var rating interface{}
		if l.Rating != nil {
			rating = *l.Rating
		}
		var reviewCount interface{}
		if l.ReviewCount != nil {
			reviewCount = *l.ReviewCount
		}
		_, err = stmt.Exec(
			l.Title,
			l.PricePerNight,
			l.Currency,
			rating,
			reviewCount,
			l.URL,
			ctx.Location,
			ctx.CheckIn,
			ctx.CheckOut,
		)
		if err != nil {
			w.logger.Warn("Skipping insert for '%s': %v", l.Title, err)
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Inserted %d/%d listings into PostgreSQL", inserted, len(listings))
	return nil
}

// SaveEval persists one evaluation run, full payload as JSONB.
func (w *PostgresWriter) SaveEval(eval *models.EvalResult) error {
	payload, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO evaluations (session_id, created_at, location, winner, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO NOTHING
	`, eval.SessionID, eval.Timestamp, eval.Request.Location, eval.Comparison.Winner, payload)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	w.logger.Info("Evaluation %s stored", eval.SessionID)
	return nil
}

// Close closes the database connection.
func (w *PostgresWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}
