package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"vehicle-insights/models"
	"vehicle-insights/utils"
)

const listingColumns = 15

// PostgresWriter persists the analysed working set to PostgreSQL, one batch
// of rows per analysis run.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, logger: logger}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS vehicle_listings (
			id          SERIAL PRIMARY KEY,
			run_id      UUID          NOT NULL,
			brand       TEXT          NOT NULL DEFAULT '',
			model       TEXT          NOT NULL DEFAULT '',
			version     TEXT          NOT NULL DEFAULT '',
			body_type   TEXT          NOT NULL DEFAULT '',
			category    VARCHAR(16)   NOT NULL,
			condition   VARCHAR(8)    NOT NULL,
			price       NUMERIC(12,2),
			mileage     NUMERIC(12,1),
			model_year  INTEGER       NOT NULL DEFAULT 0,
			age         INTEGER       NOT NULL DEFAULT 0,
			cluster_id  INTEGER,
			city        TEXT          NOT NULL DEFAULT '',
			seller      TEXT          NOT NULL DEFAULT '',
			link        TEXT          NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_run      ON vehicle_listings(run_id);
		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_group    ON vehicle_listings(category, body_type);
		CREATE INDEX IF NOT EXISTS idx_vehicle_listings_cluster  ON vehicle_listings(cluster_id);
	`)
	return err
}

// Clear deletes the rows of a previous run with the same id.
func (pw *PostgresWriter) Clear(runID string) error {
	_, err := pw.db.Exec("DELETE FROM vehicle_listings WHERE run_id = $1", runID)
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts every listing of the working set under runID inside a
// single transaction.
func (pw *PostgresWriter) Write(runID string, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	if err := pw.Clear(runID); err != nil {
		return err
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	const batchSize = 200
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		query, args := insertQuery(runID, listings[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	pw.logger.Info("[postgres] Stored %d listings for run %s", len(listings), runID)
	return nil
}

// insertQuery builds a multi-row INSERT for one batch. Missing numerics are
// passed as NULL.
func insertQuery(runID string, batch []*models.Listing) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		ph := make([]string, listingColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			runID, l.Brand, l.Model, l.Version, l.BodyType, l.Category, l.Condition,
			l.Price, l.Mileage, l.ModelYear, l.Age, l.ClusterID, l.City, l.Link, l.Seller)
	}

	query := fmt.Sprintf(`
		INSERT INTO vehicle_listings (run_id, brand, model, version, body_type, category, condition,
			price, mileage, model_year, age, cluster_id, city, link, seller)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// CountRun returns how many rows are stored for runID.
func (pw *PostgresWriter) CountRun(runID string) (int, error) {
	var n int
	if err := pw.db.QueryRow("SELECT COUNT(*) FROM vehicle_listings WHERE run_id = $1", runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count run: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
