package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"meatflow/internal/model"
	"meatflow/internal/store"
)

type Store struct {
	db *sql.DB
}

type recordKey struct {
	year                     int
	product, period, country string
	seq                      int
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertRecords writes one row per (record, indicator). Absent indicator
// values are stored as NULL so they stay absent on the way back. Records
// repeating a (year, product, period, country) key within the batch are
// numbered by occurrence and kept apart, so reloading the same batch
// overwrites rather than merges them.
func (s *Store) UpsertRecords(ctx context.Context, records []model.TradeRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_records (
			year, product_type, period, country, seq, indicator, value, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, product_type, period, country, seq, indicator)
		DO UPDATE SET
			value = excluded.value,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	occurrences := make(map[recordKey]int, len(records))
	for i := range records {
		record := records[i]
		key := recordKey{year: record.Year, product: record.ProductType, period: record.Period, country: record.Country}
		seq := occurrences[key]
		occurrences[key] = seq + 1
		for indicator, v := range record.Values {
			var value any
			if v.Valid {
				value = v.Float64
			}
			_, err = stmt.ExecContext(
				ctx,
				record.Year,
				record.ProductType,
				record.Period,
				record.Country,
				seq,
				string(indicator),
				value,
				now,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListRecords rebuilds records in first-insertion order of their
// (year, product, period, country) key.
func (s *Store) ListRecords(ctx context.Context, filter store.Filter) ([]model.TradeRecord, error) {
	query := `
		SELECT year, product_type, period, country, seq, indicator, value
		FROM trade_records
		WHERE 1 = 1
	`
	args := []any{}
	if filter.FromYear != 0 {
		query += " AND year >= ?"
		args = append(args, filter.FromYear)
	}
	if filter.ToYear != 0 {
		query += " AND year <= ?"
		args = append(args, filter.ToYear)
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[recordKey]int)
	records := make([]model.TradeRecord, 0)
	for rows.Next() {
		var key recordKey
		var indicator string
		var value sql.NullFloat64
		if err := rows.Scan(&key.year, &key.product, &key.period, &key.country, &key.seq, &indicator, &value); err != nil {
			return nil, err
		}
		i, ok := index[key]
		if !ok {
			i = len(records)
			index[key] = i
			records = append(records, model.TradeRecord{
				Year:        key.year,
				ProductType: key.product,
				Period:      key.period,
				Country:     key.country,
				Values:      make(map[model.Indicator]model.Value),
			})
		}
		records[i].Values[model.Indicator(indicator)] = model.Value{Float64: value.Float64, Valid: value.Valid}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) ListYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM trade_records ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS trade_records (
			year INTEGER NOT NULL,
			product_type TEXT NOT NULL,
			period TEXT NOT NULL,
			country TEXT NOT NULL,
			seq INTEGER NOT NULL DEFAULT 0,
			indicator TEXT NOT NULL,
			value REAL,
			ingested_at TEXT NOT NULL,
			PRIMARY KEY (year, product_type, period, country, seq, indicator)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trade_records_year ON trade_records (year);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
