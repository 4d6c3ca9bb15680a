package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TrainingLog is one recorded trainer run.
type TrainingLog struct {
	ModelName string    `json:"model_name"`
	Dataset   string    `json:"dataset"`
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
	MAE       float64   `json:"mae"`
	MSE       float64   `json:"mse"`
	R2        float64   `json:"r2"`
	TrainedAt time.Time `json:"trained_at"`
}

// Store is the SQLite-backed training ledger.
type Store struct {
	database *sql.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50) NOT NULL,
        dataset TEXT NOT NULL,
        train_rows INTEGER NOT NULL,
        test_rows INTEGER NOT NULL,
        mae REAL NOT NULL,
        mse REAL NOT NULL,
        r2 REAL NOT NULL,
        trained_at DATETIME NOT NULL
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{database: database}, nil
}

func (s *Store) Close() error {
	return s.database.Close()
}

// SaveTrainingLog appends a run.
func (s *Store) SaveTrainingLog(ctx context.Context, entry TrainingLog) error {
	_, err := s.database.ExecContext(ctx, `
        INSERT INTO training_log (model_name, dataset, train_rows, test_rows, mae, mse, r2, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ModelName, entry.Dataset, entry.TrainRows, entry.TestRows,
		entry.MAE, entry.MSE, entry.R2, entry.TrainedAt.UTC())
	return err
}

// LoadTrainingLog returns runs newest first; limit <= 0 returns all of them.
func (s *Store) LoadTrainingLog(ctx context.Context, limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.database.QueryContext(ctx, `
        SELECT model_name, dataset, train_rows, test_rows, mae, mse, r2, trained_at
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Dataset, &log.TrainRows, &log.TestRows,
			&log.MAE, &log.MSE, &log.R2, &log.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// LatestTrainingLog returns the newest run, or nil when none is recorded.
func (s *Store) LatestTrainingLog(ctx context.Context) (*TrainingLog, error) {
	logs, err := s.LoadTrainingLog(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// Ping verifies the ledger is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.database.PingContext(ctx)
}
