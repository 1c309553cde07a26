package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/your-org/cucumber-report-enhanced/pkg/logger"
)

// timestampLayout sorts lexically, which the window queries rely on
const timestampLayout = time.RFC3339

// Database stores the history of report runs
type Database struct {
	db   *sql.DB
	path string
}

// ExecutionRecord represents one generated report run
type ExecutionRecord struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	DurationMs       float64   `json:"durationMs"`
	TotalFeatures    int       `json:"totalFeatures"`
	TotalScenarios   int       `json:"totalScenarios"`
	PassedScenarios  int       `json:"passedScenarios"`
	FailedScenarios  int       `json:"failedScenarios"`
	SkippedScenarios int       `json:"skippedScenarios"`
	SuccessRate      float64   `json:"successRate"`
	Environment      string    `json:"environment"`
	Source           string    `json:"source"`
}

// ScenarioRecord represents a single scenario outcome within a run
type ScenarioRecord struct {
	ExecutionID  string  `json:"executionId"`
	FeatureKey   string  `json:"featureKey"`
	FeatureName  string  `json:"featureName"`
	ScenarioName string  `json:"scenarioName"`
	Status       string  `json:"status"`
	DurationMs   float64 `json:"durationMs"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// FailurePattern tracks how often a normalised failure signature was seen
type FailurePattern struct {
	Signature       string    `json:"signature"`
	Classification  string    `json:"classification"`
	FirstSeen       time.Time `json:"firstSeen"`
	LastSeen        time.Time `json:"lastSeen"`
	OccurrenceCount int       `json:"occurrenceCount"`
}

// NewDatabase creates or opens history.db inside dir
func NewDatabase(dir string) (*Database, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return Open(filepath.Join(dir, "history.db"))
}

// Open opens the database file at dbPath and applies migrations
func Open(dbPath string) (*Database, error) {
	logger.Debugf("Opening history database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{
		db:   db,
		path: dbPath,
	}

	if err := database.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return database, nil
}

// Path returns the database file location
func (d *Database) Path() string {
	return d.path
}

// migrate creates or updates the database schema
func (d *Database) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			duration_ms REAL NOT NULL,
			total_features INTEGER,
			total_scenarios INTEGER,
			passed_scenarios INTEGER,
			failed_scenarios INTEGER,
			skipped_scenarios INTEGER,
			success_rate REAL,
			environment TEXT,
			source TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_execution_timestamp
		 ON executions(timestamp DESC)`,

		`CREATE TABLE IF NOT EXISTS scenario_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL,
			feature_key TEXT NOT NULL,
			feature_name TEXT NOT NULL,
			scenario_name TEXT NOT NULL,
			status TEXT NOT NULL,
			duration_ms REAL,
			error_message TEXT,
			FOREIGN KEY (execution_id) REFERENCES executions(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_scenario_identity
		 ON scenario_history(feature_key, scenario_name)`,

		`CREATE INDEX IF NOT EXISTS idx_scenario_execution
		 ON scenario_history(execution_id)`,

		`CREATE TABLE IF NOT EXISTS failure_patterns (
			signature TEXT PRIMARY KEY,
			classification TEXT,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL,
			occurrence_count INTEGER DEFAULT 1
		)`,
	}

	for i, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	return nil
}

// SaveRun stores an execution and its scenarios in one transaction
func (d *Database) SaveRun(exec *ExecutionRecord, scenarios []*ScenarioRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO executions (
			id, timestamp, duration_ms, total_features, total_scenarios,
			passed_scenarios, failed_scenarios, skipped_scenarios,
			success_rate, environment, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.Timestamp.UTC().Format(timestampLayout),
		exec.DurationMs,
		exec.TotalFeatures,
		exec.TotalScenarios,
		exec.PassedScenarios,
		exec.FailedScenarios,
		exec.SkippedScenarios,
		exec.SuccessRate,
		exec.Environment,
		exec.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO scenario_history (
			execution_id, feature_key, feature_name, scenario_name,
			status, duration_ms, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare scenario insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scenarios {
		if _, err := stmt.Exec(exec.ID, s.FeatureKey, s.FeatureName, s.ScenarioName,
			s.Status, s.DurationMs, s.ErrorMessage); err != nil {
			return fmt.Errorf("failed to save scenario %q: %w", s.ScenarioName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	logger.Debugf("Saved execution record %s with %d scenarios", exec.ID, len(scenarios))
	return nil
}

// GetRecentExecutions retrieves the last N executions, newest first
func (d *Database) GetRecentExecutions(limit int) ([]ExecutionRecord, error) {
	rows, err := d.db.Query(`
		SELECT
			id, timestamp, duration_ms, total_features, total_scenarios,
			passed_scenarios, failed_scenarios, skipped_scenarios,
			success_rate, environment, source
		FROM executions
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []ExecutionRecord
	for rows.Next() {
		var exec ExecutionRecord
		var timestamp string

		err := rows.Scan(
			&exec.ID,
			&timestamp,
			&exec.DurationMs,
			&exec.TotalFeatures,
			&exec.TotalScenarios,
			&exec.PassedScenarios,
			&exec.FailedScenarios,
			&exec.SkippedScenarios,
			&exec.SuccessRate,
			&exec.Environment,
			&exec.Source,
		)
		if err != nil {
			return nil, err
		}

		exec.Timestamp, _ = time.Parse(timestampLayout, timestamp)
		executions = append(executions, exec)
	}

	return executions, rows.Err()
}

// GetScenarioHistory retrieves outcomes of one scenario since the given time
func (d *Database) GetScenarioHistory(featureKey, scenarioName string, since time.Time) ([]ScenarioRecord, error) {
	rows, err := d.db.Query(`
		SELECT
			sh.execution_id, sh.feature_key, sh.feature_name, sh.scenario_name,
			sh.status, sh.duration_ms, sh.error_message
		FROM scenario_history sh
		JOIN executions e ON sh.execution_id = e.id
		WHERE sh.feature_key = ? AND sh.scenario_name = ?
		AND e.timestamp >= ?
		ORDER BY e.timestamp DESC`,
		featureKey, scenarioName, since.UTC().Format(timestampLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenarios []ScenarioRecord
	for rows.Next() {
		var scenario ScenarioRecord
		var errorMessage sql.NullString
		err := rows.Scan(
			&scenario.ExecutionID,
			&scenario.FeatureKey,
			&scenario.FeatureName,
			&scenario.ScenarioName,
			&scenario.Status,
			&scenario.DurationMs,
			&errorMessage,
		)
		if err != nil {
			return nil, err
		}
		scenario.ErrorMessage = errorMessage.String
		scenarios = append(scenarios, scenario)
	}

	return scenarios, rows.Err()
}

// CalculateFlakyScore calculates how flaky a scenario is (0.0 = stable, 1.0 = very flaky)
func (d *Database) CalculateFlakyScore(featureKey, scenarioName string, since time.Time) (score float64, runs int, failureRate float64, err error) {
	var failedRuns sql.NullInt64
	err = d.db.QueryRow(`
		SELECT
			COUNT(*) as total_runs,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed_runs
		FROM scenario_history sh
		JOIN executions e ON sh.execution_id = e.id
		WHERE sh.feature_key = ? AND sh.scenario_name = ?
		AND e.timestamp >= ?`,
		featureKey, scenarioName, since.UTC().Format(timestampLayout)).Scan(&runs, &failedRuns)
	if err != nil {
		return 0, 0, 0, err
	}

	if runs == 0 {
		return 0, 0, 0, nil
	}
	failureRate = float64(failedRuns.Int64) / float64(runs)

	// not enough data to call it flaky
	if runs < 3 {
		return 0, runs, failureRate, nil
	}

	// 0% or 100% failure = 0.0 (stable), 50% failure = 1.0
	score = 1.0 - (2.0 * abs(failureRate-0.5))
	return score, runs, failureRate, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RecordFailurePattern upserts a failure signature and returns the updated row
func (d *Database) RecordFailurePattern(signature, classification string, seenAt time.Time) (*FailurePattern, error) {
	ts := seenAt.UTC().Format(timestampLayout)
	_, err := d.db.Exec(`
		INSERT INTO failure_patterns (signature, classification, first_seen, last_seen, occurrence_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(signature) DO UPDATE SET
			last_seen = excluded.last_seen,
			classification = excluded.classification,
			occurrence_count = failure_patterns.occurrence_count + 1`,
		signature, classification, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to record failure pattern: %w", err)
	}
	return d.GetFailurePattern(signature)
}

// GetFailurePattern returns the stored pattern, or nil when never seen
func (d *Database) GetFailurePattern(signature string) (*FailurePattern, error) {
	var p FailurePattern
	var firstSeen, lastSeen string
	err := d.db.QueryRow(`
		SELECT signature, classification, first_seen, last_seen, occurrence_count
		FROM failure_patterns WHERE signature = ?`, signature).
		Scan(&p.Signature, &p.Classification, &firstSeen, &lastSeen, &p.OccurrenceCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.FirstSeen, _ = time.Parse(timestampLayout, firstSeen)
	p.LastSeen, _ = time.Parse(timestampLayout, lastSeen)
	return &p, nil
}

// CleanupOldData removes executions and scenario rows older than before
func (d *Database) CleanupOldData(before time.Time) (int64, error) {
	cutoff := before.UTC().Format(timestampLayout)

	if _, err := d.db.Exec(`
		DELETE FROM scenario_history WHERE execution_id IN (
			SELECT id FROM executions WHERE timestamp < ?
		)`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to cleanup scenario history: %w", err)
	}

	result, err := d.db.Exec(`DELETE FROM executions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup executions: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		logger.Infof("Cleaned up %d old executions", removed)
	}
	return removed, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
