// Package db provides PostgreSQL access for detection rules, the issue catalog and stored
// analysis results.
package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-analyzer/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the analyzer tables when they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// FetchAllRules returns every enabled detection rule in load order.
func (db *DB) FetchAllRules(ctx context.Context) ([]types.DetectionRule, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT issue_code, handler_type, detection_config, severity, weight,
		        message, suggestion, can_auto_fix, enabled
		 FROM detection_rules
		 WHERE enabled
		 ORDER BY load_order, issue_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []types.DetectionRule
	for rows.Next() {
		var (
			r        types.DetectionRule
			handler  string
			severity *string
			weight   *int
			config   []byte
			message  *string
			suggest  *string
			enabled  bool
		)
		if err := rows.Scan(&r.IssueCode, &handler, &config, &severity, &weight,
			&message, &suggest, &r.CanAutoFix, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		r.HandlerType = types.HandlerType(handler)
		if len(config) > 0 {
			if err := json.Unmarshal(config, &r.DetectionConfig); err != nil {
				return nil, fmt.Errorf("failed to unmarshal detection_config for %s: %w", r.IssueCode, err)
			}
		}
		if severity != nil {
			r.Severity = types.Severity(*severity)
		}
		if weight != nil {
			r.Weight = *weight
		}
		if message != nil {
			r.Message = *message
		}
		if suggest != nil {
			r.Suggestion = *suggest
		}
		r.Enabled = &enabled
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

// FetchCacheVersion returns the current rule set version token. A missing row reads as 0.
func (db *DB) FetchCacheVersion(ctx context.Context) (int64, error) {
	var version int64
	err := db.pool.QueryRow(ctx,
		`SELECT version FROM rule_cache_version WHERE id = 1`,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get cache version: %w", err)
	}
	return version, nil
}

// BumpCacheVersion increments the rule set version token and returns the new value.
func (db *DB) BumpCacheVersion(ctx context.Context) (int64, error) {
	var version int64
	err := db.pool.QueryRow(ctx,
		`INSERT INTO rule_cache_version (id, version, updated_at) VALUES (1, 1, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET version = rule_cache_version.version + 1, updated_at = NOW()
		 RETURNING version`,
	).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to bump cache version: %w", err)
	}
	return version, nil
}

// UpsertRule inserts or replaces a rule keyed by issue code.
func (db *DB) UpsertRule(ctx context.Context, r types.DetectionRule, loadOrder int) error {
	config, err := json.Marshal(r.DetectionConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal detection_config: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO detection_rules (issue_code, handler_type, detection_config, severity, weight,
		                              message, suggestion, can_auto_fix, enabled, load_order)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		 ON CONFLICT (issue_code) DO UPDATE SET
		     handler_type = EXCLUDED.handler_type,
		     detection_config = EXCLUDED.detection_config,
		     severity = EXCLUDED.severity,
		     weight = EXCLUDED.weight,
		     message = EXCLUDED.message,
		     suggestion = EXCLUDED.suggestion,
		     can_auto_fix = EXCLUDED.can_auto_fix,
		     enabled = EXCLUDED.enabled,
		     load_order = EXCLUDED.load_order`,
		r.IssueCode, string(r.HandlerType), config, string(r.Severity), r.Weight,
		r.Message, r.Suggestion, r.CanAutoFix, r.IsEnabled(), loadOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rule %s: %w", r.IssueCode, err)
	}
	return nil
}

// FetchAllCatalogEntries returns every catalog entry ordered by code.
func (db *DB) FetchAllCatalogEntries(ctx context.Context) ([]types.CatalogEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT issue_code, display_name, severity, weight, category,
		        COALESCE(subcategory, ''), COALESCE(description, ''), COALESCE(fix_guidance, ''),
		        can_auto_fix
		 FROM issue_catalog ORDER BY issue_code`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []types.CatalogEntry
	for rows.Next() {
		var e types.CatalogEntry
		var severity string
		if err := rows.Scan(&e.IssueCode, &e.DisplayName, &severity, &e.Weight, &e.Category,
			&e.Subcategory, &e.Description, &e.FixGuidance, &e.CanAutoFix); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		e.Severity = types.Severity(severity)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}
	return entries, nil
}

// FetchLegacyMapping returns the legacy code to canonical code aliases.
func (db *DB) FetchLegacyMapping(ctx context.Context) (map[string]string, error) {
	rows, err := db.pool.Query(ctx, `SELECT legacy_code, canonical_code FROM issue_code_aliases`)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy mapping: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var legacy, canonical string
		if err := rows.Scan(&legacy, &canonical); err != nil {
			return nil, fmt.Errorf("failed to scan legacy mapping: %w", err)
		}
		mapping[legacy] = canonical
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate legacy mapping: %w", err)
	}
	return mapping, nil
}

// AnalysisRecord is a stored analysis result.
type AnalysisRecord struct {
	ID           uuid.UUID            `json:"id"`
	Fingerprint  string               `json:"fingerprint"`
	Total        int                  `json:"total"`
	Grade        string               `json:"grade"`
	RulesVersion int64                `json:"rules_version"`
	Result       types.AnalysisResult `json:"result"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Fingerprint returns the hex SHA-256 of the analyzed text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SaveAnalysis stores a result and returns its id. The text itself is not stored, only its
// fingerprint.
func (db *DB) SaveAnalysis(ctx context.Context, text string, result *types.AnalysisResult) (uuid.UUID, error) {
	if result == nil {
		return uuid.Nil, errors.New("result is required")
	}
	content, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO analysis_results (id, fingerprint, total, grade, rules_version, result)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, Fingerprint(text), result.Score.Total, result.Score.Grade, result.RulesVersion, content,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis retrieves a stored result. It returns nil, nil when id is unknown.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, fingerprint, total, grade, rules_version, result, created_at
		 FROM analysis_results WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Fingerprint, &rec.Total, &rec.Grade, &rec.RulesVersion, &content, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if err := json.Unmarshal(content, &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &rec, nil
}

// ListAnalysesByFingerprint returns the ids of results stored for the same text, newest first.
func (db *DB) ListAnalysesByFingerprint(ctx context.Context, fingerprint string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM analysis_results WHERE fingerprint = $1 ORDER BY created_at DESC LIMIT $2`,
		fingerprint, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan analysis id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
