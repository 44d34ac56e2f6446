package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AngelCh415/ads-insights/internal/models"
)

// SQLiteStore persiste reglas y overrides de categorización.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS category_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_set TEXT NOT NULL,
		rule_name TEXT NOT NULL,
		pattern TEXT NOT NULL,
		category TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		UNIQUE(rule_set, rule_name)
	);

	CREATE TABLE IF NOT EXISTS category_overrides (
		rule_set TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		category TEXT NOT NULL,
		created_by TEXT,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (rule_set, entity_id)
	);

	CREATE INDEX IF NOT EXISTS idx_rules_set_priority ON category_rules(rule_set, priority DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) UpsertRule(ctx context.Context, r models.CategoryRule) (models.CategoryRule, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO category_rules (rule_set, rule_name, pattern, category, priority, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_set, rule_name) DO UPDATE SET
			pattern = excluded.pattern,
			category = excluded.category,
			priority = excluded.priority,
			is_active = excluded.is_active
		RETURNING id`,
		r.RuleSet, r.RuleName, r.Pattern, r.Category, r.Priority, r.IsActive,
	).Scan(&r.ID)
	if err != nil {
		return models.CategoryRule{}, fmt.Errorf("upsert rule %s: %w", r.RuleName, err)
	}
	return r, nil
}

func (s *SQLiteStore) SeedRule(ctx context.Context, r models.CategoryRule) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO category_rules (rule_set, rule_name, pattern, category, priority, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_set, rule_name) DO NOTHING`,
		r.RuleSet, r.RuleName, r.Pattern, r.Category, r.Priority, r.IsActive,
	)
	if err != nil {
		return false, fmt.Errorf("seed rule %s: %w", r.RuleName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ActiveRules respeta el orden de inserción; el categorizador ordena por prioridad.
func (s *SQLiteStore) ActiveRules(ctx context.Context, ruleSet string) ([]models.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_set, rule_name, pattern, category, priority, is_active
		FROM category_rules
		WHERE rule_set = ? AND is_active = 1
		ORDER BY id ASC`, ruleSet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		if err := rows.Scan(&r.ID, &r.RuleSet, &r.RuleName, &r.Pattern, &r.Category, &r.Priority, &r.IsActive); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetOverride(ctx context.Context, o models.CategoryOverride) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_overrides (rule_set, entity_id, category, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(rule_set, entity_id) DO UPDATE SET
			category = excluded.category,
			created_by = excluded.created_by,
			created_at = excluded.created_at`,
		o.RuleSet, o.EntityID, o.Category, o.CreatedBy, o.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) DeleteOverride(ctx context.Context, ruleSet, entityID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM category_overrides WHERE rule_set = ? AND entity_id = ?`, ruleSet, entityID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Override(ctx context.Context, ruleSet, entityID string) (models.CategoryOverride, bool, error) {
	var o models.CategoryOverride
	var createdBy sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT rule_set, entity_id, category, created_by, created_at
		FROM category_overrides WHERE rule_set = ? AND entity_id = ?`, ruleSet, entityID,
	).Scan(&o.RuleSet, &o.EntityID, &o.Category, &createdBy, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CategoryOverride{}, false, nil
	}
	if err != nil {
		return models.CategoryOverride{}, false, err
	}
	o.CreatedBy = createdBy.String
	return o, true, nil
}
