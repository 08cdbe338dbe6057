package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
)

const patternColumns = `id, normalized_key, type, category_id, sub_category_id,
	customer_id, currency_pair, source, confidence,
	match_count, confirm_count, reject_count, is_active, is_regex,
	created_at, updated_at`

func scanPattern(row interface{ Scan(...any) error }) (*model.DescriptionPattern, error) {
	var p model.DescriptionPattern
	var patternType, source string
	err := row.Scan(
		&p.ID, &p.NormalizedKey, &patternType, &p.CategoryID, &p.SubCategoryID,
		&p.CustomerID, &p.CurrencyPair, &source, &p.Confidence,
		&p.MatchCount, &p.ConfirmCount, &p.RejectCount, &p.IsActive, &p.IsRegex,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Type = model.TransactionType(patternType)
	p.Source = model.PatternSource(source)
	return &p, nil
}

// CreatePattern creates a new description pattern.
func (s *SQLiteStorage) CreatePattern(ctx context.Context, pattern *model.DescriptionPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePattern(pattern); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (
			normalized_key, type, category_id, sub_category_id,
			customer_id, currency_pair, source, confidence,
			match_count, confirm_count, reject_count, is_active, is_regex
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pattern.NormalizedKey, string(pattern.Type),
		pattern.CategoryID, pattern.SubCategoryID,
		pattern.CustomerID, pattern.CurrencyPair,
		string(pattern.Source), pattern.Confidence,
		pattern.MatchCount, pattern.ConfirmCount, pattern.RejectCount,
		pattern.IsActive, pattern.IsRegex,
	)
	if err != nil {
		return fmt.Errorf("failed to create pattern: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pattern ID: %w", err)
	}

	pattern.ID = id
	pattern.CreatedAt = time.Now()
	pattern.UpdatedAt = time.Now()
	return nil
}

// GetPattern retrieves a pattern by ID.
func (s *SQLiteStorage) GetPattern(ctx context.Context, id int64) (*model.DescriptionPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM patterns WHERE id = ?`, id)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pattern %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern: %w", err)
	}
	return p, nil
}

// GetPatternByKey retrieves the pattern for a normalized key, or nil when no
// pattern exists for it.
func (s *SQLiteStorage) GetPatternByKey(ctx context.Context, key string) (*model.DescriptionPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+patternColumns+` FROM patterns WHERE normalized_key = ?`, key)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pattern by key: %w", err)
	}
	return p, nil
}

// GetActivePatterns retrieves all active patterns ordered by confidence.
func (s *SQLiteStorage) GetActivePatterns(ctx context.Context) ([]model.DescriptionPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+patternColumns+` FROM patterns
		 WHERE is_active = 1
		 ORDER BY confidence DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.DescriptionPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, *p)
	}
	return patterns, rows.Err()
}

// UpdatePattern writes a pattern's mutable fields.
func (s *SQLiteStorage) UpdatePattern(ctx context.Context, pattern *model.DescriptionPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePattern(pattern); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE patterns SET
			type = ?, category_id = ?, sub_category_id = ?,
			customer_id = ?, currency_pair = ?, confidence = ?,
			match_count = ?, confirm_count = ?, reject_count = ?,
			is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(pattern.Type), pattern.CategoryID, pattern.SubCategoryID,
		pattern.CustomerID, pattern.CurrencyPair, pattern.Confidence,
		pattern.MatchCount, pattern.ConfirmCount, pattern.RejectCount,
		pattern.IsActive, pattern.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pattern: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pattern %d: %w", pattern.ID, common.ErrNotFound)
	}
	return nil
}

// DeletePattern removes a pattern.
func (s *SQLiteStorage) DeletePattern(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pattern %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// IncrementPatternMatchCount bumps a pattern's match counter after it was
// applied or suggested during an import.
func (s *SQLiteStorage) IncrementPatternMatchCount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE patterns SET match_count = match_count + 1,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment pattern match count: %w", err)
	}
	return nil
}
