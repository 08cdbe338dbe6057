package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/statementworks/recon/internal/common"
	"github.com/statementworks/recon/internal/model"
)

// CreateCategory creates a category. A non-empty parentID makes it a
// sub-category scoped to that parent.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, parentID string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	if parentID != "" {
		if _, err := s.GetCategoryByID(ctx, parentID); err != nil {
			return nil, fmt.Errorf("parent category: %w", err)
		}
	}

	cat := &model.Category{
		ID:       uuid.NewString(),
		Name:     name,
		ParentID: parentID,
		IsActive: true,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, parent_id, is_active) VALUES (?, ?, ?, 1)`,
		cat.ID, cat.Name, cat.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return cat, nil
}

// GetCategories returns all active categories, parents before children.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, parent_id, is_active, created_at FROM categories
		 WHERE is_active = 1 ORDER BY parent_id, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// GetCategoryByID retrieves one category.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id, is_active, created_at FROM categories WHERE id = ?`, id).
		Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.IsActive, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// CreateCustomer creates a counterparty record.
func (s *SQLiteStorage) CreateCustomer(ctx context.Context, name string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cust := &model.Customer{
		ID:   uuid.NewString(),
		Name: name,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, name) VALUES (?, ?)`, cust.ID, cust.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return cust, nil
}

// GetCustomers returns all customers ordered by name.
func (s *SQLiteStorage) GetCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []model.Customer
	for rows.Next() {
		var cust model.Customer
		if err := rows.Scan(&cust.ID, &cust.Name, &cust.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, cust)
	}
	return customers, rows.Err()
}

// GetCustomerByID retrieves one customer.
func (s *SQLiteStorage) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var cust model.Customer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM customers WHERE id = ?`, id).
		Scan(&cust.ID, &cust.Name, &cust.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &cust, nil
}
