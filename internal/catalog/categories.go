package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akaza50z/libabbitak/internal/domain"
)

// Categories lists the full category tree ordered by sort order, with the
// number of items attached to each node. activeOnly hides disabled nodes for
// the public menu.
func (r *Repository) Categories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.parent_id, c.image_url, c.sort_order,
		       c.is_active, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM items i WHERE i.category_id = c.id)
		FROM categories c
	`
	if activeOnly {
		query += " WHERE c.is_active = 1"
	}
	query += " ORDER BY c.sort_order"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		var parentID sql.NullString
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&parentID,
			&c.ImageURL,
			&c.SortOrder,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.ItemCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if parentID.Valid {
			c.ParentID = &parentID.String
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// CreateCategory appends the category at the end of the tree level by giving
// it the next sort order.
func (r *Repository) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	var maxOrder sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories`).Scan(&maxOrder)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to query max sort order: %w", err)
	}

	now := time.Now()
	c.ID = uuid.NewString()
	c.SortOrder = int(maxOrder.Int64) + 1
	if !maxOrder.Valid {
		c.SortOrder = 0
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO categories (id, name, parent_id, image_url, sort_order,
		       is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Name, nullable(c.ParentID), c.ImageURL, c.SortOrder,
		c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id string, c domain.Category) (domain.Category, error) {
	c.ID = id
	c.UpdatedAt = time.Now()

	query := `
		UPDATE categories
		SET name = $1, parent_id = $2, image_url = $3, sort_order = $4,
		    is_active = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Name, nullable(c.ParentID), c.ImageURL, c.SortOrder, c.IsActive,
		c.UpdatedAt, id,
	)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func nullable(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
