package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akaza50z/libabbitak/internal/domain"
)

// ItemFilter narrows the public item listing. Zero value means everything
// that is available.
type ItemFilter struct {
	CategoryID string
	Search     string
}

const itemColumns = `
	i.id, i.name, i.description, i.price, i.old_price, i.category_id,
	c.name, i.image_url, i.is_available, i.sort_order, i.created_at,
	i.updated_at
`

// Items lists every item for the back office, ordered the way the menu
// shows them.
func (r *Repository) Items(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		ORDER BY c.sort_order, i.sort_order
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// PublicItems lists available items for the storefront, optionally filtered
// by category and a substring search over name and description.
func (r *Repository) PublicItems(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.is_available = 1
	`
	var args []interface{}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND i.category_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (i.name LIKE $%d OR i.description LIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY c.sort_order, i.sort_order"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Item fetches one item by id. Used to snapshot name and price when a line
// is added to a cart.
func (r *Repository) Item(ctx context.Context, id string) (domain.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to query item: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return domain.Item{}, err
	}
	if len(items) == 0 {
		return domain.Item{}, ErrItemNotFound
	}
	return items[0], nil
}

// CreateItem appends the item at the end of its category.
func (r *Repository) CreateItem(ctx context.Context, it domain.Item) (domain.Item, error) {
	var maxOrder sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM items WHERE category_id = $1`, it.CategoryID,
	).Scan(&maxOrder)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to query max sort order: %w", err)
	}

	now := time.Now()
	it.ID = uuid.NewString()
	it.SortOrder = int(maxOrder.Int64) + 1
	if !maxOrder.Valid {
		it.SortOrder = 0
	}
	it.CreatedAt = now
	it.UpdatedAt = now

	query := `
		INSERT INTO items (id, name, description, price, old_price,
		       category_id, image_url, is_available, sort_order, created_at,
		       updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		it.ID, it.Name, it.Description, it.PriceInt, nullableInt(it.OldPriceInt),
		it.CategoryID, it.ImageURL, it.IsAvailable, it.SortOrder,
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}
	return r.Item(ctx, it.ID)
}

func (r *Repository) UpdateItem(ctx context.Context, id string, it domain.Item) (domain.Item, error) {
	query := `
		UPDATE items
		SET name = $1, description = $2, price = $3, old_price = $4,
		    category_id = $5, image_url = $6, is_available = $7,
		    sort_order = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		it.Name, it.Description, it.PriceInt, nullableInt(it.OldPriceInt),
		it.CategoryID, it.ImageURL, it.IsAvailable, it.SortOrder,
		time.Now(), id,
	)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.Item{}, ErrItemNotFound
	}
	return r.Item(ctx, id)
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var oldPrice sql.NullInt64
		err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Description,
			&it.PriceInt,
			&oldPrice,
			&it.CategoryID,
			&it.CategoryName,
			&it.ImageURL,
			&it.IsAvailable,
			&it.SortOrder,
			&it.CreatedAt,
			&it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if oldPrice.Valid {
			it.OldPriceInt = &oldPrice.Int64
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func nullableInt(n *int64) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
