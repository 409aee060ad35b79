package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/akaza50z/libabbitak/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrAdminNotFound    = errors.New("admin user not found")
	ErrUsernameTaken    = errors.New("username already taken")
)

type Repository struct {
	db  *sql.DB
	sfg singleflight.Group // collapses concurrent settings reads
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// A single writer keeps sqlite happy under concurrent handlers.
	db.SetMaxOpenConns(1)

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Settings returns the store settings singleton, creating the default row on
// first read. Concurrent readers share one query.
func (r *Repository) Settings(ctx context.Context) (domain.Settings, error) {
	v, err, _ := r.sfg.Do("settings", func() (interface{}, error) {
		s, err := r.querySettings(ctx)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.Settings{}, err
		}

		s = domain.Settings{
			ID:             uuid.NewString(),
			RestaurantName: "المتجر",
			Currency:       "IQD",
			Mode:           domain.ModeDineIn,
			IsOpen:         true,
		}
		if err := r.insertSettings(ctx, s); err != nil {
			return domain.Settings{}, err
		}
		return s, nil
	})
	if err != nil {
		return domain.Settings{}, err
	}
	return v.(domain.Settings), nil
}

func (r *Repository) querySettings(ctx context.Context) (domain.Settings, error) {
	query := `
		SELECT id, restaurant_name, address, map_url, phone, whatsapp,
		       facebook_url, instagram_url, currency, logo_url, mode,
		       is_open, extra_info, message_footer
		FROM settings
		LIMIT 1
	`

	var s domain.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.ID,
		&s.RestaurantName,
		&s.Address,
		&s.MapURL,
		&s.Phone,
		&s.WhatsApp,
		&s.FacebookURL,
		&s.InstagramURL,
		&s.Currency,
		&s.LogoURL,
		&s.Mode,
		&s.IsOpen,
		&s.ExtraInfo,
		&s.MessageFooter,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Settings{}, err
		}
		return domain.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	return s, nil
}

func (r *Repository) insertSettings(ctx context.Context, s domain.Settings) error {
	query := `
		INSERT INTO settings (id, restaurant_name, address, map_url, phone,
		       whatsapp, facebook_url, instagram_url, currency, logo_url,
		       mode, is_open, extra_info, message_footer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.RestaurantName, s.Address, s.MapURL, s.Phone, s.WhatsApp,
		s.FacebookURL, s.InstagramURL, s.Currency, s.LogoURL, s.Mode,
		s.IsOpen, s.ExtraInfo, s.MessageFooter,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settings: %w", err)
	}
	return nil
}

// UpdateSettings overwrites the singleton, creating it if it is missing.
func (r *Repository) UpdateSettings(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	current, err := r.Settings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	s.ID = current.ID

	query := `
		UPDATE settings
		SET restaurant_name = $1, address = $2, map_url = $3, phone = $4,
		    whatsapp = $5, facebook_url = $6, instagram_url = $7,
		    currency = $8, logo_url = $9, mode = $10, is_open = $11,
		    extra_info = $12, message_footer = $13
		WHERE id = $14
	`
	_, err = r.db.ExecContext(ctx, query,
		s.RestaurantName, s.Address, s.MapURL, s.Phone, s.WhatsApp,
		s.FacebookURL, s.InstagramURL, s.Currency, s.LogoURL, s.Mode,
		s.IsOpen, s.ExtraInfo, s.MessageFooter, s.ID,
	)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return s, nil
}
