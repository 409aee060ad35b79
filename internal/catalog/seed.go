package catalog

import (
	"context"
	"fmt"

	"github.com/akaza50z/libabbitak/internal/domain"
)

// Seed loads a small sample menu so a fresh install has something to show.
// Safe to re-run: it only fills empty tables.
func (r *Repository) Seed(ctx context.Context) error {
	settings, err := r.Settings(ctx)
	if err != nil {
		return err
	}
	if settings.RestaurantName == "المتجر" {
		settings.RestaurantName = "لباب بيتك"
		settings.Address = "الموصل - شارع المصرف"
		settings.Phone = "07704855444"
		settings.WhatsApp = "9647704855444"
		settings.Currency = "IQD"
		settings.Mode = domain.ModeDelivery
		settings.MessageFooter = "شكراً لزيارتكم"
		if _, err := r.UpdateSettings(ctx, settings); err != nil {
			return err
		}
	}

	categories, err := r.Categories(ctx, false)
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		return nil
	}

	produce, err := r.CreateCategory(ctx, domain.Category{Name: "فواكه و خضروات", IsActive: true})
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	fruits, err := r.CreateCategory(ctx, domain.Category{Name: "فواكه", ParentID: &produce.ID, IsActive: true})
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	veg, err := r.CreateCategory(ctx, domain.Category{Name: "خضروات", ParentID: &produce.ID, IsActive: true})
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	groceries, err := r.CreateCategory(ctx, domain.Category{Name: "غذائیات", IsActive: true})
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	seedItems := []domain.Item{
		{Name: "تفاح احمر", PriceInt: 2000, CategoryID: fruits.ID, IsAvailable: true},
		{Name: "موز", PriceInt: 1750, CategoryID: fruits.ID, IsAvailable: true},
		{Name: "طماطة", PriceInt: 1000, CategoryID: veg.ID, IsAvailable: true},
		{Name: "خيار", PriceInt: 1250, CategoryID: veg.ID, IsAvailable: true},
		{Name: "رز بسمتي 5 كغ", PriceInt: 12000, CategoryID: groceries.ID, IsAvailable: true},
	}
	for _, it := range seedItems {
		if _, err := r.CreateItem(ctx, it); err != nil {
			return fmt.Errorf("failed to seed items: %w", err)
		}
	}

	return nil
}
