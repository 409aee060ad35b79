package domain

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name_ar"`
	ParentID  *string   `json:"parentId"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name_ar"`
	Description  string    `json:"desc_ar"`
	PriceInt     int64     `json:"priceInt"`
	OldPriceInt  *int64    `json:"oldPriceInt,omitempty"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	IsAvailable  bool      `json:"isAvailable"`
	SortOrder    int       `json:"sortOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
