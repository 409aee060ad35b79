package cart

// Line is one entry in the cart. It is identified by its own LineID,
// independently of the catalog item it refers to; name and price are
// snapshots taken at add-time and never re-synced with the catalog.
type Line struct {
	LineID    string  `json:"id"`
	ProductID string  `json:"itemId"`
	Name      string  `json:"name_ar"`
	UnitPrice int64   `json:"priceInt"`
	Quantity  float64 `json:"quantity"`
	Notes     string  `json:"notes,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// CatalogRef is the shape addItem consumes: a reference to a catalog item
// plus optional notes and image hint.
type CatalogRef struct {
	ProductID string `json:"itemId"`
	Name      string `json:"name_ar"`
	UnitPrice int64  `json:"priceInt"`
	Notes     string `json:"notes,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}
