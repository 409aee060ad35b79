package domain

// Order mode decides which customer field checkout collects: a table number
// for dine-in or a delivery address for delivery.
const (
	ModeDineIn   = "dine-in"
	ModeDelivery = "delivery"
)

// Settings is the store-wide configuration singleton.
type Settings struct {
	ID             string `json:"id"`
	RestaurantName string `json:"restaurantName"`
	Address        string `json:"address,omitempty"`
	MapURL         string `json:"mapUrl,omitempty"`
	Phone          string `json:"phone,omitempty"`
	WhatsApp       string `json:"whatsapp,omitempty"`
	FacebookURL    string `json:"facebookUrl,omitempty"`
	InstagramURL   string `json:"instagramUrl,omitempty"`
	Currency       string `json:"currency"`
	LogoURL        string `json:"logoUrl,omitempty"`
	Mode           string `json:"mode"`
	IsOpen         bool   `json:"isOpen"`
	ExtraInfo      string `json:"extraInfo,omitempty"`
	MessageFooter  string `json:"messageFooter,omitempty"`
}

type AdminUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
