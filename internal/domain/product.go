package domain

// Product is the canonical record built from a normalized listing.
type Product struct {
	Marketplace  Marketplace `json:"marketplace"`
	ExternalID   string      `json:"external_id"`
	ListingURL   string      `json:"listing_url,omitempty"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Price        string      `json:"price,omitempty"`
	Condition    string      `json:"condition"`            // canonical bucket: new, used, broken, unknown
	Color        string      `json:"color,omitempty"`      // canonical color name where recognized
	Attributes   []Attribute `json:"attributes,omitempty"` // reclassified key/value pairs
	CategoryPath []string    `json:"category_path,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
}
