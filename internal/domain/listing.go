package domain

// Attribute is a raw key/value pair scraped from a listing page.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type ListingRef struct {
	ExternalID string `json:"external_id"`
	ListingURL string `json:"listing_url"`
}

type ListingPage struct {
	PageNumber   int          `json:"page_number"`    // Current page number
	TotalPages   int          `json:"total_pages"`    // Total number of pages
	TotalItems   int          `json:"total_items"`    // Total listings found
	ItemsPerPage int          `json:"items_per_page"` // Listings shown per page
	Marketplace  Marketplace  `json:"marketplace"`
	Items        []ListingRef `json:"items"` // Listings on this page
}

// Listing is the raw, un-normalized record as scraped from a marketplace.
type Listing struct {
	Marketplace  Marketplace `json:"marketplace"`
	ExternalID   string      `json:"external_id"`
	ListingURL   string      `json:"listing_url"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Price        string      `json:"price,omitempty"`
	Condition    string      `json:"condition,omitempty"`
	Color        string      `json:"color,omitempty"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	CategoryHint string      `json:"category_hint,omitempty"` // slug assigned by the external classifier
	ImageURL     string      `json:"image_url,omitempty"`
}
