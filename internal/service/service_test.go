package service

import (
	"testing"

	"marketplace/aggregator/internal/catalog"
	"marketplace/aggregator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCategoryDocument = `{
	"version": "1",
	"categories": [
		{
			"slug": "electronics",
			"label": "Elektronik",
			"subCategories": [
				{
					"slug": "smartphones",
					"label": "Smartphones",
					"attributeExtractionPrompt": "Extract brand, model, storage and battery capacity.",
					"attributes": {"brand": "Samsung", "storage": "128GB"}
				}
			]
		}
	]
}`

func newTestService(t *testing.T) *Service {
	t.Helper()
	cat, err := catalog.Load([]byte(testCategoryDocument))
	require.NoError(t, err)
	return NewService(nil, nil, nil, nil, cat, 10, "test_group", 120)
}

func TestBuildProduct(t *testing.T) {
	s := newTestService(t)

	listing := &domain.Listing{
		Marketplace:  domain.MarketplaceEbayDE,
		ExternalID:   "2104567890",
		ListingURL:   "https://www.example.de/listings/2104567890",
		Title:        "Samsung Galaxy S21",
		Price:        "350 €",
		Condition:    "sehr gut erhalten",
		Color:        "Schwarz",
		CategoryHint: "smartphones",
		Attributes: []domain.Attribute{
			{Key: "size", Value: "128gb"},
			{Key: "size", Value: "4500mAh"},
			{Key: "size", Value: "6.1 zoll"},
			{Key: "brand", Value: " Samsung "},
		},
	}

	product := s.BuildProduct(listing)

	assert.Equal(t, domain.MarketplaceEbayDE, product.Marketplace)
	assert.Equal(t, "2104567890", product.ExternalID)
	assert.Equal(t, "used", product.Condition)
	assert.Equal(t, "Black", product.Color)
	assert.Equal(t, []string{"electronics", "smartphones"}, product.CategoryPath)

	require.Len(t, product.Attributes, 4)
	assert.Equal(t, domain.Attribute{Key: "storage", Value: "128GB"}, product.Attributes[0])
	assert.Equal(t, domain.Attribute{Key: "battery", Value: "4500mAh"}, product.Attributes[1])
	assert.Equal(t, domain.Attribute{Key: "screen_size", Value: `6.1"`}, product.Attributes[2])
	assert.Equal(t, domain.Attribute{Key: "brand", Value: "Samsung"}, product.Attributes[3])
}

func TestBuildProductDegradesGracefully(t *testing.T) {
	s := newTestService(t)

	listing := &domain.Listing{
		Marketplace:  domain.MarketplaceLeboncoin,
		ExternalID:   "998877665544",
		Title:        "Vélo enfant",
		Condition:    "nur abholung",
		CategoryHint: "not-in-catalog",
	}

	product := s.BuildProduct(listing)

	// Dirty inputs never fail the pipeline; they degrade to safe defaults.
	assert.Equal(t, "unknown", product.Condition)
	assert.Empty(t, product.Color)
	assert.Nil(t, product.CategoryPath)
	assert.Empty(t, product.Attributes)
}

func TestExtractionContext(t *testing.T) {
	s := newTestService(t)

	prompt, attrs := s.ExtractionContext([]string{"electronics", "smartphones"})
	assert.Equal(t, "Extract brand, model, storage and battery capacity.", prompt)
	require.NotNil(t, attrs)
	assert.Equal(t, "128GB", attrs["storage"])

	// Labels work in place of slugs.
	prompt, _ = s.ExtractionContext([]string{"Elektronik", "Smartphones"})
	assert.Equal(t, "Extract brand, model, storage and battery capacity.", prompt)

	prompt, attrs = s.ExtractionContext([]string{"unknown-path"})
	assert.Empty(t, prompt)
	assert.Nil(t, attrs)
}
