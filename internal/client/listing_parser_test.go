package client

import (
	"testing"

	"marketplace/aggregator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPageHTML = `
<html><body>
<div class="results">Seite 2 von 17 &mdash; 412 Anzeigen</div>
<article><a href="/s-anzeige/samsung-galaxy/2104567890">Samsung Galaxy</a></article>
<article><a href="/s-anzeige/router/2104567891">Router</a></article>
<article><a href="/s-anzeige/router/2104567891">Router duplicate link</a></article>
<article><a href="/impressum">not a listing</a></article>
</body></html>`

const listingDetailHTML = `
<html><body>
<nav class="breadcrumb">
  <a href="/c/electronics">Elektronik</a>
  <a href="/c/electronics/smartphones">Smartphones</a>
</nav>
<h1>Samsung Galaxy S21 128GB</h1>
<span id="viewad-price">350 €</span>
<div id="viewad-description-text">Kaum benutzt, mit OVP.</div>
<dl>
  <dt>Zustand:</dt><dd>Sehr gut</dd>
  <dt>Farbe:</dt><dd>Schwarz</dd>
  <dt>Size:</dt><dd>128gb</dd>
  <dt>Marke:</dt><dd>Samsung</dd>
</dl>
</body></html>`

func TestParseListingPage(t *testing.T) {
	p := newListingParser("https://www.example.de")

	page, err := p.ParseListingPage(listingPageHTML, domain.MarketplaceEbayDE)
	require.NoError(t, err)

	assert.Equal(t, 2, page.PageNumber)
	assert.Equal(t, 17, page.TotalPages)
	assert.Equal(t, 412, page.TotalItems)
	assert.Equal(t, domain.MarketplaceEbayDE, page.Marketplace)

	require.Len(t, page.Items, 2)
	assert.Equal(t, "2104567890", page.Items[0].ExternalID)
	assert.Equal(t, "https://www.example.de/s-anzeige/samsung-galaxy/2104567890", page.Items[0].ListingURL)
	assert.Equal(t, "2104567891", page.Items[1].ExternalID)
}

func TestParseListingPageWithoutPagination(t *testing.T) {
	p := newListingParser("https://www.example.de")

	html := `<html><body><article><a href="/s-anzeige/x/2104567890">x</a></article></body></html>`
	page, err := p.ParseListingPage(html, domain.MarketplaceEbayDE)
	require.NoError(t, err)

	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.TotalItems)
}

func TestParseListingPageEmpty(t *testing.T) {
	p := newListingParser("https://www.example.de")

	_, err := p.ParseListingPage("<html><body>Service temporarily unavailable</body></html>", domain.MarketplaceEbayDE)
	assert.Error(t, err)
}

func TestParseListingDetails(t *testing.T) {
	p := newListingParser("https://www.example.de")

	listing, err := p.ParseListingDetails(listingDetailHTML, domain.MarketplaceEbayDE, "2104567890")
	require.NoError(t, err)

	assert.Equal(t, "Samsung Galaxy S21 128GB", listing.Title)
	assert.Equal(t, "350 €", listing.Price)
	assert.Equal(t, "Kaum benutzt, mit OVP.", listing.Description)

	// Condition and color split out of the attribute rows, still raw.
	assert.Equal(t, "Sehr gut", listing.Condition)
	assert.Equal(t, "Schwarz", listing.Color)

	require.Len(t, listing.Attributes, 2)
	assert.Equal(t, domain.Attribute{Key: "size", Value: "128gb"}, listing.Attributes[0])
	assert.Equal(t, domain.Attribute{Key: "marke", Value: "Samsung"}, listing.Attributes[1])

	assert.Equal(t, "smartphones", listing.CategoryHint)
}

func TestParseListingDetailsWithoutTitle(t *testing.T) {
	p := newListingParser("https://www.example.de")

	_, err := p.ParseListingDetails("<html><body></body></html>", domain.MarketplaceEbayDE, "2104567890")
	assert.Error(t, err)
}
