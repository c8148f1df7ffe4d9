package client

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"marketplace/aggregator/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

type listingParser struct {
	baseURL string

	paginationPattern *regexp.Regexp
	listingIDPattern  *regexp.Regexp
}

// Attribute keys that carry the listing condition or color on the result
// pages of the supported marketplaces.
var (
	conditionKeys = map[string]struct{}{
		"zustand": {}, "condition": {}, "état": {}, "etat": {},
		"estado": {}, "condizione": {}, "conditie": {}, "staat": {},
	}
	colorKeys = map[string]struct{}{
		"farbe": {}, "color": {}, "colour": {}, "couleur": {},
		"colore": {}, "kleur": {},
	}
)

func newListingParser(baseURL string) *listingParser {
	return &listingParser{
		baseURL: baseURL,
		// "Seite 2 von 50", "Page 2 of 50", "Page 2 sur 50"
		paginationPattern: regexp.MustCompile(`(?i)(?:seite|page|pagina|página)\s+(\d+)\s+(?:von|of|sur|de|di|van)\s+(\d+)`),
		listingIDPattern:  regexp.MustCompile(`(?:/|id=)(\d{6,})`),
	}
}

func (p *listingParser) ParseListingPage(html string, marketplace domain.Marketplace) (*domain.ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &domain.ListingPage{
		Marketplace: marketplace,
		Items:       make([]domain.ListingRef, 0),
	}

	p.extractItems(doc, page)

	if err := p.extractPaginationInfo(doc, page); err != nil {
		log.Warnf("Failed to extract pagination info: %v", err)
		return nil, err
	}

	log.Debugf("Parsed page %d with %d listings", page.PageNumber, len(page.Items))
	return page, nil
}

func (p *listingParser) extractPaginationInfo(doc *goquery.Document, page *domain.ListingPage) error {
	matches := p.paginationPattern.FindStringSubmatch(doc.Text())
	if len(matches) >= 3 {
		if currentPage, err := strconv.Atoi(matches[1]); err == nil {
			page.PageNumber = currentPage
		}
		if totalPages, err := strconv.Atoi(matches[2]); err == nil {
			page.TotalPages = totalPages
		}
	}

	// Result counters like "1.234 Anzeigen" or "1,234 results"
	countPattern := regexp.MustCompile(`([\d.,]+)\s+(?:anzeigen|ergebnisse|results|annonces|resultados|risultati|advertenties)`)
	if matches := countPattern.FindStringSubmatch(strings.ToLower(doc.Text())); len(matches) > 1 {
		digits := strings.NewReplacer(".", "", ",", "").Replace(matches[1])
		if totalItems, err := strconv.Atoi(digits); err == nil {
			page.TotalItems = totalItems
		}
	}

	if page.TotalPages > 0 {
		page.ItemsPerPage = len(page.Items)
		return nil
	}

	// Single result page without pagination controls still counts.
	if len(page.Items) > 0 {
		log.Warnf("No pagination text found, but found %d listings. Assuming single page.", len(page.Items))
		page.PageNumber = 1
		page.TotalPages = 1
		page.TotalItems = len(page.Items)
		page.ItemsPerPage = len(page.Items)
		return nil
	}

	return fmt.Errorf("no pagination text and no listings found")
}

func (p *listingParser) extractItems(doc *goquery.Document, page *domain.ListingPage) {
	seen := make(map[string]struct{})

	doc.Find("article a[href], li.ad-listitem a[href], div.listing a[href]").Each(func(i int, link *goquery.Selection) {
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		// External IDs are the long numeric part of the listing URL.
		matches := p.listingIDPattern.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}

		externalID := matches[1]
		if _, dup := seen[externalID]; dup {
			return
		}
		seen[externalID] = struct{}{}

		if !strings.HasPrefix(href, "http") {
			href = p.baseURL + href
		}

		page.Items = append(page.Items, domain.ListingRef{
			ExternalID: externalID,
			ListingURL: href,
		})
	})
}

// ParseListingDetails extracts the raw listing record from a detail page.
// Attribute rows stay raw here; normalization happens in the service.
func (p *listingParser) ParseListingDetails(html string, marketplace domain.Marketplace, externalID string) (*domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	listing := &domain.Listing{
		Marketplace: marketplace,
		ExternalID:  externalID,
	}

	listing.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	if listing.Title == "" {
		return nil, fmt.Errorf("no title found for listing %s", externalID)
	}

	listing.Price = strings.TrimSpace(doc.Find("[itemprop='price'], .price, #viewad-price").First().Text())
	listing.Description = strings.TrimSpace(doc.Find("[itemprop='description'], #viewad-description-text, .description").First().Text())

	if src, exists := doc.Find("[itemprop='image'], #viewad-image, .gallery img").First().Attr("src"); exists {
		listing.ImageURL = src
	}

	p.extractAttributes(doc, listing)
	listing.CategoryHint = p.extractCategoryHint(doc)

	log.Debugf("Parsed listing %s with %d attributes", externalID, len(listing.Attributes))
	return listing, nil
}

// extractCategoryHint takes the deepest breadcrumb link as the category
// slug. Breadcrumb hrefs carry the slug as their last path segment.
func (p *listingParser) extractCategoryHint(doc *goquery.Document) string {
	link := doc.Find("nav.breadcrumb a, .breadcrump a, ol.breadcrumb a").Last()
	href, exists := link.Attr("href")
	if !exists {
		return strings.TrimSpace(link.Text())
	}

	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndex(href, "/"); idx >= 0 {
		href = href[idx+1:]
	}
	return strings.TrimSpace(href)
}

// extractAttributes walks the detail tables (dt/dd pairs and two-column
// rows) and splits out condition and color from the generic attributes.
func (p *listingParser) extractAttributes(doc *goquery.Document, listing *domain.Listing) {
	addAttribute := func(key, value string) {
		key = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":")))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			return
		}

		if _, ok := conditionKeys[key]; ok {
			listing.Condition = value
			return
		}
		if _, ok := colorKeys[key]; ok {
			listing.Color = value
			return
		}

		listing.Attributes = append(listing.Attributes, domain.Attribute{Key: key, Value: value})
	}

	doc.Find("dl dt").Each(func(i int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		addAttribute(dt.Text(), dd.Text())
	})

	doc.Find("table.attributes tr, ul.addetailslist li").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td, span")
		if cells.Length() < 2 {
			return
		}
		addAttribute(cells.Eq(0).Text(), cells.Eq(1).Text())
	})
}
