package domain

type Marketplace string

func (m Marketplace) String() string {
	return string(m)
}

const (
	MarketplaceEbayDE      Marketplace = "ebay_de"
	MarketplaceEbayFR      Marketplace = "ebay_fr"
	MarketplaceLeboncoin   Marketplace = "leboncoin"
	MarketplaceWallapop    Marketplace = "wallapop"
	MarketplaceMarktplaats Marketplace = "marktplaats"
)

var Marketplaces = []Marketplace{
	MarketplaceEbayDE,
	MarketplaceEbayFR,
	MarketplaceLeboncoin,
	MarketplaceWallapop,
	MarketplaceMarktplaats,
}

func (m Marketplace) GetDisplayName() string {
	switch m {
	case MarketplaceEbayDE:
		return "eBay Kleinanzeigen"
	case MarketplaceEbayFR:
		return "eBay France"
	case MarketplaceLeboncoin:
		return "Leboncoin"
	case MarketplaceWallapop:
		return "Wallapop"
	case MarketplaceMarktplaats:
		return "Marktplaats"
	default:
		return "Unknown"
	}
}
