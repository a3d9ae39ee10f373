package domain

import "sort"

// ServiceTag names a subscribable category. The same tags drive both
// message classification and user subscription preferences.
type ServiceTag string

const (
	ServiceRentersRealEstate ServiceTag = "Renters Real Estate"
	ServiceSellersRealEstate ServiceTag = "Sellers Real Estate"
	ServiceCleaning          ServiceTag = "Cleaning Services"
	ServiceMoving            ServiceTag = "Moving & Transport"
)

// Catalog maps each service tag to its keyword phrases. Phrases are matched
// as lowercase substrings. A tag with an empty phrase list is a valid
// catalog entry that simply never matches.
type Catalog map[ServiceTag][]string

// Tags returns the catalog's tags in stable (lexicographic) order.
func (c Catalog) Tags() []ServiceTag {
	tags := make([]ServiceTag, 0, len(c))
	for tag := range c {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Has reports whether tag exists in the catalog.
func (c Catalog) Has(tag ServiceTag) bool {
	_, ok := c[tag]
	return ok
}

// DefaultCatalog returns the built-in service catalog with English,
// Georgian and Russian phrase lists.
func DefaultCatalog() Catalog {
	return Catalog{
		ServiceRentersRealEstate: {
			"for rent", "rental", "rent", "available for rent", "leasing",
			"rental property", "for lease", "rental unit",
			"ქირავდება", "გასაცემი", "გასაქირავებელი", "დაქირავება", "ქირა", "ხელმისაწვდომი",
			"аренда", "сдается", "в аренду", "арендуется", "квартиры в аренду",
			"сдам", "арендовать", "на аренду", "сниму квартиру",
		},
		ServiceSellersRealEstate: {
			"for sale", "selling apartment", "selling house", "to buy",
			"იყიდება", "გასაყიდი",
			"продается", "продам квартиру", "продам дом", "куплю квартиру",
		},
		ServiceCleaning: {
			"cleaning service", "deep cleaning", "house cleaning",
			"დალაგება", "დასუფთავება",
			"уборка", "клининг",
		},
		ServiceMoving: {
			"moving service", "movers", "cargo transport",
			"გადაზიდვა", "გადატანა",
			"перевозка", "грузоперевозки", "переезд",
		},
	}
}
