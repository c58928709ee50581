// Package catalog talks to the external card-catalog/pricing service and
// expands catalog entries into sellable print-variant candidates.
package catalog

// SetInfo identifies the release group a card belongs to.
type SetInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Images holds reference-image URLs for an entry.
type Images struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// Price is one market quote for a specific print variant.
type Price struct {
	Market   float64 `json:"market"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Currency string  `json:"currency"`
}

// Entry is an opaque record from the external catalog. The pipeline treats it
// as read-only input.
type Entry struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Number   string           `json:"number"`
	Rarity   string           `json:"rarity"`
	Subtypes []string         `json:"subtypes"`
	Set      SetInfo          `json:"set"`
	Images   Images           `json:"images"`
	Prices   map[string]Price `json:"prices"`
}

// Candidate is one sellable print-variant derived from an Entry, enriched by
// later pipeline stages. Stages build new Candidate values rather than
// mutating shared ones, so concurrent enrichment cannot alias.
type Candidate struct {
	CatalogID    string   `json:"catalog_id"`
	Name         string   `json:"name"`
	SetID        string   `json:"set_id"`
	SetName      string   `json:"set_name"`
	Number       string   `json:"number"`
	NormalizedID string   `json:"collector_id_normalized"`
	Rarity       string   `json:"rarity"`
	Variant      string   `json:"variant"`
	Price        *Price   `json:"price,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Confidence   float64  `json:"confidence"`
	Similarity   *float64 `json:"similarity,omitempty"`
	Source       string   `json:"source"`
	IsChase      *bool    `json:"is_chase,omitempty"`
}
