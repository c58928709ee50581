package catalog

import "strings"

// Base confidences assigned at expansion time.
const (
	// CatalogConfidence is the prior for candidates backed by a catalog id.
	CatalogConfidence = 0.9
	// SynthesizedConfidence is the prior for candidates guessed from the
	// visual-identification fallback with no catalog backing.
	SynthesizedConfidence = 0.7
)

// variantBuckets is the fixed fan-out order of the catalog's price-bucket map.
var variantBuckets = []struct {
	key   string
	label string
	holo  bool
}{
	{"normal", "Normal", false},
	{"holofoil", "Holofoil", true},
	{"reverseHolofoil", "Reverse Holofoil", true},
	{"1stEditionHolofoil", "1st Edition Holofoil", true},
	{"1stEdition", "1st Edition", false},
	{"unlimitedHolofoil", "Unlimited Holofoil", true},
	{"unlimited", "Unlimited", false},
}

// specialRarityMarkers flag rarity tags that name a specific premium print.
// A holofoil bucket on such an entry is labeled with the rarity itself
// ("Special Illustration Rare") instead of the generic bucket label.
var specialRarityMarkers = []string{
	"illustration rare",
	"secret",
	"rainbow",
	"hyper",
	"full art",
	"gold",
}

// ExpandVariants fans one catalog entry out into one Candidate per populated
// price bucket. An entry with no price buckets at all yields exactly one
// variant labeled by its rarity, with no price.
func ExpandVariants(e Entry, normalizedID string) []Candidate {
	base := Candidate{
		CatalogID:    e.ID,
		Name:         e.Name,
		SetID:        e.Set.ID,
		SetName:      e.Set.Name,
		Number:       e.Number,
		NormalizedID: normalizedID,
		Rarity:       e.Rarity,
		ImageURL:     e.Images.Large,
		Confidence:   CatalogConfidence,
		Source:       "catalog",
	}
	if base.ImageURL == "" {
		base.ImageURL = e.Images.Small
	}
	var out []Candidate
	for _, b := range variantBuckets {
		p, ok := e.Prices[b.key]
		if !ok {
			continue
		}
		cand := base
		cand.Variant = b.label
		if b.holo && isSpecialRarity(e.Rarity) {
			cand.Variant = e.Rarity
		}
		price := p
		cand.Price = &price
		out = append(out, cand)
	}
	if len(out) == 0 {
		cand := base
		cand.Variant = e.Rarity
		if cand.Variant == "" {
			cand.Variant = "Normal"
		}
		out = append(out, cand)
	}
	return out
}

// Synthesize builds the single low-confidence candidate used when both the
// catalog and its visual re-query came up empty but the visual collaborator
// produced a best-guess name.
func Synthesize(name, setName, number, rarity string) Candidate {
	variant := rarity
	if variant == "" {
		variant = "Normal"
	}
	return Candidate{
		Name:         name,
		SetName:      setName,
		Number:       number,
		NormalizedID: number,
		Rarity:       rarity,
		Variant:      variant,
		Confidence:   SynthesizedConfidence,
		Source:       "vision",
	}
}

// BestBucketPrice returns the entry's strongest quote, holofoil-style buckets
// taking priority over plain ones, plus the winning bucket label.
func BestBucketPrice(e Entry) (*Price, string) {
	var best *Price
	label := ""
	bestHolo := false
	for _, b := range variantBuckets {
		p, ok := e.Prices[b.key]
		if !ok {
			continue
		}
		price := p
		switch {
		case best == nil:
		case b.holo && !bestHolo:
		case b.holo == bestHolo && price.Market > best.Market:
		default:
			continue
		}
		best = &price
		label = b.label
		bestHolo = b.holo
	}
	return best, label
}

func isSpecialRarity(rarity string) bool {
	low := strings.ToLower(rarity)
	for _, m := range specialRarityMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}
