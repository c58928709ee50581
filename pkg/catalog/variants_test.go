package catalog

import "testing"

func entryWithPrices(prices map[string]Price) Entry {
	return Entry{
		ID:     "sv3pt5-151",
		Name:   "Mew ex",
		Number: "151",
		Rarity: "Double Rare",
		Set:    SetInfo{ID: "sv3pt5", Name: "151", Total: 165},
		Images: Images{Large: "https://img.example/sv3pt5/151_hires.png"},
		Prices: prices,
	}
}

func TestExpandVariantsTwoBuckets(t *testing.T) {
	e := entryWithPrices(map[string]Price{
		"normal":   {Market: 2.00, Currency: "USD"},
		"holofoil": {Market: 15.00, Currency: "USD"},
	})
	cands := ExpandVariants(e, "151")
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates got %d", len(cands))
	}
	if cands[0].Variant != "Normal" || cands[0].Price.Market != 2.00 {
		t.Fatalf("first candidate wrong: %+v", cands[0])
	}
	if cands[1].Variant != "Holofoil" || cands[1].Price.Market != 15.00 {
		t.Fatalf("second candidate wrong: %+v", cands[1])
	}
	for _, c := range cands {
		if c.Confidence != CatalogConfidence {
			t.Fatalf("expected base confidence %v got %v", CatalogConfidence, c.Confidence)
		}
		if c.NormalizedID != "151" {
			t.Fatalf("expected normalized id 151 got %q", c.NormalizedID)
		}
	}
}

func TestExpandVariantsSpecialRarityLabel(t *testing.T) {
	e := entryWithPrices(map[string]Price{"holofoil": {Market: 120.00}})
	e.Rarity = "Special Illustration Rare"
	cands := ExpandVariants(e, "151")
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate got %d", len(cands))
	}
	if cands[0].Variant != "Special Illustration Rare" {
		t.Fatalf("holofoil bucket on a special print should take the rarity label, got %q", cands[0].Variant)
	}
}

func TestExpandVariantsPlainRarityKeepsBucketLabel(t *testing.T) {
	e := entryWithPrices(map[string]Price{"reverseHolofoil": {Market: 4.50}})
	e.Rarity = "Common"
	cands := ExpandVariants(e, "151")
	if cands[0].Variant != "Reverse Holofoil" {
		t.Fatalf("got %q", cands[0].Variant)
	}
}

func TestExpandVariantsNoBuckets(t *testing.T) {
	e := entryWithPrices(nil)
	cands := ExpandVariants(e, "151")
	if len(cands) != 1 {
		t.Fatalf("expected exactly one variant got %d", len(cands))
	}
	if cands[0].Price != nil {
		t.Fatalf("no-bucket variant must carry no price")
	}
	if cands[0].Variant != "Double Rare" {
		t.Fatalf("no-bucket variant should be labeled by rarity, got %q", cands[0].Variant)
	}
}

func TestSynthesize(t *testing.T) {
	c := Synthesize("Pikachu", "Base Set", "58", "Common")
	if c.Confidence != SynthesizedConfidence || c.Source != "vision" {
		t.Fatalf("synthesized candidate wrong: %+v", c)
	}
	if c.Price != nil || c.CatalogID != "" {
		t.Fatalf("synthesized candidate must have no price or catalog id")
	}
}

func TestBestBucketPriceHoloPriority(t *testing.T) {
	e := entryWithPrices(map[string]Price{
		"normal":   {Market: 50.00},
		"holofoil": {Market: 12.00},
	})
	p, label := BestBucketPrice(e)
	if p == nil || p.Market != 12.00 || label != "Holofoil" {
		t.Fatalf("holofoil bucket should outrank a pricier plain one, got %v %q", p, label)
	}
}
