package catalog

import (
	"context"
	"log"
)

// ChaseResult is the outcome of chase evaluation for one candidate.
type ChaseResult struct {
	IsChase bool
	Price   *Price
}

// EvaluateChase determines whether a candidate is the single highest-value
// print in its release group. The rule is exact identity against the set's
// chase card, never a price threshold: a candidate a cent under the top card
// is not a chase. When the catalog reports a price tie the catalog's own
// ordering decides which card it returns; that choice is accepted as-is.
func (c *Client) EvaluateChase(ctx context.Context, cand Candidate) ChaseResult {
	if cand.CatalogID == "" && cand.SetID == "" {
		return ChaseResult{IsChase: false, Price: cand.Price}
	}
	price := cand.Price
	if price == nil && cand.CatalogID != "" {
		p, err := c.GetPrice(ctx, cand.CatalogID, cand.Variant)
		if err != nil {
			log.Printf("chase price lookup %s: %v", cand.CatalogID, err)
		} else {
			price = p
		}
	}
	top, err := c.GetSetChaseCard(ctx, cand.SetID)
	if err != nil {
		log.Printf("chase lookup set %s: %v", cand.SetID, err)
		return ChaseResult{IsChase: false, Price: price}
	}
	if top == nil {
		return ChaseResult{IsChase: false, Price: price}
	}
	return ChaseResult{IsChase: top.ID == cand.CatalogID, Price: price}
}
