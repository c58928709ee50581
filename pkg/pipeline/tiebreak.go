package pipeline

import (
	"context"
	"image"
	"log"
	"sort"
	"sync"

	"cardlens/pkg/catalog"
	"cardlens/pkg/fingerprint"
	"cardlens/pkg/region"
)

// Corner weighting for the combined fingerprint distance. The left corner
// usually holds the collector number while the right holds incidental
// artwork, so it carries more weight.
const (
	weightBottomLeft  = 0.6
	weightBottomRight = 0.4
	// distanceCeiling normalizes combined Hamming distance into [0,1]
	// similarity. Empirical for the fingerprint length in use.
	distanceCeiling = 40.0
)

// tieBreak ranks multiple plausible candidates by visual similarity between
// the user's corner strips and each candidate's reference image. Candidates
// are never discarded here; a candidate with no usable reference image is
// scored at maximal distance and kept.
func (p *Pipeline) tieBreak(ctx context.Context, rectified image.Image, cands []catalog.Candidate) []catalog.Candidate {
	userStrips, err := region.IdentityStrips(rectified)
	if err != nil {
		return cands
	}
	userBL := fingerprint.Compute(region.BinarizeDefault(userStrips.BottomLeft))
	userBR := fingerprint.Compute(region.BinarizeDefault(userStrips.BottomRight))

	out := make([]catalog.Candidate, len(cands))
	copy(out, cands)
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers())
	for i := range out {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			sim := p.candidateSimilarity(ctx, out[i], userBL, userBR)
			out[i].Similarity = &sim
		}(i)
	}
	wg.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		return simOrZero(out[i]) > simOrZero(out[j])
	})
	// Blend catalog-match confidence with the new visual evidence: neither
	// the prior nor the similarity dominates alone.
	any := false
	for i := range out {
		if out[i].Similarity != nil {
			any = true
			break
		}
	}
	if any {
		for i := range out {
			out[i].Confidence = (catalog.CatalogConfidence + simOrZero(out[i])) / 2
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Confidence > out[j].Confidence
		})
	}
	return out
}

// candidateSimilarity fetches a candidate's reference image and compares its
// corner fingerprints against the user's. Missing images and extraction
// failures score 0 (maximal distance), not an error.
func (p *Pipeline) candidateSimilarity(ctx context.Context, cand catalog.Candidate, userBL, userBR fingerprint.Fingerprint) float64 {
	if cand.ImageURL == "" {
		return 0
	}
	ref, err := p.Catalog.FetchImage(ctx, cand.ImageURL)
	if err != nil {
		log.Printf("tiebreak: fetch %s: %v", cand.ImageURL, err)
		return 0
	}
	refStrips, err := region.IdentityStrips(ref)
	if err != nil {
		return 0
	}
	refBL := fingerprint.Compute(region.BinarizeDefault(refStrips.BottomLeft))
	refBR := fingerprint.Compute(region.BinarizeDefault(refStrips.BottomRight))
	dist := weightBottomLeft*float64(fingerprint.Distance(userBL, refBL)) +
		weightBottomRight*float64(fingerprint.Distance(userBR, refBR))
	sim := 1 - dist/distanceCeiling
	if sim < 0 {
		sim = 0
	}
	return sim
}
