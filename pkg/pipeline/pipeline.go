// Package pipeline wires the identification stages together: geometry,
// region preprocessing, text recognition, catalog retrieval, visual
// tie-breaking and chase evaluation. Every stage that can come up empty has a
// defined fallback; "not found" is a result, never an error.
package pipeline

import (
	"context"
	"errors"
	"image"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"cardlens/pkg/catalog"
	"cardlens/pkg/collectorid"
	"cardlens/pkg/geometry"
	"cardlens/pkg/region"
	"cardlens/pkg/vision"
)

// CatalogService is the slice of the catalog client the pipeline needs.
type CatalogService interface {
	SearchByNumber(ctx context.Context, number, total, setPrefix string) ([]catalog.Entry, error)
	GetSetChaseCard(ctx context.Context, setID string) (*catalog.Entry, error)
	GetPrice(ctx context.Context, catalogID, variant string) (*catalog.Price, error)
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
	EvaluateChase(ctx context.Context, cand catalog.Candidate) catalog.ChaseResult
}

// Pipeline runs one identification attempt per call. It holds no per-request
// state, so a single Pipeline serves concurrent requests.
type Pipeline struct {
	Catalog CatalogService
	OCR     vision.TextReader
	Visual  vision.Identifier
	// Workers bounds per-candidate fan-out (reference fetches, chase
	// lookups). Zero means defaultWorkers.
	Workers int
}

const defaultWorkers = 4

// Result is the sole externally visible output of an identification attempt.
type Result struct {
	NormalizedID string              `json:"normalized_id"`
	RawText      string              `json:"raw_text"`
	Confidence   float64             `json:"confidence"`
	Shape        string              `json:"shape,omitempty"`
	Candidates   []catalog.Candidate `json:"candidates"`
	Feedback     string              `json:"feedback"`
}

// retrievalOutcome tags how the candidate list was obtained, so every caller
// handles all three paths explicitly instead of null-checking.
type retrievalOutcome int

const (
	outcomeFound retrievalOutcome = iota
	outcomeFallbackVisual
	outcomeExhausted
)

// Identify resolves a card photo to an ordered list of variant candidates.
// The only errors returned are context cancellation and image-contract
// violations; every expected empty stage degrades into a Result with feedback.
func (p *Pipeline) Identify(ctx context.Context, photo image.Image) (*Result, error) {
	rectified, err := geometry.Rectify(photo)
	if errors.Is(err, geometry.ErrNoCard) {
		// Re-invocations after a manual crop hand us an already rectified
		// card that fills the frame, where boundary detection has nothing to
		// find. Proceed with the photo as-is.
		log.Printf("identify: no card boundary, proceeding with full frame")
		rectified = imaging.Clone(photo)
	} else if err != nil {
		return nil, err
	}

	res := &Result{}
	strips, err := region.CornerStrips(rectified)
	if err != nil {
		res.Feedback = "The photo is too small to read a collector number from."
		return res, nil
	}
	corner, err := p.OCR.ReadCorners(ctx,
		region.BinarizeDefault(strips.BottomLeft),
		region.BinarizeDefault(strips.BottomRight))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("identify: ocr failed: %v", err)
		corner = vision.CornerText{}
	}
	res.RawText = corner.Text

	id, perr := collectorid.Parse(corner.Text, corner.Confidence)
	if perr == nil {
		res.NormalizedID = id.Normalized
		res.Confidence = id.Confidence
		res.Shape = string(id.Shape)
	}

	entries, normalized, outcome, synthesized := p.retrieve(ctx, rectified, id)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if normalized != "" && res.NormalizedID == "" {
		res.NormalizedID = normalized
	}

	var candidates []catalog.Candidate
	switch outcome {
	case outcomeFound:
		for _, e := range entries {
			candidates = append(candidates, catalog.ExpandVariants(e, res.NormalizedID)...)
		}
	case outcomeFallbackVisual:
		candidates = []catalog.Candidate{*synthesized}
	case outcomeExhausted:
		if id == nil {
			res.Feedback = "No collector number could be read from the card. Try a sharper, closer photo of the bottom corners."
		} else {
			res.Feedback = "Read collector number " + res.NormalizedID + " but found no matching catalog entry."
		}
		return res, nil
	}

	if len(candidates) > 1 {
		candidates = p.tieBreak(ctx, rectified, candidates)
	}
	candidates = p.enrichChase(ctx, candidates)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	sortCandidates(candidates)
	res.Candidates = candidates
	switch {
	case outcome == outcomeFallbackVisual:
		res.Feedback = "No catalog match; showing the closest visual guess."
	case len(candidates) == 1:
		res.Feedback = "Matched a single print variant."
	default:
		res.Feedback = "Multiple print variants are plausible; pick the right one."
	}
	return res, nil
}

// retrieve turns a parsed identifier (or its absence) into catalog entries,
// walking the fallback ladder: scoped query, unscoped retry, visual re-query,
// synthesized visual candidate.
func (p *Pipeline) retrieve(ctx context.Context, rectified image.Image, id *collectorid.Identifier) ([]catalog.Entry, string, retrievalOutcome, *catalog.Candidate) {
	if id != nil {
		prefix := id.DenominatorPrefix
		if prefix == "" {
			prefix = id.Prefix
		}
		entries, err := p.Catalog.SearchByNumber(ctx, id.Normalized, id.Denominator, prefix)
		if err != nil {
			log.Printf("retrieve: scoped search %q: %v", id.Normalized, err)
		}
		if len(entries) == 0 {
			// A total or prefix mismatch must not be a hard failure.
			entries, err = p.Catalog.SearchByNumber(ctx, id.Normalized, "", "")
			if err != nil {
				log.Printf("retrieve: unscoped search %q: %v", id.Normalized, err)
			}
		}
		if picked := pickEntries(entries, id); len(picked) > 0 {
			return picked, id.Normalized, outcomeFound, nil
		}
	}

	if p.Visual == nil {
		return nil, "", outcomeExhausted, nil
	}
	guess, err := p.Visual.Lookup(ctx, rectified)
	if err != nil {
		log.Printf("retrieve: visual lookup: %v", err)
		guess = nil
	}
	if guess == nil {
		return nil, "", outcomeExhausted, nil
	}
	if guess.Number != "" {
		entries, err := p.Catalog.SearchByNumber(ctx, guess.Number, "", "")
		if err != nil {
			log.Printf("retrieve: visual re-query %q: %v", guess.Number, err)
		}
		if len(entries) > 0 {
			return entries, guess.Number, outcomeFound, nil
		}
	}
	synth := catalog.Synthesize(guess.CardName, guess.SetName, guess.Number, guess.Rarity)
	return nil, guess.Number, outcomeFallbackVisual, &synth
}

// pickEntries applies the retrieval preference order: exact number matches
// first; among those, entries whose set total matches the parsed denominator;
// exact-number matches ignoring the denominator when no total agrees.
func pickEntries(entries []catalog.Entry, id *collectorid.Identifier) []catalog.Entry {
	var exact []catalog.Entry
	for _, e := range entries {
		if sameNumber(e.Number, id.Normalized) || sameNumber(e.Number, id.Number) {
			exact = append(exact, e)
		}
	}
	if len(exact) == 0 {
		return entries
	}
	if id.Denominator != "" {
		var totalMatch []catalog.Entry
		for _, e := range exact {
			if e.Set.Total > 0 && sameNumber(strconv.Itoa(e.Set.Total), id.Denominator) {
				totalMatch = append(totalMatch, e)
			}
		}
		if len(totalMatch) > 0 {
			return totalMatch
		}
	}
	return exact
}

func sameNumber(a, b string) bool {
	if b == "" {
		return false
	}
	return strings.EqualFold(trimLeadingZeros(a), trimLeadingZeros(b))
}

func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" && s != "" {
		return "0"
	}
	return t
}

// enrichChase resolves the chase flag and any missing price for every
// candidate with bounded fan-out. Results land by index, so the output order
// never depends on completion order.
func (p *Pipeline) enrichChase(ctx context.Context, cands []catalog.Candidate) []catalog.Candidate {
	if len(cands) == 0 || p.Catalog == nil {
		return cands
	}
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
			cr := p.Catalog.EvaluateChase(ctx, out[i])
			isChase := cr.IsChase
			out[i].IsChase = &isChase
			if out[i].Price == nil {
				out[i].Price = cr.Price
			}
		}(i)
	}
	wg.Wait()
	return out
}

func (p *Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return defaultWorkers
}

// sortCandidates orders the final list deterministically: confidence, then
// similarity, then variant label and catalog id as stable tiebreakers.
func sortCandidates(cands []catalog.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		as, bs := simOrZero(a), simOrZero(b)
		if as != bs {
			return as > bs
		}
		if a.Variant != b.Variant {
			return a.Variant < b.Variant
		}
		return a.CatalogID < b.CatalogID
	})
}

func simOrZero(c catalog.Candidate) float64 {
	if c.Similarity == nil {
		return 0
	}
	return *c.Similarity
}
