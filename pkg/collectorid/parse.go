// Package collectorid turns raw recognized text into a normalized collector
// identifier and classifies the identifier shape printed on the card.
package collectorid

import (
	"errors"
	"regexp"
	"strings"
)

// Shape classifies a collector identifier into one of the known printed forms.
type Shape string

const (
	// ShapeSubsetLettered covers trainer-gallery style numbers with a
	// lettered denominator, e.g. TG13/TG30.
	ShapeSubsetLettered Shape = "subset-lettered"
	// ShapeSubsetBare covers prefixed numbers over a plain total, e.g. TG13/30.
	ShapeSubsetBare Shape = "subset-bare"
	// ShapeFraction covers the standard number-over-total form, e.g. 058/102.
	ShapeFraction Shape = "fraction"
	// ShapePromo covers promo and simple codes, e.g. SWSH123.
	ShapePromo Shape = "promo"
	// ShapeOpaque is the fallback for anything else that still carries digits.
	ShapeOpaque Shape = "opaque"
)

// MinConfidence is the OCR-confidence floor below which no identifier is
// produced at all.
const MinConfidence = 0.4

// ErrNoIdentifier is returned when the text cannot yield an identifier. An
// expected outcome: the pipeline continues with zero catalog candidates.
var ErrNoIdentifier = errors.New("no collector identifier recognized")

// Identifier is a normalized collector-ID token.
type Identifier struct {
	// Normalized is the token used for catalog queries, e.g. "TG13" or "058".
	Normalized string
	Shape      Shape
	// Number is the numeric component of the identifier.
	Number string
	// Prefix is the lettered set/subset prefix if any, e.g. "TG" or "SWSH".
	Prefix string
	// Denominator is the printed set total if present, digits only.
	Denominator string
	// DenominatorPrefix is retained for catalog scoping on lettered
	// denominators, e.g. the "TG" in TG13/TG30.
	DenominatorPrefix string
	// Raw preserves the original OCR text before normalization.
	Raw        string
	Confidence float64
}

var (
	reSubsetLettered = regexp.MustCompile(`^([A-Z]{1,3})(\d+)/([A-Z]{1,3})(\d+)$`)
	reSubsetBare     = regexp.MustCompile(`^([A-Z]{1,3})(\d+)/(\d+)$`)
	reFraction       = regexp.MustCompile(`^(\d+)/(\d+)[A-Z]*$`)
	rePromo          = regexp.MustCompile(`^([A-Z]{2,5})-?(\d+)$`)
)

// Parse normalizes raw OCR text into a collector identifier. Shapes are tried
// in priority order and the first match wins. Returns ErrNoIdentifier when
// confidence is under the floor or the cleaned text has no digit.
func Parse(raw string, confidence float64) (*Identifier, error) {
	if confidence < MinConfidence {
		return nil, ErrNoIdentifier
	}
	cleaned := normalize(raw)
	if !strings.ContainsAny(cleaned, "0123456789") {
		return nil, ErrNoIdentifier
	}
	id := &Identifier{Raw: raw, Confidence: confidence}
	switch {
	case reSubsetLettered.MatchString(cleaned):
		m := reSubsetLettered.FindStringSubmatch(cleaned)
		id.Shape = ShapeSubsetLettered
		id.Prefix = m[1]
		id.Number = m[2]
		id.Normalized = m[1] + m[2]
		id.DenominatorPrefix = m[3]
		id.Denominator = m[4]
	case reSubsetBare.MatchString(cleaned):
		m := reSubsetBare.FindStringSubmatch(cleaned)
		id.Shape = ShapeSubsetBare
		id.Prefix = m[1]
		id.Number = m[2]
		id.Normalized = m[1] + m[2]
		id.Denominator = m[3]
	case reFraction.MatchString(cleaned):
		m := reFraction.FindStringSubmatch(cleaned)
		id.Shape = ShapeFraction
		id.Number = m[1]
		id.Normalized = m[1]
		id.Denominator = m[2]
	case rePromo.MatchString(cleaned):
		m := rePromo.FindStringSubmatch(cleaned)
		id.Shape = ShapePromo
		id.Prefix = m[1]
		id.Number = m[2]
		id.Normalized = m[1] + m[2]
	default:
		id.Shape = ShapeOpaque
		id.Normalized = cleaned
	}
	return id, nil
}

// normalize strips all whitespace, repairs common OCR confusions, then
// upper-cases. Letter repairs only apply inside segments that already carry
// digits; pure-alphabetic segments (legitimate prefixes) are left alone.
// Repairs run before upper-casing so a lowercase 'l' is still
// distinguishable from a legitimate uppercase 'L'.
func normalize(raw string) string {
	s := strings.Join(strings.Fields(raw), "")
	segments := strings.Split(s, "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, "0123456789") {
			segments[i] = repairConfusions(seg)
		}
	}
	return strings.ToUpper(strings.Join(segments, "/"))
}

func repairConfusions(seg string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'O', 'o':
			return '0'
		case 'I', 'l':
			return '1'
		default:
			return r
		}
	}, seg)
}
