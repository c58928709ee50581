// Package vision wraps the two external recognition collaborators: the OCR
// text reader fed with binarized corner strips, and the visual-identification
// fallback that guesses a card from the whole photo.
package vision

import (
	"context"
	"image"
	"os"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// CornerText is the recognition result for a pair of corner strips.
type CornerText struct {
	Text       string
	Confidence float64
}

// TextReader extracts collector-ID text from the two bottom-corner strips of
// a rectified card. Implementations must report a malformed or empty read as
// confidence 0, never as an error the pipeline has to special-case.
type TextReader interface {
	ReadCorners(ctx context.Context, left, right image.Image) (CornerText, error)
}

// TesseractReader reads corner strips with a local Tesseract engine.
type TesseractReader struct{}

// idWhitelist restricts recognition to characters that can appear in a
// collector identifier.
const idWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ/-"

var idShapeRE = regexp.MustCompile(`^[A-Z]{0,5}-?\d+(/[A-Z]{0,3}\d+[A-Z]*)?$`)

// ReadCorners OCRs both strips and keeps the more plausible read. The left
// corner is tried first since it carries the collector number on most cards.
func (TesseractReader) ReadCorners(ctx context.Context, left, right image.Image) (CornerText, error) {
	best := CornerText{}
	for _, strip := range []image.Image{left, right} {
		if err := ctx.Err(); err != nil {
			return best, err
		}
		text := ocrStrip(strip)
		ct := CornerText{Text: text, Confidence: readConfidence(text)}
		if ct.Confidence > best.Confidence {
			best = ct
		}
	}
	return best, nil
}

func ocrStrip(strip image.Image) string {
	tmp, err := os.CreateTemp("", "corner-*.jpg")
	if err != nil {
		return ""
	}
	name := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(name)
	if err := imaging.Save(strip, name, imaging.JPEGQuality(95)); err != nil {
		return ""
	}
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetWhitelist(idWhitelist)
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	client.SetImage(name)
	text, err := client.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// readConfidence is a proxy score for how identifier-shaped a read is.
// Tesseract's per-word confidences are not exposed through the plain text
// call, so shape plausibility stands in for them.
func readConfidence(text string) float64 {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(text), ""))
	if cleaned == "" {
		return 0
	}
	if !strings.ContainsAny(cleaned, "0123456789") {
		return 0.2
	}
	if idShapeRE.MatchString(cleaned) {
		return 0.9
	}
	return 0.6
}
