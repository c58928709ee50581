package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// Guess is a best-effort identification from the visual collaborator. Any
// field may be empty.
type Guess struct {
	CardName string `json:"card_name"`
	SetName  string `json:"set_name"`
	Number   string `json:"number"`
	Rarity   string `json:"rarity"`
}

// Identifier is the opaque visual-identification collaborator, consulted only
// when text recognition produced no usable collector ID.
type Identifier interface {
	Lookup(ctx context.Context, card image.Image) (*Guess, error)
}

// HTTPIdentifier posts the card image to a remote identification endpoint.
type HTTPIdentifier struct {
	baseURL string
	httpc   *http.Client
}

// NewHTTPIdentifier builds an identifier client for baseURL.
func NewHTTPIdentifier(baseURL string) *HTTPIdentifier {
	return &HTTPIdentifier{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Lookup sends one JPEG-encoded card image and decodes the best-effort guess.
// A response without a card name counts as no guess.
func (v *HTTPIdentifier) Lookup(ctx context.Context, card image.Image) (*Guess, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "card.jpg")
	if err != nil {
		return nil, err
	}
	if err := imaging.Encode(fw, card, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode card image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/identify", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, err := v.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("visual lookup: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visual lookup: status %d", res.StatusCode)
	}
	var g Guess
	if err := json.NewDecoder(res.Body).Decode(&g); err != nil {
		return nil, fmt.Errorf("visual decode: %w", err)
	}
	if g.CardName == "" {
		return nil, nil
	}
	return &g, nil
}
