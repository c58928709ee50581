// One-shot identification of a single card photo, printed as a table.
// Useful for tuning detection thresholds against problem photos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/disintegration/imaging"

	"cardlens/pkg/catalog"
	"cardlens/pkg/pipeline"
	"cardlens/pkg/vision"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", time.Minute, "overall identification timeout")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] photo.jpg\n", os.Args[0])
		os.Exit(1)
	}
	img, err := imaging.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open %s: %v", flag.Arg(0), err)
	}

	base := os.Getenv("CATALOG_BASE_URL")
	if base == "" {
		base = "http://localhost:9090"
	}
	pipe := &pipeline.Pipeline{
		Catalog: catalog.NewClient(base, os.Getenv("CATALOG_API_KEY")),
		OCR:     vision.TesseractReader{},
	}
	if v := os.Getenv("VISION_BASE_URL"); v != "" {
		pipe.Visual = vision.NewHTTPIdentifier(v)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res, err := pipe.Identify(ctx, img)
	if err != nil {
		log.Fatalf("identify: %v", err)
	}
	fmt.Printf("id=%s raw=%q shape=%s conf=%.2f\n", res.NormalizedID, res.RawText, res.Shape, res.Confidence)
	fmt.Println(res.Feedback)
	for i, c := range res.Candidates {
		price := "-"
		if c.Price != nil {
			price = fmt.Sprintf("%.2f %s", c.Price.Market, c.Price.Currency)
		}
		chase := ""
		if c.IsChase != nil && *c.IsChase {
			chase = " CHASE"
		}
		fmt.Printf("%2d. %-28s %-22s %-10s conf=%.2f%s\n", i+1, c.Name, c.Variant, price, c.Confidence, chase)
	}
}
