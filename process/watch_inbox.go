// Inbox watcher: identifies card photos dropped into a directory and records
// the results, so bulk scans don't have to go through the HTTP API.
//
// Usage: go run ./process -dir ./inbox [-dry] [-workers 4]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardlens/models"
	"cardlens/pkg/catalog"
	"cardlens/pkg/pipeline"
	"cardlens/pkg/vision"
)

var (
	verbose bool
	dry     bool
)

var imageExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

func buildPipeline() *pipeline.Pipeline {
	base := os.Getenv("CATALOG_BASE_URL")
	if base == "" {
		base = "http://localhost:9090"
	}
	p := &pipeline.Pipeline{
		Catalog: catalog.NewClient(base, os.Getenv("CATALOG_API_KEY")),
		OCR:     vision.TesseractReader{},
	}
	if v := os.Getenv("VISION_BASE_URL"); v != "" {
		p.Visual = vision.NewHTTPIdentifier(v)
	}
	return p
}

func main() {
	var dir string
	var workers int
	flag.StringVar(&dir, "dir", "inbox", "directory to watch for card photos")
	flag.IntVar(&workers, "workers", 4, "concurrent identifications")
	flag.BoolVar(&dry, "dry", false, "identify but do not write to the database")
	flag.BoolVar(&verbose, "verbose", false, "log per-candidate details")
	flag.Parse()

	gdb := mustDBFromEnv()
	pipe := buildPipeline()

	jobs := make(chan string, 64)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				processFile(gdb, pipe, path)
			}
		}()
	}

	// Pick up anything already sitting in the inbox.
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read dir %s: %v", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			jobs <- filepath.Join(dir, e.Name())
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		log.Fatalf("watch %s: %v", dir, err)
	}
	log.Printf("watching %s", dir)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				close(jobs)
				wg.Wait()
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			// Writers may still be flushing; give the file a moment.
			time.Sleep(200 * time.Millisecond)
			jobs <- ev.Name
		case err, ok := <-watcher.Errors:
			if !ok {
				close(jobs)
				wg.Wait()
				return
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func processFile(gdb *gorm.DB, pipe *pipeline.Pipeline, path string) {
	name := filepath.Base(path)
	ct, ok := imageExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return
	}
	// Skip files already recorded for this store path.
	var cnt int64
	gdb.Model(&models.Scan{}).Where("store_path = ?", path).Count(&cnt)
	if cnt > 0 {
		return
	}
	img, err := imaging.Open(path)
	if err != nil {
		log.Printf("open %s: %v", name, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	res, err := pipe.Identify(ctx, img)
	if err != nil {
		log.Printf("identify %s: %v", name, err)
		return
	}
	log.Printf("identified %s: id=%s candidates=%d feedback=%q", name, res.NormalizedID, len(res.Candidates), res.Feedback)
	if verbose {
		for i, c := range res.Candidates {
			log.Printf("  [%d] %s %s (%s) conf=%.2f", i, c.Name, c.Variant, c.CatalogID, c.Confidence)
		}
	}
	if dry {
		return
	}
	scan := models.Scan{
		FileName:    name,
		StorePath:   path,
		ContentType: ct,
		RawText:     res.RawText,
		Normalized:  res.NormalizedID,
		Shape:       res.Shape,
		Confidence:  res.Confidence,
		Feedback:    res.Feedback,
	}
	if err := gdb.Create(&scan).Error; err != nil {
		log.Printf("persist scan %s: %v", name, err)
		return
	}
	for i, c := range res.Candidates {
		row := models.ScanCandidate{
			ScanID:     scan.ID,
			Position:   i,
			CatalogID:  c.CatalogID,
			Name:       c.Name,
			SetID:      c.SetID,
			SetName:    c.SetName,
			Number:     c.Number,
			Rarity:     c.Rarity,
			Variant:    c.Variant,
			Confidence: c.Confidence,
			Similarity: c.Similarity,
			IsChase:    c.IsChase,
			Source:     c.Source,
		}
		if c.Price != nil {
			cents := int64(c.Price.Market * 100)
			row.PriceCents = &cents
			row.Currency = c.Price.Currency
		}
		if err := gdb.Create(&row).Error; err != nil {
			log.Printf("persist candidate for %s: %v", name, err)
		}
	}
}
