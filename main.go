package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardlens/pkg/catalog"
	"cardlens/pkg/pipeline"
	"cardlens/pkg/vision"

	"github.com/gin-gonic/gin"
)

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()

	// Support a lightweight migrate command: `./cardlens migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration completed")
		return
	}

	initDB()
	pipe = buildPipeline()

	r := gin.Default()
	setupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}
	r.Run(":" + port)
}

// buildPipeline wires the collaborators from environment configuration.
func buildPipeline() *pipeline.Pipeline {
	catalogBase := os.Getenv("CATALOG_BASE_URL")
	if catalogBase == "" {
		catalogBase = "http://localhost:9090"
	}
	p := &pipeline.Pipeline{
		Catalog: catalog.NewClient(catalogBase, os.Getenv("CATALOG_API_KEY")),
		OCR:     vision.TesseractReader{},
	}
	if base := os.Getenv("VISION_BASE_URL"); base != "" {
		p.Visual = vision.NewHTTPIdentifier(base)
	}
	return p
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
