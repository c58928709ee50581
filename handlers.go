package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cardlens/models"
	"cardlens/pkg/geometry"
	"cardlens/pkg/pipeline"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

// pipe is the shared identification pipeline, built in main.
var pipe *pipeline.Pipeline

var allowedMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/identify", identifyHandler)
	r.POST("/rectify", rectifyHandler)
	r.GET("/scans", listScansHandler)
	r.GET("/scans/:id", getScanHandler)
}

// identifyHandler accepts a multipart card photo, runs the identification
// pipeline, persists the attempt, and returns the ordered candidate list.
func identifyHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	ct := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedMime[ct]
	if !ok {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content type " + ct})
		return
	}
	storedName := randomName() + ext
	fullPath := filepath.Join(uploadBaseDir(), storedName)
	if err := c.SaveUploadedFile(fileHeader, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store photo failed"})
		return
	}
	img, err := imaging.Open(fullPath)
	if err != nil {
		_ = os.Remove(fullPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo could not be decoded"})
		return
	}

	scan := models.Scan{
		FileName:    fileHeader.Filename,
		StorePath:   fullPath,
		ContentType: ct,
	}
	res, err := pipe.Identify(c.Request.Context(), img)
	if err != nil {
		scan.Failed = true
		scan.FailedReason = err.Error()
		if dbErr := db.Create(&scan).Error; dbErr != nil {
			log.Printf("persist failed scan: %v", dbErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identification failed"})
		return
	}
	scan.RawText = res.RawText
	scan.Normalized = res.NormalizedID
	scan.Shape = res.Shape
	scan.Confidence = res.Confidence
	scan.Feedback = res.Feedback
	if err := db.Create(&scan).Error; err != nil {
		log.Printf("persist scan: %v", err)
	} else {
		persistCandidates(scan.ID, res)
	}
	c.JSON(http.StatusOK, gin.H{"scan_id": scan.ID, "result": res})
}

func persistCandidates(scanID uint, res *pipeline.Result) {
	for i, cand := range res.Candidates {
		row := models.ScanCandidate{
			ScanID:     scanID,
			Position:   i,
			CatalogID:  cand.CatalogID,
			Name:       cand.Name,
			SetID:      cand.SetID,
			SetName:    cand.SetName,
			Number:     cand.Number,
			Rarity:     cand.Rarity,
			Variant:    cand.Variant,
			Confidence: cand.Confidence,
			Similarity: cand.Similarity,
			IsChase:    cand.IsChase,
			Source:     cand.Source,
		}
		if cand.Price != nil {
			cents := int64(math.Round(cand.Price.Market * 100))
			row.PriceCents = &cents
			row.Currency = cand.Price.Currency
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("persist candidate %d for scan %d: %v", i, scanID, err)
		}
	}
}

// rectifyHandler is the manual-crop path: a photo plus four user-supplied
// corner points, returned as a rectified JPEG the client re-submits to
// /identify.
func rectifyHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	var pts [][2]float64
	if err := json.Unmarshal([]byte(c.PostForm("points")), &pts); err != nil || len(pts) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points must be a JSON array of four [x,y] pairs"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
		return
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo could not be decoded"})
		return
	}
	quad := make([]geometry.Point, 4)
	for i, p := range pts {
		quad[i] = geometry.Point{X: p[0], Y: p[1]}
	}
	out, err := geometry.RectifyQuad(img, quad)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if err := imaging.Encode(c.Writer, out, imaging.JPEG, imaging.JPEGQuality(92)); err != nil {
		log.Printf("rectify encode: %v", err)
	}
}

// listScansHandler lists recent identification attempts.
func listScansHandler(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	var scans []models.Scan
	if err := db.Order("id desc").Limit(limit).Find(&scans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, scans)
}

// getScanHandler returns one scan with its ordered candidates.
func getScanHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var scan models.Scan
	if err := db.First(&scan, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	var cands []models.ScanCandidate
	if err := db.Where("scan_id = ?", scan.ID).Order("position asc").Find(&cands).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan": scan, "candidates": cands})
}

// randomName generates a collision-safe stored file name.
func randomName() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strings.ReplaceAll(filepath.Base(os.TempDir()), string(os.PathSeparator), "")
	}
	return hex.EncodeToString(b)
}
