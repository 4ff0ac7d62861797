package precinct

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/precinct/docstore"
	"github.com/eringen/precinct/views"
)

const (
	maxImageWidth    = 800
	jpegQuality      = 80
	maxUploadSize    = 10 << 20 // 10MB
	uploadsSubdir    = "uploads"
	collectionImages = "images"
	defaultImageStem = "image"
)

// uploadForms are the forms an uploaded image URL may be sent back to.
var uploadForms = map[string]bool{"business-form": true, "blog-form": true}

// Image is the metadata stored for an uploaded file.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

func (img Image) fields() docstore.Fields {
	return docstore.Fields{
		"filename":     img.Filename,
		"originalName": img.OriginalName,
		"width":        img.Width,
		"height":       img.Height,
		"size":         img.Size,
		"uploadedAt":   img.UploadedAt,
	}
}

// processImage decodes an image from src, resizes it to maxImageWidth if
// wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Filename:     slugifyFilename(originalName) + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if s := Slugify(base); s != "" {
		return s
	}
	return defaultImageStem
}

// ensureUniqueFilename appends a counter while the name is taken on disk or
// in the images collection.
func (a *App) ensureUniqueFilename(ctx context.Context, img *Image) error {
	docs, err := a.Store.List(ctx, collectionImages)
	if err != nil {
		return err
	}
	taken := make(map[string]bool, len(docs))
	for _, d := range docs {
		taken[d.Fields.String("filename")] = true
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		if statErr != nil && !taken[candidate] {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	return nil
}

// handleImageUpload stores a resized JPEG and answers with the image URL
// field of the form it came from, prefilled.
func (a *App) handleImageUpload(c echo.Context) error {
	ctx := c.Request().Context()
	form := c.FormValue("form")
	if !uploadForms[form] {
		return c.String(http.StatusBadRequest, "Unknown form")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	if err := a.ensureUniqueFilename(ctx, &img); err != nil {
		return err
	}

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if _, err := a.Store.Insert(ctx, collectionImages, img.fields()); err != nil {
		return err
	}
	a.log.Info("image uploaded", zap.String("file", img.Filename), zap.Int("width", img.Width))

	return Render(c, views.ImageField(form, "/"+uploadsSubdir+"/"+img.Filename))
}
