// Package photo loads the photos that measurements are taken from.
package photo

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"tool-gauge/internal/measure"
	"tool-gauge/pkg/geometry"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Photo is a loaded, upright image.
type Photo struct {
	Path  string
	Image image.Image

	// Scale maps original-image pixel coordinates onto Image. It is 1
	// unless the photo was downsized on load.
	Scale float64

	// View is guessed from the filename; ViewKnown is false if no keyword
	// matched.
	View      measure.View
	ViewKnown bool
}

// Load opens path, applies the EXIF orientation and, if maxDim > 0,
// downsizes the photo to fit within maxDim x maxDim.
func Load(path string, maxDim int) (*Photo, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	p := &Photo{Path: path, Image: img, Scale: 1}
	p.View, p.ViewKnown = GuessView(path)

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		p.Scale = float64(resized.Bounds().Dx()) / float64(b.Dx())
		p.Image = resized
	}
	return p, nil
}

// Width returns the image width in pixels.
func (p *Photo) Width() int {
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *Photo) Height() int {
	return p.Image.Bounds().Dy()
}

// ToImage maps a point given in original-image pixels onto the loaded image.
func (p *Photo) ToImage(pt geometry.Point2D) geometry.Point2D {
	return pt.Scale(p.Scale)
}

// GuessView attempts to determine the camera view from the filename.
func GuessView(path string) (measure.View, bool) {
	base := strings.ToLower(filepath.Base(path))

	for _, kw := range []string{"side", "profile", "elev"} {
		if strings.Contains(base, kw) {
			return measure.ViewSide, true
		}
	}
	for _, kw := range []string{"top", "plan", "overhead"} {
		if strings.Contains(base, kw) {
			return measure.ViewTop, true
		}
	}
	return measure.ViewTop, false
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".gif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
