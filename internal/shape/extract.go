package shape

import (
	"fmt"
	goimage "image"
	"log"

	"tool-gauge/pkg/geometry"

	"gocv.io/x/gocv"
)

// ExtractParams holds parameters for contour extraction.
type ExtractParams struct {
	BlurKernel    int     // Gaussian kernel size (odd)
	BlurSigma     float64 // Gaussian sigma
	CannyLow      float32 // Canny hysteresis low threshold
	CannyHigh     float32 // Canny hysteresis high threshold
	MinPoints     int     // Contours with fewer points are dropped
	MinAreaPixels float64 // Contours enclosing less area are dropped (0 = keep all)
}

// DefaultExtractParams returns parameters tuned for a tool and a coin or
// card photographed against a plain background.
func DefaultExtractParams() ExtractParams {
	return ExtractParams{
		BlurKernel: 9,
		BlurSigma:  2,
		CannyLow:   50,
		CannyHigh:  150,
		MinPoints:  1,
	}
}

// Extractor turns images into boundary primitives.
type Extractor struct {
	Params  ExtractParams
	Circles CircleParams
}

// NewExtractor creates an Extractor with default parameters.
func NewExtractor() *Extractor {
	return &Extractor{Params: DefaultExtractParams(), Circles: DefaultCircleParams()}
}

// FromImage extracts primitives from a decoded Go image.
func (e *Extractor) FromImage(img goimage.Image) ([]Primitive, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()
	return e.Extract(mat)
}

// Extract finds the external contours of a BGR or grayscale Mat.
func (e *Extractor) Extract(img gocv.Mat) ([]Primitive, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	k := e.Params.BlurKernel
	if k > 0 {
		if k%2 == 0 {
			k++
		}
		gocv.GaussianBlur(gray, &gray, goimage.Pt(k, k), e.Params.BlurSigma, e.Params.BlurSigma, gocv.BorderDefault)
	}

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, e.Params.CannyLow, e.Params.CannyHigh)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var prims []Primitive
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() < e.Params.MinPoints {
			continue
		}
		if e.Params.MinAreaPixels > 0 && gocv.ContourArea(contour) < e.Params.MinAreaPixels {
			continue
		}

		pts := contour.ToPoints()
		prim := make(Primitive, len(pts))
		for j, pt := range pts {
			prim[j] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
		}
		prims = append(prims, prim)
	}

	log.Printf("shape: extracted %d primitives from %d contours", len(prims), contours.Size())
	return prims, nil
}
