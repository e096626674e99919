package shape

import (
	"errors"
	"fmt"
	goimage "image"
	"log"
	"sort"

	"tool-gauge/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrTooFewCircles is returned when circle detection finds fewer than the
// two circles needed for a reference and a tool.
var ErrTooFewCircles = errors.New("need at least two circles (reference and tool)")

// circleSamples is the number of boundary points used to turn a detected
// circle into a primitive.
const circleSamples = 72

// CircleParams holds parameters for Hough circle detection.
type CircleParams struct {
	MedianKernel int     // median blur aperture (odd)
	DP           float64 // inverse accumulator resolution
	MinDist      float64 // minimum distance between centers, in pixels
	CannyHigh    float64 // upper Canny threshold of the gradient stage
	Accumulator  float64 // accumulator threshold for centers
	MinRadius    int
	MaxRadius    int
}

// DefaultCircleParams returns parameters for a coin and a round shank
// photographed end-on.
func DefaultCircleParams() CircleParams {
	return CircleParams{
		MedianKernel: 5,
		DP:           1.2,
		MinDist:      20,
		CannyHigh:    50,
		Accumulator:  30,
		MinRadius:    10,
		MaxRadius:    150,
	}
}

// CirclesFromImage detects circles in a decoded Go image.
func (e *Extractor) CirclesFromImage(img goimage.Image) ([]geometry.Circle, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()
	return e.DetectCircles(mat)
}

// DetectCircles finds circles in a BGR or grayscale Mat with the Hough
// gradient method. Circles are returned smallest first.
func (e *Extractor) DetectCircles(img gocv.Mat) ([]geometry.Circle, error) {
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

	p := e.Circles
	if k := p.MedianKernel; k > 1 {
		if k%2 == 0 {
			k++
		}
		gocv.MedianBlur(gray, &gray, k)
	}

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(gray, &circles, gocv.HoughGradient, p.DP, p.MinDist,
		p.CannyHigh, p.Accumulator, p.MinRadius, p.MaxRadius)

	var found []geometry.Circle
	if !circles.Empty() {
		for i := 0; i < circles.Cols(); i++ {
			found = append(found, geometry.Circle{
				Center: geometry.Point2D{
					X: float64(circles.GetFloatAt(0, i*3)),
					Y: float64(circles.GetFloatAt(0, i*3+1)),
				},
				Radius: float64(circles.GetFloatAt(0, i*3+2)),
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Radius < found[j].Radius
	})

	log.Printf("shape: detected %d circles", len(found))
	return found, nil
}

// PairFromCircles assigns the smallest circle to the reference and the
// largest to the tool. Circles must be sorted by radius, smallest first.
func PairFromCircles(circles []geometry.Circle) (ref, tool DetectedObject, err error) {
	if len(circles) < 2 {
		return DetectedObject{}, DetectedObject{}, fmt.Errorf("%d found: %w", len(circles), ErrTooFewCircles)
	}

	small, large := circles[0], circles[len(circles)-1]
	ref = NewDetectedObject(RoleReference, circlePrimitive(small))
	tool = NewDetectedObject(RoleTool, circlePrimitive(large))
	return ref, tool, nil
}

func circlePrimitive(c geometry.Circle) Primitive {
	return Primitive(geometry.GenerateCirclePoints(c.Center.X, c.Center.Y, c.Radius, circleSamples))
}
