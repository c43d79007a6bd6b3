package enhancer

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// ITU-R BT.601 luminance weights
const (
	lumR = 0.299
	lumG = 0.587
	lumB = 0.114
)

// parallelPixelThreshold is the image size above which the luminance
// conversion is split into horizontal strips.
const parallelPixelThreshold = 100000

// laplacianEstimator implements SharpnessEstimator using the mean absolute
// discrete Laplacian over interior pixels
type laplacianEstimator struct {
	slicePool sync.Pool
}

// NewSharpnessEstimator creates an estimator backed by the 4-neighbor
// Laplacian kernel [0, 1, 0; 1, -4, 1; 0, 1, 0]
func NewSharpnessEstimator() SharpnessEstimator {
	return &laplacianEstimator{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 4096)
			},
		},
	}
}

// Estimate returns the arithmetic mean of |4·Y(x,y) − Y(x−1,y) − Y(x+1,y) −
// Y(x,y−1) − Y(x,y+1)| over all interior pixels. The 1-pixel border is
// excluded; there is no wraparound or padding. Images with width or height
// below 3 have no interior pixels and score 0.
func (e *laplacianEstimator) Estimate(img *image.NRGBA) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	lum := e.luminancePlane(img, width, height)

	vals := e.slicePool.Get().([]float64)
	if cap(vals) < (width-2)*(height-2) {
		vals = make([]float64, 0, (width-2)*(height-2))
	}
	vals = vals[:0]

	for y := 1; y < height-1; y++ {
		row := y * width
		for x := 1; x < width-1; x++ {
			i := row + x
			lap := 4*lum[i] - lum[i-1] - lum[i+1] - lum[i-width] - lum[i+width]
			vals = append(vals, math.Abs(lap))
		}
	}

	score := stat.Mean(vals, nil)
	e.slicePool.Put(vals[:0])
	return score
}

// luminancePlane converts the image to a BT.601 luminance grid. Large images
// are processed in horizontal strips for better cache locality.
func (e *laplacianEstimator) luminancePlane(img *image.NRGBA, width, height int) []float64 {
	lum := make([]float64, width*height)

	if width*height < parallelPixelThreshold {
		fillLuminance(img, lum, 0, height, width)
		return lum
	}

	workers := runtime.NumCPU()
	if height < workers {
		workers = height
	}
	rowsPerWorker := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= endY {
			break
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			fillLuminance(img, lum, startY, endY, width)
		}(startY, endY)
	}
	wg.Wait()

	return lum
}

func fillLuminance(img *image.NRGBA, lum []float64, startY, endY, width int) {
	for y := startY; y < endY; y++ {
		off := y * img.Stride
		for x := 0; x < width; x++ {
			p := off + x*4
			lum[y*width+x] = lumR*float64(img.Pix[p]) +
				lumG*float64(img.Pix[p+1]) +
				lumB*float64(img.Pix[p+2])
		}
	}
}
