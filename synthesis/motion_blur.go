// motion_blur.go implements a directional blur along the motion vector.

package synthesis

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
)

// motionBlur softens the image along the given direction (radians) with
// a line-shaped convolution kernel of the given radius.
func motionBlur(img *image.RGBA, angle float64, radius float64) *image.RGBA {
	r := int(math.Round(radius))
	if r < 1 {
		return img
	}
	size := 2*r + 1
	k := convolution.NewKernel(size, size)

	cos := math.Cos(angle)
	sin := math.Sin(angle)
	for i := -r; i <= r; i++ {
		x := r + int(math.Round(float64(i)*cos))
		y := r + int(math.Round(float64(i)*sin))
		if x < 0 || x >= size || y < 0 || y >= size {
			continue
		}
		k.Matrix[y*size+x] += 1
	}

	return convolution.Convolve(img, k.Normalized(), &convolution.Options{
		Bias:      0,
		Wrap:      false,
		KeepAlpha: true,
	})
}
