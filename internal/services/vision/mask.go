package vision

import (
	"image"

	"cocomarkup/internal/config"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	HueMax        = 180 // Zakres H w OpenCV dla obrazów 8-bitowych
	SaturationMax = 20  // Domyślna górna granica S dla tła
	ValueMin      = 200 // Domyślna dolna granica V dla tła
	DefaultKernel = 5   // Bok elementu strukturalnego
)

// Thresholds define the "white-like" HSV band treated as background.
type Thresholds struct {
	SaturationMax int
	ValueMin      int
	KernelSize    int
}

// DefaultThresholds returns the band H∈[0,180], S∈[0,20], V∈[200,255] with a 5x5 kernel.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SaturationMax: SaturationMax,
		ValueMin:      ValueMin,
		KernelSize:    DefaultKernel,
	}
}

// ThresholdsFromConfig reads the band from configuration, keeping defaults for unset values.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	t := DefaultThresholds()
	if cfg.MaskSaturationMax > 0 {
		t.SaturationMax = cfg.MaskSaturationMax
	}
	if cfg.MaskValueMin > 0 {
		t.ValueMin = cfg.MaskValueMin
	}
	if cfg.MaskKernelSize > 0 {
		t.KernelSize = cfg.MaskKernelSize
	}
	return t
}

// MaskBuilder turns a BGR image into a binary foreground mask.
type MaskBuilder struct {
	lower      gocv.Scalar
	upper      gocv.Scalar
	kernelSize int
}

// NewMaskBuilder creates a mask builder for the given thresholds.
func NewMaskBuilder(t Thresholds) *MaskBuilder {
	return &MaskBuilder{
		lower:      gocv.NewScalar(0, 0, float64(t.ValueMin), 0),
		upper:      gocv.NewScalar(HueMax, float64(t.SaturationMax), 255, 0),
		kernelSize: t.KernelSize,
	}
}

// Build classifies white-like pixels as background (0) and everything else as
// foreground (255), then closes and opens the mask. The caller owns the returned Mat.
func (b *MaskBuilder) Build(img gocv.Mat) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), errors.New("cannot build mask of empty image")
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	if err := gocv.CvtColor(img, &hsv, gocv.ColorBGRToHSV); err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to convert image to HSV")
	}

	background := gocv.NewMat()
	defer background.Close()
	if err := gocv.InRangeWithScalar(hsv, b.lower, b.upper, &background); err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to threshold background")
	}

	foreground := gocv.NewMat()
	defer foreground.Close()
	if err := gocv.BitwiseNot(background, &foreground); err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to invert mask")
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(b.kernelSize, b.kernelSize))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	if err := gocv.MorphologyEx(foreground, &closed, gocv.MorphClose, kernel); err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to close mask")
	}

	mask := gocv.NewMat()
	if err := gocv.MorphologyEx(closed, &mask, gocv.MorphOpen, kernel); err != nil {
		mask.Close()
		return gocv.NewMat(), errors.Wrap(err, "failed to open mask")
	}
	return mask, nil
}
