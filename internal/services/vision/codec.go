package vision

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrNotImage marks a file that OpenCV cannot decode as an image.
var ErrNotImage = errors.New("not a decodable image")

// ErrUnsupportedFormat marks an image whose extension has no OpenCV encoder.
var ErrUnsupportedFormat = errors.New("unsupported output format")

var encodableExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".jpe": true,
	".png": true, ".bmp": true, ".dib": true,
	".tif": true, ".tiff": true, ".webp": true,
	".pbm": true, ".pgm": true, ".ppm": true, ".pnm": true,
}

// LoadImage decodes path as a 3-channel BGR image. Undecodable files return an
// error matching ErrNotImage. The caller owns the returned Mat.
func LoadImage(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.Wrapf(ErrNotImage, "failed to decode %s", path)
	}
	return mat, nil
}

// CanEncode reports whether path has an extension OpenCV can write.
func CanEncode(path string) bool {
	return encodableExtensions[strings.ToLower(filepath.Ext(path))]
}

// SaveImage encodes img to path; the format follows the file extension.
func SaveImage(path string, img gocv.Mat) error {
	if img.Empty() {
		return errors.Errorf("cannot save empty image to %s", path)
	}
	// imwrite aborts on an unknown extension instead of failing
	if !CanEncode(path) {
		return errors.Wrapf(ErrUnsupportedFormat, "cannot encode %s", path)
	}
	if ok := gocv.IMWrite(path, img); !ok {
		return errors.Errorf("failed to encode image %s", path)
	}
	return nil
}
