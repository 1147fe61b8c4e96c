package imaging

import (
	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
)

// FitWidth rewrites the image at path so it is no wider than maxWidth,
// preserving aspect ratio, and returns the metadata of the file as written.
// Images already narrow enough, or a maxWidth of 0, leave the file untouched.
func FitWidth(path string, maxWidth int) (*ImageInfo, error) {
	if maxWidth < 0 {
		return nil, errors.Newf("max width must not be negative, got %d", maxWidth)
	}

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
		if err := imaging.Save(resized, path); err != nil {
			return nil, errors.Wrapf(err, "failed to save resized image %s", path)
		}
		return describe(path, resized)
	}

	return describe(path, img)
}
