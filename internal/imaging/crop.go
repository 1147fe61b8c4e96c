package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
)

// MaxCropScale bounds the upscale factor of a crop.
const MaxCropScale = 4.0

// Rect is a pixel region; (X1,Y1) is inclusive, (X2,Y2) exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Regions lists the named regions NamedRect understands.
var Regions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// CropResult is a cropped region encoded as PNG.
type CropResult struct {
	Region      Rect   `json:"region"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// NamedRect resolves a named region of a width x height image.
func NamedRect(name string, width, height int) (Rect, error) {
	midX, midY := width/2, height/2

	switch name {
	case "top-left":
		return Rect{0, 0, midX, midY}, nil
	case "top-right":
		return Rect{midX, 0, width, midY}, nil
	case "bottom-left":
		return Rect{0, midY, midX, height}, nil
	case "bottom-right":
		return Rect{midX, midY, width, height}, nil
	case "top-half":
		return Rect{0, 0, width, midY}, nil
	case "bottom-half":
		return Rect{0, midY, width, height}, nil
	case "left-half":
		return Rect{0, 0, midX, height}, nil
	case "right-half":
		return Rect{midX, 0, width, height}, nil
	case "center":
		// middle 50% on both axes
		qW, qH := width/4, height/4
		return Rect{qW, qH, width - qW, height - qH}, nil
	default:
		return Rect{}, errors.Newf("unknown region: %s", name)
	}
}

// Crop cuts r out of img and scales it by scale (0 means 1).
func Crop(img image.Image, r Rect, scale float64) (*CropResult, error) {
	b := img.Bounds()
	if r.X1 < b.Min.X || r.Y1 < b.Min.Y || r.X2 > b.Max.X || r.Y2 > b.Max.Y {
		return nil, errors.Newf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, errors.New("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || scale > MaxCropScale {
		return nil, errors.Newf("scale must be in (0, %g], got %g", MaxCropScale, scale)
	}

	cropped := imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2))
	if scale != 1 {
		w := max(1, int(float64(cropped.Bounds().Dx())*scale))
		h := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, errors.Wrap(err, "failed to encode cropped image")
	}

	return &CropResult{
		Region:      r,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropFile opens the image at path and crops it. A non-empty name selects a
// named region and takes precedence over r.
func CropFile(path, name string, r Rect, scale float64) (*CropResult, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	if name != "" {
		b := img.Bounds()
		if r, err = NamedRect(name, b.Dx(), b.Dy()); err != nil {
			return nil, err
		}
	}
	return Crop(img, r, scale)
}
