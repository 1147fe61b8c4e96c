package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/cockroachdb/errors"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/screenshot-mcp/internal/imaging"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// contrastBoost is the bild contrast change applied after grayscale.
// UI text on tinted backgrounds recognizes noticeably better with it.
const contrastBoost = 0.3

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the text recognized in a screenshot.
type OCRResult struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions holds individual words. It may be empty when Tesseract cannot
	// report bounding boxes; FullText is still populated.
	Regions []TextRegion `json:"regions"`

	Language string `json:"language"`
}

// Preprocess converts img to a high-contrast grayscale image for Tesseract.
func Preprocess(img image.Image) *image.RGBA {
	return adjust.Contrast(effect.Grayscale(img), contrastBoost)
}

// ExtractText runs OCR over the image at imagePath.
//
// The image is decoded, converted to grayscale and contrast-boosted before it
// is handed to Tesseract. An empty language means DefaultLanguage. Word boxes
// are in the coordinates of the original image.
func ExtractText(imagePath string, language string) (*OCRResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Preprocess(img)); err != nil {
		return nil, errors.Wrap(err, "failed to encode preprocessed image")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, errors.Wrap(err, "failed to set language")
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, errors.Wrap(err, "OCR failed")
	}

	result := &OCRResult{
		FullText: text,
		Regions:  []TextRegion{},
		Language: language,
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}

	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Regions = append(result.Regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return result, nil
}
