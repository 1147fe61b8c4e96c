// Package ocr reads text out of captured screenshots with Tesseract.
//
// Screenshots are converted to grayscale and contrast-boosted with bild before
// recognition; the result carries the full text plus word-level boxes.
//
// Tesseract and its language data must be installed on the host:
//   - macOS: brew install tesseract
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
package ocr
