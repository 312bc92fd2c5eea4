//go:build !cgo

package orient

import "github.com/ironsheep/dartcam/internal/imaging"

// Tesseract is unavailable in builds without cgo.
type Tesseract struct{}

// NewTesseract returns a recognizer that always fails with ErrUnavailable.
func NewTesseract(language, tessdataPrefix string) (*Tesseract, error) {
	return &Tesseract{}, nil
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(*imaging.Frame) (Reading, error) {
	return Reading{}, ErrUnavailable
}

// Version returns an empty string.
func (t *Tesseract) Version() string { return "" }

// Close is a no-op.
func (t *Tesseract) Close() error { return nil }
