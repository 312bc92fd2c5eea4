//go:build cgo

package orient

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/dartcam/internal/imaging"
)

// Tesseract recognizes board numbers with the Tesseract OCR engine.
//
// One gosseract client is reused across patches; calls are serialized
// because the client is not safe for concurrent use.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract returns a Tesseract recognizer restricted to digits.
// tessdataPrefix may be empty to use the system training data.
func NewTesseract(language, tessdataPrefix string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(tessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist("0123456789"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_WORD); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// Recognize implements Recognizer.
//
// Confidence is the mean word confidence reported by Tesseract. If word
// boxes are unavailable the text is returned with confidence 1.
func (t *Tesseract) Recognize(patch *imaging.Frame) (Reading, error) {
	data, err := imaging.EncodePNG(patch)
	if err != nil {
		return Reading{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(data); err != nil {
		return Reading{}, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return Reading{}, fmt.Errorf("OCR failed: %w", err)
	}
	rd := Reading{Text: strings.TrimSpace(text), Confidence: 1}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var sum float64
		for _, box := range boxes {
			sum += box.Confidence
		}
		rd.Confidence = sum / float64(len(boxes)) / 100.0
	}
	return rd, nil
}

// Version returns the Tesseract library version.
func (t *Tesseract) Version() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Version()
}

// Close releases the OCR engine.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
