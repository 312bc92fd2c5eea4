// Package orient finds the rotation offset of a calibrated board by
// reading the numbers printed around it.
//
// Calibration gives the board outline but not which sector is "20". The
// numbers sit in a ring just outside the double ring. For each of the 20
// sector centres a patch is cut from that ring, turned upright and passed
// to a Recognizer. The offset is the sector shift under which the most
// readings agree with the clockwise board sequence.
//
// # Recognizers
//
// Tesseract uses the Tesseract OCR engine through gosseract and needs cgo
// and the Tesseract libraries at build time. Without cgo, NewTesseract
// returns a recognizer that always fails with ErrUnavailable. Tests use
// scripted recognizers.
package orient
