// Package ocr imports screenshots of text mockups using Tesseract.
//
// Tesseract (via gosseract/v2) finds words and their pixel boxes. The boxes
// are then snapped onto a character grid so the result can be fed to the
// recognizer like hand-typed text. Tesseract rarely reads box-drawing glyphs,
// so imported mockups mostly yield text, bracket and marker components.
//
// # Prerequisites
//
// Tesseract and the language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Preprocessing
//
// Images are converted to grayscale, optionally cropped, then upscaled before
// recognition. Small UI fonts read much better at 2x or 3x.
package ocr
