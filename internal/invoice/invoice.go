package invoice

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored invoice scans.
const MaxDimension = 2048

// JPEGQuality is the compression quality for re-encoded scans.
const JPEGQuality = 85

// Result contains the processed invoice data ready for storage.
type Result struct {
	Data []byte
	MIME string
}

// Process reads an uploaded invoice, sniffs its actual type from the bytes,
// and normalizes it for storage. PDFs are stored as-is. JPEG and PNG scans
// are downscaled to MaxDimension and re-encoded as JPEG so a phone photo of
// an invoice does not bloat the database. Anything else is rejected.
func Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading invoice data: %w", err)
	}

	detected := http.DetectContentType(data)
	switch detected {
	case "application/pdf":
		return &Result{Data: data, MIME: detected}, nil
	case "image/jpeg", "image/png":
		return processScan(data)
	default:
		return nil, fmt.Errorf("unsupported invoice format: %s (PDF, JPEG or PNG accepted)", detected)
	}
}

func processScan(data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding invoice scan: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim, using
// Catmull-Rom interpolation. Returns the original image if already within
// bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// Register decoders (jpeg is registered by default, but be explicit).
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
