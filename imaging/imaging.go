// Package imaging implements the §4.3 image pipeline: the Canon Ivy 2
// geometric transform and the Kodak passthrough validation.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	xdraw "golang.org/x/image/draw"

	"zinkdriver/zerr"
)

// Canon Ivy 2 dimensions (§3, §4.3).
const (
	CanonCanvasWidth  = 1280
	CanonCanvasHeight = 1920
	CanonPrintWidth   = 640
	CanonPrintHeight  = 1616
)

// KodakMaxJPEGBytes is the maximum accepted Kodak JPEG size (§3, 2 MiB).
const KodakMaxJPEGBytes = 2 * 1024 * 1024

// PrepareCanon implements §4.3's Canon Ivy 2 preparation: decode, fit
// into a centered 1280x1920 canvas (or center-crop-to-fill when autoCrop
// is true), resample to 640x1616, rotate 180 degrees, and re-encode as
// maximum-quality JPEG. The returned byte length is what feeds the
// PrintReady packet's size field.
func PrepareCanon(data []byte, autoCrop bool) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.Wrap(zerr.KindInvalidImage, "decode canon source image", err)
	}

	canvas := fitToCanvas(src, CanonCanvasWidth, CanonCanvasHeight, autoCrop)
	resized := resample(canvas, CanonPrintWidth, CanonPrintHeight)
	rotated := rotate180(resized)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: 100}); err != nil {
		return nil, zerr.Wrap(zerr.KindInvalidImage, "encode canon output image", err)
	}
	return buf.Bytes(), nil
}

// fitToCanvas places src onto a canvasW x canvasH canvas. With autoCrop
// false (default) it letterboxes: src is scaled (up or down) to fit entirely
// within the canvas, preserving aspect, and centered. With autoCrop true
// it center-crop-fills: src is scaled (up or down) to cover the canvas entirely,
// then the overflow is cropped evenly from the centered excess.
func fitToCanvas(src image.Image, canvasW, canvasH int, autoCrop bool) *image.RGBA {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()

	var scale float64
	if autoCrop {
		scale = math.Max(float64(canvasW)/float64(sw), float64(canvasH)/float64(sh))
	} else {
		scale = math.Min(float64(canvasW)/float64(sw), float64(canvasH)/float64(sh))
	}

	scaledW := int(math.Round(float64(sw) * scale))
	scaledH := int(math.Round(float64(sh) * scale))

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, sb, xdraw.Over, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	offsetX := (canvasW - scaledW) / 2
	offsetY := (canvasH - scaledH) / 2
	dstRect := image.Rect(offsetX, offsetY, offsetX+scaledW, offsetY+scaledH).Intersect(canvas.Bounds())
	srcRect := image.Rect(dstRect.Min.X-offsetX, dstRect.Min.Y-offsetY, dstRect.Max.X-offsetX, dstRect.Max.Y-offsetY)
	draw.Draw(canvas, dstRect, scaled, srcRect.Min, draw.Src)

	return canvas
}

// resample rescales src to exactly w x h using a high-quality filter
// (§4.3 step 3: "Lanczos or equivalent" — CatmullRom, the sharpest kernel
// golang.org/x/image/draw offers).
func resample(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// rotate180 rotates an image by 180 degrees (§4.3 step 4).
func rotate180(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			srcPix := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			dst.SetRGBA(b.Min.X+(w-1-x), b.Min.Y+(h-1-y), srcPix)
		}
	}
	return dst
}

var (
	errTooShort    = errors.New("imaging: jpeg data too short to contain SOI/EOI markers")
	errMissingSOI  = errors.New("imaging: missing JPEG start-of-image marker (FF D8)")
	errMissingEOI  = errors.New("imaging: missing JPEG end-of-image marker (FF D9)")
)

// ValidateKodak checks that data is a plausible JPEG (starts FF D8, ends
// FF D9, per §4.3) and does not exceed KodakMaxJPEGBytes. Kodak printing
// uses the bytes verbatim: no geometric transform.
func ValidateKodak(data []byte) error {
	if len(data) > KodakMaxJPEGBytes {
		return zerr.New(zerr.KindInvalidImage, "kodak jpeg exceeds 2 MiB")
	}
	if len(data) < 4 {
		return zerr.Wrap(zerr.KindInvalidImage, "kodak jpeg validation", errTooShort)
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return zerr.Wrap(zerr.KindInvalidImage, "kodak jpeg validation", errMissingSOI)
	}
	n := len(data)
	if data[n-2] != 0xFF || data[n-1] != 0xD9 {
		return zerr.Wrap(zerr.KindInvalidImage, "kodak jpeg validation", errMissingEOI)
	}
	return nil
}
