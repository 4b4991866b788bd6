// Package sigimage cleans up drawn or photographed signature bitmaps
// before they become annotation content: the paper background turns
// transparent, the ink is cropped tight, and a slanted scan can be
// deskewed.
package sigimage

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// cropMargin is the padding kept around the ink when cropping.
const cropMargin = 4

// Options tunes the cleanup pipeline.
type Options struct {
	Deskew   bool
	InkColor color.Color // nil keeps the sampled ink darkness as black
}

// Clean runs the default pipeline: background removal and auto-crop,
// no deskew.
func Clean(img image.Image) (image.Image, error) {
	return CleanWithOptions(img, Options{})
}

// CleanWithOptions converts a signature photo or pad capture into a
// tightly cropped RGBA with transparent background.
func CleanWithOptions(img image.Image, opts Options) (image.Image, error) {
	mat, err := imageToGrayMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// Otsu picks the paper/ink split per image, so pencil and marker
	// scans both binarize cleanly. Ink comes out white in the mask.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(mat, &mask, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	if opts.Deskew {
		angle := skewAngle(mask)
		if angle != 0 {
			rotateInPlace(&mat, angle)
			rotateInPlace(&mask, angle)
		}
	}

	bounds, ok := inkBounds(mask)
	if !ok {
		return nil, fmt.Errorf("no ink found in signature image")
	}

	return composeAlpha(mat, mask, bounds, opts.InkColor), nil
}

// imageToGrayMat converts a Go image into a single channel mat.
func imageToGrayMat(img image.Image) (gocv.Mat, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty signature image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			// Standard luma weights.
			lum := (299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000
			mat.SetUCharAt(y, x, uint8(lum))
		}
	}
	return mat, nil
}

// skewAngle estimates the ink's rotation from the min-area rectangle
// of the largest connected stroke region.
func skewAngle(mask gocv.Mat) float64 {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	var bestArea float64
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 {
		return 0
	}

	rect := gocv.MinAreaRect(contours.At(best))
	angle := rect.Angle
	// MinAreaRect reports [-90, 0); fold steep values back so a mostly
	// horizontal signature is corrected, not turned upright.
	if angle < -45 {
		angle += 90
	}
	if angle > 45 {
		angle -= 90
	}
	return angle
}

// rotateInPlace rotates a mat about its center, keeping its size.
func rotateInPlace(mat *gocv.Mat, angleDegrees float64) {
	center := image.Point{X: mat.Cols() / 2, Y: mat.Rows() / 2}
	rot := gocv.GetRotationMatrix2D(center, angleDegrees, 1.0)
	defer rot.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffine(*mat, &rotated, rot, image.Point{X: mat.Cols(), Y: mat.Rows()})
	mat.Close()
	*mat = rotated
}

// inkBounds returns the bounding box of all ink in the mask, padded by
// the crop margin.
func inkBounds(mask gocv.Mat) (image.Rectangle, bool) {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var bounds image.Rectangle
	found := false
	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		if !found {
			bounds = r
			found = true
		} else {
			bounds = bounds.Union(r)
		}
	}
	if !found {
		return image.Rectangle{}, false
	}

	bounds = bounds.Inset(-cropMargin)
	return bounds.Intersect(image.Rect(0, 0, mask.Cols(), mask.Rows())), true
}

// composeAlpha builds the output RGBA: masked pixels get ink color with
// alpha from their darkness, everything else is fully transparent.
func composeAlpha(gray, mask gocv.Mat, bounds image.Rectangle, ink color.Color) image.Image {
	var ir, ig, ib uint32
	if ink != nil {
		ir, ig, ib, _ = ink.RGBA()
		ir, ig, ib = ir>>8, ig>>8, ib>>8
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GetUCharAt(y, x) == 0 {
				continue
			}
			alpha := 255 - gray.GetUCharAt(y, x)
			px := color.RGBA{A: alpha}
			if ink != nil {
				px.R, px.G, px.B = uint8(ir), uint8(ig), uint8(ib)
			}
			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, px)
		}
	}
	return out
}
