// Package vision scores how well a card is centered inside a photo.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// MaxPixels bounds the decoded size of an upload; a small compressed file
// can declare enormous dimensions.
const MaxPixels = 40_000_000

var (
	// ErrNoCard is returned when no edge outline is found.
	ErrNoCard = errors.New("card not detected in image")
	// ErrTooLarge is returned before decoding pixels when the header
	// declares more than MaxPixels.
	ErrTooLarge = fmt.Errorf("image exceeds %d megapixels", MaxPixels/1_000_000)
)

const (
	// gradient magnitude (L1 Sobel) at or above which a pixel is an edge
	edgeThreshold = 150
	blurSigma     = 1.0
	maxSide       = 1200
)

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Result struct {
	Score float64 `json:"centering_score"`
	Card  Rect    `json:"card_position"`
	Image Size    `json:"image_size"`
}

// Decode reads a JPEG, PNG, GIF, BMP or TIFF image honoring EXIF orientation.
// The header is checked against MaxPixels first.
func Decode(r io.Reader) (image.Image, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooLarge
	}
	return imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
}

// Evaluate finds the card as the edge component with the largest bounding
// box and scores the offset of its center from the image center. 1 means
// perfectly centered; the score is rounded to two decimals.
func Evaluate(img image.Image) (*Result, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil, ErrNoCard
	}

	work := img
	scale := 1.0
	if w > maxSide || h > maxSide {
		work = imaging.Fit(img, maxSide, maxSide, imaging.Box)
		scale = float64(w) / float64(work.Bounds().Dx())
	}

	gray := imaging.Blur(imaging.Grayscale(work), blurSigma)
	edges := sobelEdges(gray)
	box, ok := largestComponent(edges, gray.Bounds().Dx(), gray.Bounds().Dy())
	if !ok {
		return nil, ErrNoCard
	}
	if scale != 1 {
		box = Rect{
			X:      int(math.Round(float64(box.X) * scale)),
			Y:      int(math.Round(float64(box.Y) * scale)),
			Width:  int(math.Round(float64(box.Width) * scale)),
			Height: int(math.Round(float64(box.Height) * scale)),
		}
	}

	return &Result{
		Score: score(box, w, h),
		Card:  box,
		Image: Size{Width: w, Height: h},
	}, nil
}

func score(r Rect, w, h int) float64 {
	imgCX, imgCY := float64(w)/2, float64(h)/2
	cardCX := float64(r.X) + float64(r.Width)/2
	cardCY := float64(r.Y) + float64(r.Height)/2

	sx := 1 - math.Abs(imgCX-cardCX)/imgCX
	sy := 1 - math.Abs(imgCY-cardCY)/imgCY
	return math.Round((sx+sy)/2*100) / 100
}

// sobelEdges marks pixels whose gradient magnitude reaches edgeThreshold.
// Border pixels are never edges.
func sobelEdges(g *image.NRGBA) []bool {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	at := func(x, y int) int { return int(g.Pix[y*g.Stride+x*4]) }
	out := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if abs(gx)+abs(gy) >= edgeThreshold {
				out[y*w+x] = true
			}
		}
	}
	return out
}

// largestComponent labels 8-connected edge regions and returns the bounding
// box with the greatest area.
func largestComponent(edges []bool, w, h int) (Rect, bool) {
	seen := make([]bool, len(edges))
	var (
		best     Rect
		bestArea int
		stack    []int
	)
	for start, e := range edges {
		if !e || seen[start] {
			continue
		}
		minX, minY := w, h
		maxX, maxY := -1, -1
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if edges[q] && !seen[q] {
						seen[q] = true
						stack = append(stack, q)
					}
				}
			}
		}
		r := Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
		if a := r.Width * r.Height; a > bestArea {
			best, bestArea = r, a
		}
	}
	return best, bestArea > 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
