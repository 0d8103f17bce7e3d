// Package canvas keeps a server-side raster mirror of the shared drawing
// surface and replays validated draw, fill, clear and undo operations onto it.
package canvas

import (
	"errors"
	"fmt"
)

// RGB is one opaque pixel.
type RGB struct {
	R, G, B uint8
}

var White = RGB{255, 255, 255}

var ErrBadColor = errors.New("color must be #RRGGBB")

// ParseColor parses a "#RRGGBB" string. Shorthand and named colors are not
// accepted on the wire.
func ParseColor(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, ErrBadColor
	}
	var c RGB
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, ErrBadColor
	}
	return c, nil
}

// Raster is a fixed-size RGB pixel grid, white on creation.
type Raster struct {
	W, H int
	pix  []RGB
}

func NewRaster(w, h int) *Raster {
	r := &Raster{W: w, H: h, pix: make([]RGB, w*h)}
	r.FillAll(White)
	return r
}

func (r *Raster) In(x, y int) bool {
	return x >= 0 && x < r.W && y >= 0 && y < r.H
}

func (r *Raster) At(x, y int) RGB {
	return r.pix[y*r.W+x]
}

func (r *Raster) Set(x, y int, c RGB) {
	if r.In(x, y) {
		r.pix[y*r.W+x] = c
	}
}

func (r *Raster) FillAll(c RGB) {
	for i := range r.pix {
		r.pix[i] = c
	}
}

// Snapshot copies the current pixel content.
func (r *Raster) Snapshot() []RGB {
	snap := make([]RGB, len(r.pix))
	copy(snap, r.pix)
	return snap
}

// Restore overwrites the pixel content with a snapshot taken earlier.
func (r *Raster) Restore(snap []RGB) {
	copy(r.pix, snap)
}

func (r *Raster) Equal(other *Raster) bool {
	if r.W != other.W || r.H != other.H {
		return false
	}
	for i := range r.pix {
		if r.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// StampDot paints a filled circle, the brush shape used for stroke segments
// and their round caps.
func (r *Raster) StampDot(cx, cy int, radius int, c RGB) {
	if radius < 1 {
		radius = 1
	}
	rr := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= rr {
				r.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// StampLine paints a segment by stamping the brush along it, giving round
// joins between consecutive segments for free.
func (r *Raster) StampLine(x0, y0, x1, y1 int, radius int, c RGB) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		r.StampDot(x0, y0, radius, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		r.StampDot(x, y, radius, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
