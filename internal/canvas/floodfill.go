package canvas

// fillTolerance absorbs anti-aliased edge pixels: a pixel belongs to the
// seed region when every channel is within this distance of the seed color.
const fillTolerance = 30

// FloodFill recolors the 4-connected region around (x, y) with c, using an
// iterative explicit stack. Filling a region that already has exactly the
// fill color is a no-op.
func FloodFill(r *Raster, x, y int, c RGB) {
	if !r.In(x, y) {
		return
	}
	seed := r.At(x, y)
	if seed == c {
		return
	}

	within := func(a, b uint8) bool {
		d := int(a) - int(b)
		if d < 0 {
			d = -d
		}
		return d <= fillTolerance
	}
	matches := func(p RGB) bool {
		return within(p.R, seed.R) && within(p.G, seed.G) && within(p.B, seed.B)
	}

	type point struct{ x, y int }
	stack := []point{{x, y}}
	visited := make([]bool, r.W*r.H)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !r.In(p.x, p.y) || visited[p.y*r.W+p.x] {
			continue
		}
		visited[p.y*r.W+p.x] = true

		if !matches(r.At(p.x, p.y)) {
			continue
		}
		r.Set(p.x, p.y, c)

		stack = append(stack,
			point{p.x + 1, p.y},
			point{p.x - 1, p.y},
			point{p.x, p.y + 1},
			point{p.x, p.y - 1},
		)
	}
}
