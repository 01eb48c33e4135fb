package detect

import (
	"image"
	"math"
)

// bitmap is a binary foreground mask.
type bitmap struct {
	bits []bool
	w, h int
}

func newBitmap(w, h int) *bitmap {
	return &bitmap{bits: make([]bool, w*h), w: w, h: h}
}

// fg reports whether (x, y) is a foreground pixel. Out-of-bounds
// coordinates are background.
func (b *bitmap) fg(x, y int) bool {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return false
	}
	return b.bits[y*b.w+x]
}

// Clockwise 8-neighborhood in image coordinates (y grows downward).
var dirs = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func dirIndex(d image.Point) int {
	for i, p := range dirs {
		if p == d {
			return i
		}
	}
	return 0
}

// externalContours traces the outer boundary of every foreground
// component reachable from the page's exterior background. Components
// fully enclosed inside another component's holes are ignored: symbols
// are treated as outer silhouettes.
//
// Contours are emitted in the order their components are first met by a
// bottom-to-top, right-to-left raster scan. The ordering is an artifact
// of the boundary tracing convention the rest of the toolchain expects,
// so candidate ordinals stay byte-compatible across re-runs.
func externalContours(mask *bitmap) [][]image.Point {
	outer := exteriorBackground(mask)
	traced := make([]bool, len(mask.bits))

	var contours [][]image.Point
	for y := mask.h - 1; y >= 0; y-- {
		for x := mask.w - 1; x >= 0; x-- {
			if !mask.bits[y*mask.w+x] || traced[y*mask.w+x] {
				continue
			}
			bt, ok := exteriorNeighbor(mask, outer, x, y)
			if !ok {
				continue
			}
			contours = append(contours, traceBoundary(mask, image.Pt(x, y), bt))
			markComponent(mask, traced, x, y)
		}
	}
	return contours
}

// exteriorBackground flood-fills the background from the image border
// (4-connectivity) and returns the reachable set. Background pixels
// inside closed strokes are not reachable and stay unmarked.
func exteriorBackground(mask *bitmap) []bool {
	outer := make([]bool, len(mask.bits))
	var stack []image.Point

	push := func(x, y int) {
		i := y*mask.w + x
		if !mask.bits[i] && !outer[i] {
			outer[i] = true
			stack = append(stack, image.Pt(x, y))
		}
	}

	for x := 0; x < mask.w; x++ {
		push(x, 0)
		push(x, mask.h-1)
	}
	for y := 0; y < mask.h; y++ {
		push(0, y)
		push(mask.w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < mask.w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < mask.h-1 {
			push(p.X, p.Y+1)
		}
	}
	return outer
}

// exteriorNeighbor returns the direction index from (x, y) to an
// exterior background 4-neighbor, treating off-image as exterior. The
// second return is false when the pixel only touches enclosed holes.
func exteriorNeighbor(mask *bitmap, outer []bool, x, y int) (int, bool) {
	for _, d := range [4]image.Point{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= mask.w || ny < 0 || ny >= mask.h {
			return dirIndex(d), true
		}
		if !mask.bits[ny*mask.w+nx] && outer[ny*mask.w+nx] {
			return dirIndex(d), true
		}
	}
	return 0, false
}

// traceBoundary walks the component's outer boundary clockwise using
// Moore neighbor tracing with a backtracking start, returning the chain
// of boundary pixels. Open curves (thin strokes) are traced down and
// back, so their pixels appear twice; area and perimeter formulas are
// unaffected.
//
// Termination follows Jacob's criterion: stop on re-entering the start
// pixel about to repeat the initial move.
func traceBoundary(mask *bitmap, start image.Point, startBt int) []image.Point {
	contour := []image.Point{start}

	cur := start
	bt := startBt
	var first image.Point
	limit := 4 * len(mask.bits)

	for step := 0; step < limit; step++ {
		next := cur
		found := false
		var d int
		for i := 1; i <= 8; i++ {
			d = (bt + i) % 8
			n := cur.Add(dirs[d])
			if mask.fg(n.X, n.Y) {
				next = n
				found = true
				break
			}
		}
		if !found {
			// Isolated single pixel.
			return contour
		}

		if step == 0 {
			first = next
		} else if cur == start && next == first {
			break
		}
		contour = append(contour, next)

		// The neighbor examined just before the hit is background; the
		// next scan starts from the direction pointing back at it.
		prevBg := cur.Add(dirs[(d+7)%8])
		bt = dirIndex(prevBg.Sub(next))
		cur = next
	}

	// The re-entry appended the start a second time; the chain closes
	// implicitly.
	if len(contour) > 1 && contour[len(contour)-1] == start {
		contour = contour[:len(contour)-1]
	}
	return contour
}

// markComponent marks every pixel 8-connected to (x, y) as traced.
func markComponent(mask *bitmap, traced []bool, x, y int) {
	stack := []image.Point{image.Pt(x, y)}
	traced[y*mask.w+x] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range dirs {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= mask.w || ny < 0 || ny >= mask.h {
				continue
			}
			i := ny*mask.w + nx
			if mask.bits[i] && !traced[i] {
				traced[i] = true
				stack = append(stack, image.Pt(nx, ny))
			}
		}
	}
}

// contourArea computes the enclosed area of the closed boundary chain by
// the shoelace formula, matching the usual contour-moment convention
// where vertices sit at pixel centers.
func contourArea(contour []image.Point) float64 {
	if len(contour) < 3 {
		return 0
	}
	var sum int
	for i, p := range contour {
		q := contour[(i+1)%len(contour)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// contourPerimeter is the length of the closed boundary polyline;
// diagonal steps count sqrt(2).
func contourPerimeter(contour []image.Point) float64 {
	if len(contour) < 2 {
		return 0
	}
	var sum float64
	for i, p := range contour {
		q := contour[(i+1)%len(contour)]
		dx := float64(q.X - p.X)
		dy := float64(q.Y - p.Y)
		sum += math.Sqrt(dx*dx + dy*dy)
	}
	return sum
}

// boundingRect returns the inclusive pixel bounding box of the contour,
// as a rectangle whose Dx/Dy count pixels (max-min+1).
func boundingRect(contour []image.Point) image.Rectangle {
	minX, minY := contour[0].X, contour[0].Y
	maxX, maxY := minX, minY
	for _, p := range contour[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
