package rimage

import (
	"image"
	"math"
	"sort"

	"github.com/samber/lo"

	"go.viam.com/perception/pointcloud"
	"go.viam.com/perception/utils"
)

// Contour is an 8-connected component of white pixels in a binary image.
type Contour struct {
	// Area is the number of pixels in the component.
	Area float64
	// Pixels are the component's pixels in row-major order.
	Pixels []image.Point
	// Boundary are the pixels with a 4-neighbor outside the component or on the image border.
	Boundary    []image.Point
	BoundingBox pointcloud.Box
}

// PruneParams configures PruneContours.
type PruneParams struct {
	// AreaThresh is the area a component must exceed to be kept.
	AreaThresh float64
	// DistThresh is how close a component's boundary must come to the boundary of the
	// component nearest Reference for it to be kept.
	DistThresh float64
	// Reference defaults to the image center.
	Reference *image.Point
}

// DefaultPruneParams returns the default contour pruning parameters.
func DefaultPruneParams() PruneParams {
	return PruneParams{AreaThresh: 1000, DistThresh: 20}
}

var eightNeighbors = []image.Point{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

var fourNeighbors = []image.Point{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// components labels the 8-connected components of non-zero pixels, in row-major order of
// their first pixel.
func (im *BinaryImage) components() []Contour {
	labels := make([]int, im.height*im.width)
	var contours []Contour
	for row := 0; row < im.height; row++ {
		for col := 0; col < im.width; col++ {
			start := image.Point{X: col, Y: row}
			if !im.nonzero(row, col) || labels[im.IJToLinear(start)] != 0 {
				continue
			}
			label := len(contours) + 1
			labels[im.IJToLinear(start)] = label
			queue := []image.Point{start}
			var pixels []image.Point
			for len(queue) > 0 {
				p := queue[0]
				queue = queue[1:]
				pixels = append(pixels, p)
				for _, d := range eightNeighbors {
					q := p.Add(d)
					if !im.inBounds(q) || !im.nonzero(q.Y, q.X) || labels[im.IJToLinear(q)] != 0 {
						continue
					}
					labels[im.IJToLinear(q)] = label
					queue = append(queue, q)
				}
			}
			sort.Slice(pixels, func(i, j int) bool {
				return im.IJToLinear(pixels[i]) < im.IJToLinear(pixels[j])
			})
			contours = append(contours, im.newContour(pixels, labels, label))
		}
	}
	return contours
}

func (im *BinaryImage) newContour(pixels []image.Point, labels []int, label int) Contour {
	boundary := lo.Filter(pixels, func(p image.Point, _ int) bool {
		for _, d := range fourNeighbors {
			q := p.Add(d)
			if !im.inBounds(q) || labels[im.IJToLinear(q)] != label {
				return true
			}
		}
		return false
	})
	minPt, maxPt := pixels[0], pixels[0]
	for _, p := range pixels {
		minPt.X, minPt.Y = min(minPt.X, p.X), min(minPt.Y, p.Y)
		maxPt.X, maxPt.Y = max(maxPt.X, p.X), max(maxPt.Y, p.Y)
	}
	// min never exceeds max here
	box, _ := pointcloud.NewBox(minPt, maxPt, im.frame)
	return Contour{
		Area:        float64(len(pixels)),
		Pixels:      pixels,
		Boundary:    boundary,
		BoundingBox: box,
	}
}

// FindContours returns the 8-connected white components with area greater than areaThresh.
func (im *BinaryImage) FindContours(areaThresh float64) []Contour {
	return lo.Filter(im.components(), func(c Contour, _ int) bool {
		return c.Area > areaThresh
	})
}

func minSquaredDistance(a, b []image.Point) int {
	best := math.MaxInt
	for _, p := range a {
		for _, q := range b {
			best = min(best, utils.SquareInt(p.X-q.X)+utils.SquareInt(p.Y-q.Y))
		}
	}
	return best
}

// PruneContours keeps the component with area above params.AreaThresh that is nearest
// params.Reference, plus every other such component whose boundary comes within
// params.DistThresh of its boundary. Everything else is zeroed. With no candidate the
// result is all black.
func (im *BinaryImage) PruneContours(params PruneParams) *BinaryImage {
	ref := image.Point{X: im.width / 2, Y: im.height / 2}
	if params.Reference != nil {
		ref = *params.Reference
	}

	type candidate struct {
		contour Contour
		dist    int
	}
	candidates := lo.Map(im.FindContours(params.AreaThresh), func(c Contour, _ int) candidate {
		return candidate{c, minSquaredDistance([]image.Point{ref}, c.Pixels)}
	})
	out := im.blank()
	if len(candidates) == 0 {
		return im.wrap(out)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	nearest := candidates[0].contour
	kept := []Contour{nearest}
	for _, c := range candidates[1:] {
		if math.Sqrt(float64(minSquaredDistance(nearest.Boundary, c.contour.Boundary))) < params.DistThresh {
			kept = append(kept, c.contour)
		}
	}
	for _, c := range kept {
		for _, p := range c.Pixels {
			im.copyPixel(out, p.Y, p.X, p.Y, p.X)
		}
	}
	return im.wrap(out)
}
