package projection

// Viewport describes the display rectangle (or box) that normalized
// coordinates must fit inside, with a uniform padding kept clear on
// every edge.
type Viewport struct {
	Width   float64
	Height  float64
	Depth   float64 // 0 for 2D viewports
	Padding float64
}

// FitToViewport affinely rescales raw projected points so their bounding
// box fills [Padding, dimension-Padding] on every axis.
//
// Each axis is scaled independently: the x span maps onto the usable
// width and the y (and z) span onto the usable height (depth) with
// separate factors. Shapes can therefore look stretched: aspect ratio
// is not preserved, because filling the available display area matters
// more here than metric faithfulness.
//
// An axis on which every point shares the same value has its span
// treated as 1, which lands all points at exactly Padding along it
// rather than dividing by zero. The input is never mutated; the result
// is recomputed in full on every call.
func FitToViewport(points []Point, viewport Viewport) []Point {
	if len(points) == 0 {
		return []Point{}
	}

	minimum, maximum := boundingBox(points)

	spanX := spanOrOne(maximum.X - minimum.X)
	spanY := spanOrOne(maximum.Y - minimum.Y)
	spanZ := spanOrOne(maximum.Z - minimum.Z)

	usableWidth := viewport.Width - 2*viewport.Padding
	usableHeight := viewport.Height - 2*viewport.Padding
	usableDepth := viewport.Depth - 2*viewport.Padding

	normalized := make([]Point, len(points))
	for pointIndex, point := range points {
		normalized[pointIndex] = Point{
			X: viewport.Padding + (point.X-minimum.X)/spanX*usableWidth,
			Y: viewport.Padding + (point.Y-minimum.Y)/spanY*usableHeight,
		}
		if viewport.Depth > 0 {
			normalized[pointIndex].Z = viewport.Padding + (point.Z-minimum.Z)/spanZ*usableDepth
		}
	}
	return normalized
}

// boundingBox finds the per-axis minimum and maximum across all points.
func boundingBox(points []Point) (minimum, maximum Point) {
	minimum, maximum = points[0], points[0]
	for _, point := range points {
		if point.X < minimum.X {
			minimum.X = point.X
		}
		if point.X > maximum.X {
			maximum.X = point.X
		}
		if point.Y < minimum.Y {
			minimum.Y = point.Y
		}
		if point.Y > maximum.Y {
			maximum.Y = point.Y
		}
		if point.Z < minimum.Z {
			minimum.Z = point.Z
		}
		if point.Z > maximum.Z {
			maximum.Z = point.Z
		}
	}
	return minimum, maximum
}

// spanOrOne guards the zero-span case described in FitToViewport.
func spanOrOne(span float64) float64 {
	if span == 0 {
		return 1
	}
	return span
}
