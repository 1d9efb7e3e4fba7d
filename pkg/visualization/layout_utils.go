package visualization

import "math"

// fitToCanvas scales positions uniformly into the padded canvas and centres
// the result. An axis with no spread is centred rather than stretched.
func fitToCanvas(positions map[string]Position, width, height, padding float64) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	lo := Position{X: math.Inf(1), Y: math.Inf(1)}
	hi := Position{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range positions {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}

	spanX, spanY := hi.X-lo.X, hi.Y-lo.Y
	availX, availY := width-2*padding, height-2*padding

	scale := math.Inf(1)
	if spanX > 1e-9 {
		scale = availX / spanX
	}
	if spanY > 1e-9 {
		scale = math.Min(scale, availY/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}

	offX := (width - spanX*scale) / 2
	offY := (height - spanY*scale) / 2
	out := make(map[string]Position, len(positions))
	for id, p := range positions {
		out[id] = Position{
			X: offX + (p.X-lo.X)*scale,
			Y: offY + (p.Y-lo.Y)*scale,
		}
	}
	return out
}
