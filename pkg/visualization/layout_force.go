package visualization

import (
	"math"
	"math/rand/v2"
)

// ForceDirectedLayout spreads nodes apart while pulling linked ones together.
// Start positions come from config.Seed, so a layout is reproducible.
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout runs the Fruchterman-Reingold iterations.
func (fdl *ForceDirectedLayout) ComputeLayout(d *Diagram) (map[string]Position, error) {
	cfg := fdl.config
	if len(d.Nodes) == 0 {
		return make(map[string]Position), nil
	}
	if len(d.Nodes) == 1 {
		return map[string]Position{d.Nodes[0].ID: {X: cfg.Width / 2, Y: cfg.Height / 2}}, nil
	}

	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, 0))
	positions := make(map[string]Position, len(ids))
	for _, id := range ids {
		positions[id] = Position{
			X: rng.Float64()*(cfg.Width-2*cfg.Padding) + cfg.Padding,
			Y: rng.Float64()*(cfg.Height-2*cfg.Padding) + cfg.Padding,
		}
	}

	neighbours := make(map[string]map[string]bool, len(ids))
	for _, id := range ids {
		neighbours[id] = make(map[string]bool)
	}
	for _, e := range d.Edges {
		if _, ok := positions[e.From]; !ok {
			continue
		}
		if _, ok := positions[e.To]; !ok {
			continue
		}
		neighbours[e.From][e.To] = true
		neighbours[e.To][e.From] = true
	}

	k := math.Sqrt((cfg.Width * cfg.Height) / float64(len(ids))) // ideal edge length
	temperature := cfg.Width / 10.0

	for iter := 0; iter < cfg.Iterations; iter++ {
		forces := make(map[string]Position, len(ids))

		// Repulsion between all pairs
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Max(math.Sqrt(dx*dx+dy*dy), 0.01)

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along edges
		for _, a := range ids {
			for b := range neighbours[a] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[a] = Position{
					X: forces[a].X - (dx/dist)*force,
					Y: forces[a].Y - (dy/dist)*force,
				}
			}
		}

		cool := 1.0 - float64(iter)/float64(cfg.Iterations)
		for _, id := range ids {
			fx, fy := forces[id].X, forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force > 0 {
				step := math.Min(force, temperature) * cool
				positions[id] = Position{
					X: positions[id].X + (fx/force)*step,
					Y: positions[id].Y + (fy/force)*step,
				}
			}
		}

		temperature *= 0.95
	}

	return fitToCanvas(positions, cfg.Width, cfg.Height, cfg.Padding), nil
}
