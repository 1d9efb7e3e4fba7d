package visualization

import "fmt"

// Position is a point on the SVG canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       uint64  // Start positions for iterative algorithms
}

// Layout places the nodes of a diagram.
type Layout interface {
	ComputeLayout(d *Diagram) (map[string]Position, error)
}

// Layout names accepted by NewLayout.
const (
	LayoutLayered  = "layered"
	LayoutCircular = "circular"
	LayoutForce    = "force"
)

// NewLayout returns the named layout. An empty name means layered.
func NewLayout(name string, config *LayoutConfig) (Layout, error) {
	switch name {
	case "", LayoutLayered:
		return NewLayeredLayout(config), nil
	case LayoutCircular:
		return NewCircularLayout(config), nil
	case LayoutForce:
		return NewForceDirectedLayout(config), nil
	}
	return nil, fmt.Errorf("unknown layout %q", name)
}
