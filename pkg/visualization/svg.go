package visualization

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"
)

const (
	svgBoxWidth   = 170.0
	svgBoxHeight  = 70.0
	svgCircleR    = 55.0
	svgLineHeight = 14.0
)

// DefaultSVGConfig sizes the canvas for a typical bow-tie.
func DefaultSVGConfig() *LayoutConfig {
	return &LayoutConfig{Width: 1400, Height: 800, Padding: 90}
}

// WriteSVG draws d with positions from layout. No external tools are needed.
func WriteSVG(w io.Writer, d *Diagram, layout Layout, config *LayoutConfig) error {
	if config == nil {
		config = DefaultSVGConfig()
	}
	positions, err := layout.ComputeLayout(d)
	if err != nil {
		return fmt.Errorf("layout %s: %w", d.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`, num(config.Width), num(config.Height)))
	sb.WriteString("\n")
	sb.WriteString(`<defs>
  <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">
    <path d="M 0 0 L 10 5 L 0 10 z" fill="#555"/>
  </marker>
</defs>
<style>
  .link { stroke: #555; stroke-width: 1.2px; fill: none; }
  .node { stroke: #333; stroke-width: 1px; }
  .label { font-family: Arial, sans-serif; font-size: 11px; }
</style>
`)

	nodes := make(map[string]DiagramNode, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = n
	}

	for _, e := range d.Edges {
		from, okFrom := positions[e.From]
		to, okTo := positions[e.To]
		if !okFrom || !okTo {
			continue
		}
		x1, y1 := boundaryPoint(from, to, nodes[e.From].Style.Shape)
		x2, y2 := boundaryPoint(to, from, nodes[e.To].Style.Shape)
		sb.WriteString(fmt.Sprintf(`  <line class="link" x1="%s" y1="%s" x2="%s" y2="%s" marker-end="url(#arrow)"/>`,
			num(x1), num(y1), num(x2), num(y2)))
		sb.WriteString("\n")
	}

	for _, n := range d.Nodes {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}
		sb.WriteString(svgShape(n, pos))
		sb.WriteString(svgLabel(n, pos))
	}

	sb.WriteString("</svg>\n")
	_, err = io.WriteString(w, sb.String())
	return err
}

func svgShape(n DiagramNode, pos Position) string {
	fill := n.Style.FillColor
	if fill == "" {
		fill = "white"
	}
	switch n.Style.Shape {
	case "box":
		return fmt.Sprintf(`  <rect class="node" x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s"/>`+"\n",
			num(pos.X-svgBoxWidth/2), num(pos.Y-svgBoxHeight/2), num(svgBoxWidth), num(svgBoxHeight), fill)
	case "circle":
		return fmt.Sprintf(`  <circle class="node" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
			num(pos.X), num(pos.Y), num(svgCircleR), fill)
	case "ellipse":
		return fmt.Sprintf(`  <ellipse class="node" cx="%s" cy="%s" rx="%s" ry="%s" fill="%s"/>`+"\n",
			num(pos.X), num(pos.Y), num(svgBoxWidth/2), num(svgBoxHeight/2), fill)
	}
	return ""
}

func svgLabel(n DiagramNode, pos Position) string {
	color := n.Style.FontColor
	if color == "" {
		color = "black"
	}
	lines := strings.Split(n.Label, "\n")
	top := pos.Y - svgLineHeight*float64(len(lines)-1)/2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`  <text class="label" x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="%s">`,
		num(pos.X), num(top), color))
	for i, line := range lines {
		dy := "0"
		if i > 0 {
			dy = num(svgLineHeight)
		}
		sb.WriteString(fmt.Sprintf(`<tspan x="%s" dy="%s">%s</tspan>`, num(pos.X), dy, html.EscapeString(line)))
	}
	sb.WriteString("</text>\n")
	return sb.String()
}

// boundaryPoint moves from the centre of a node towards other until it
// leaves the node's outline, so arrows stop at the edge.
func boundaryPoint(center, other Position, shape string) (float64, float64) {
	dx, dy := other.X-center.X, other.Y-center.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return center.X, center.Y
	}
	ux, uy := dx/dist, dy/dist

	var t float64
	switch shape {
	case "circle":
		t = svgCircleR
	case "box", "ellipse":
		tx, ty := math.Inf(1), math.Inf(1)
		if ux != 0 {
			tx = (svgBoxWidth / 2) / math.Abs(ux)
		}
		if uy != 0 {
			ty = (svgBoxHeight / 2) / math.Abs(uy)
		}
		t = math.Min(tx, ty)
	default:
		t = svgLineHeight
	}
	t = math.Min(t, dist/2)
	return center.X + ux*t, center.Y + uy*t
}

func num(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
