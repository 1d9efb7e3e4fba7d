package visualization

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
)

// WriteDOT writes d as a Graphviz digraph.
func WriteDOT(w io.Writer, d *Diagram) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %s {\n", quoteDOT(d.Name)))
	if d.Direction != "" {
		sb.WriteString(fmt.Sprintf("    rankdir=%s;\n", d.Direction))
	}
	sb.WriteString("\n")

	for _, n := range d.Nodes {
		sb.WriteString(fmt.Sprintf("    %s [%s];\n", quoteDOT(n.ID), nodeAttrs(n)))
	}
	if len(d.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range d.Edges {
		sb.WriteString(fmt.Sprintf("    %s -> %s;\n", quoteDOT(e.From), quoteDOT(e.To)))
	}

	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func nodeAttrs(n DiagramNode) string {
	attrs := []string{fmt.Sprintf("label=%s", quoteDOT(n.Label))}
	if n.Style.Shape != "" {
		attrs = append(attrs, "shape="+n.Style.Shape)
	}
	if n.Style.Fill {
		attrs = append(attrs, "style=filled")
	}
	if n.Style.FillColor != "" {
		attrs = append(attrs, "fillcolor="+quoteDOT(n.Style.FillColor))
	}
	if n.Style.FontColor != "" {
		attrs = append(attrs, "fontcolor="+quoteDOT(n.Style.FontColor))
	}
	return strings.Join(attrs, ", ")
}

func quoteDOT(s string) string {
	return `"` + escapeDOTLabel(s) + `"`
}

func escapeDOTLabel(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
	)
	return replacer.Replace(s)
}

func unescapeDOT(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

var (
	dotNodeLine  = regexp.MustCompile(`^\s*"((?:[^"\\]|\\.)*)"\s*\[(.*)\];?\s*$`)
	dotLabelAttr = regexp.MustCompile(`(?:^|[\s,])label="((?:[^"\\]|\\.)*)"`)
)

// ParseDOTRoles reads DOT written by WriteDOT and recovers each node's role
// from the heading line of its label.
func ParseDOTRoles(r io.Reader) (map[string]bowtie.Role, error) {
	roles := make(map[string]bowtie.Role)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		m := dotNodeLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		id := unescapeDOT(m[1])
		lm := dotLabelAttr.FindStringSubmatch(m[2])
		if lm == nil {
			return nil, fmt.Errorf("line %d: node %q has no label", line, id)
		}
		title, _, _ := strings.Cut(unescapeDOT(lm[1]), "\n")
		role, err := bowtie.ParseRole(title)
		if err != nil {
			return nil, fmt.Errorf("line %d: node %q: %w", line, id, err)
		}
		roles[id] = role
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
