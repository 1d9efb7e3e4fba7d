package visualization

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultGraphvizBinary is looked up on PATH.
const DefaultGraphvizBinary = "dot"

var (
	// ErrGraphvizNotFound means the dot binary is not installed.
	ErrGraphvizNotFound = errors.New("graphviz dot binary not found")
	// ErrUnsupportedFormat is returned for output formats dot is not asked to produce.
	ErrUnsupportedFormat = errors.New("unsupported render format")
)

// ExternalFormats are the formats Graphviz renders for us.
var ExternalFormats = []string{"png", "pdf", "svg"}

// Graphviz renders DOT files with an installed dot binary.
type Graphviz struct {
	Binary string
}

// RenderExternal renders dotPath with the dot binary on PATH.
func RenderExternal(ctx context.Context, dotPath, format string) (string, error) {
	return Graphviz{}.Render(ctx, dotPath, format)
}

// Render writes dotPath rendered as format next to it and returns the output
// path, e.g. airprox.dot -> airprox.png.
func (g Graphviz) Render(ctx context.Context, dotPath, format string) (string, error) {
	if !supportedExternal(format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	bin := g.Binary
	if bin == "" {
		bin = DefaultGraphvizBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrGraphvizNotFound, bin)
	}

	out := strings.TrimSuffix(dotPath, filepath.Ext(dotPath)) + "." + format
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-T"+format, "-o", out, dotPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("dot -T%s %s: %w: %s", format, dotPath, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func supportedExternal(format string) bool {
	for _, f := range ExternalFormats {
		if f == format {
			return true
		}
	}
	return false
}
