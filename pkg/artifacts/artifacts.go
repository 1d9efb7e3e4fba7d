// Package artifacts publishes rendered diagrams, reports and trace archives
// to one or more destinations.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-bowtie/pkg/logging"
	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
)

// ErrInvalidName is returned for artifact names that would escape the sink root.
var ErrInvalidName = errors.New("invalid artifact name")

// Sink is a destination for named artifacts.
type Sink interface {
	Name() string
	Put(ctx context.Context, name string, r io.Reader) error
}

// cleanName normalises an artifact name to a slash-separated relative key.
func cleanName(name string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(name))
	if name == "" || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// DirSink writes artifacts below a local directory.
type DirSink struct {
	Root string
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Root: dir}
}

func (d *DirSink) Name() string { return "dir" }

// Put writes r to Root/name, creating parent directories.
func (d *DirSink) Put(ctx context.Context, name string, r io.Reader) (retErr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := cleanName(name)
	if err != nil {
		return err
	}

	path := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close artifact: %w", closeErr)
		}
	}()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// Publisher copies local files to every configured sink.
type Publisher struct {
	sinks   []Sink
	logger  logging.Logger
	metrics *metrics.Registry
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(l logging.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// WithMetrics sets the registry that counts uploads.
func WithMetrics(m *metrics.Registry) PublisherOption {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher returns a publisher for sinks.
func NewPublisher(sinks []Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish uploads files to each sink, keyed by their paths relative to root.
// Files outside root are rejected. Failures are collected; a failing sink
// does not stop the others.
func (p *Publisher) Publish(ctx context.Context, root string, files []string) error {
	var errs []error
	keys := make([]string, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err == nil {
			rel, err = cleanName(rel)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		keys = append(keys, rel)
	}

	for _, sink := range p.sinks {
		for _, rel := range keys {
			err := p.put(ctx, sink, rel, filepath.Join(root, filepath.FromSlash(rel)))
			if p.metrics != nil {
				p.metrics.RecordArtifact(sink.Name(), err)
			}
			if err != nil {
				p.logger.Error("artifact upload failed",
					logging.String("sink", sink.Name()), logging.Path(rel), logging.Error(err))
				errs = append(errs, fmt.Errorf("%s: %s: %w", sink.Name(), rel, err))
				continue
			}
			p.logger.Debug("artifact uploaded", logging.String("sink", sink.Name()), logging.Path(rel))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) put(ctx context.Context, sink Sink, name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return sink.Put(ctx, name, file)
}
