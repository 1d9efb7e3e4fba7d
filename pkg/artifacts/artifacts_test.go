package artifacts

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-bowtie/pkg/metrics"
)

func TestDirSinkPut(t *testing.T) {
	root := t.TempDir()
	sink := NewDirSink(root)

	if err := sink.Put(context.Background(), "diagrams/airprox.dot", strings.NewReader("digraph {}")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "diagrams", "airprox.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "digraph {}" {
		t.Errorf("content = %q", data)
	}
}

func TestDirSinkRejectsEscapingNames(t *testing.T) {
	sink := NewDirSink(t.TempDir())
	for _, name := range []string{"", ".", "..", "../x", "a/../../x", "/etc/passwd"} {
		err := sink.Put(context.Background(), name, strings.NewReader("x"))
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestDirSinkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewDirSink(t.TempDir()).Put(ctx, "a.txt", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

type memorySink struct {
	mu    sync.Mutex
	name  string
	fail  bool
	items map[string]string
}

func (m *memorySink) Name() string { return m.name }

func (m *memorySink) Put(_ context.Context, name string, r io.Reader) error {
	if m.fail {
		return errors.New("unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]string)
	}
	m.items[name] = string(data)
	return nil
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPublisherPublish(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"airprox.dot":       "digraph {}",
		"airprox.svg":       "<svg/>",
		"archive/run.trace": "trace",
	})
	files := []string{
		filepath.Join(dir, "airprox.dot"),
		filepath.Join(dir, "airprox.svg"),
		filepath.Join(dir, "archive", "run.trace"),
	}

	reg := metrics.NewRegistry()
	good := &memorySink{name: "memory"}
	bad := &memorySink{name: "broken", fail: true}

	err := NewPublisher([]Sink{good, bad}, WithMetrics(reg)).Publish(context.Background(), dir, files)
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the failing sink: %v", err)
	}

	if len(good.items) != 3 {
		t.Fatalf("uploaded %d items, want 3", len(good.items))
	}
	if good.items["archive/run.trace"] != "trace" {
		t.Errorf("nested file = %q", good.items["archive/run.trace"])
	}

	if got := counterValue(t, reg.ArtifactUploadsTotal.WithLabelValues("memory", metrics.StatusSuccess)); got != 3 {
		t.Errorf("successful uploads = %v, want 3", got)
	}
	if got := counterValue(t, reg.ArtifactUploadsTotal.WithLabelValues("broken", metrics.StatusError)); got != 3 {
		t.Errorf("failed uploads = %v, want 3", got)
	}
}

func TestPublisherOnlyListedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"airprox.dot":    "digraph {}",
		"logictest.dot":  "stale",
		".git/HEAD":      "ref: refs/heads/main",
		"notes/todo.txt": "x",
	})

	sink := &memorySink{name: "memory"}
	err := NewPublisher([]Sink{sink}).Publish(context.Background(), dir, []string{filepath.Join(dir, "airprox.dot")})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(sink.items) != 1 || sink.items["airprox.dot"] != "digraph {}" {
		t.Errorf("uploaded %v, want only airprox.dot", sink.items)
	}
}

func TestPublisherRejectsFilesOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secret.txt")
	writeFiles(t, filepath.Dir(outside), map[string]string{"secret.txt": "x"})

	sink := &memorySink{name: "memory"}
	err := NewPublisher([]Sink{sink}).Publish(context.Background(), root, []string{outside})
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
	if len(sink.items) != 0 {
		t.Errorf("uploaded %v", sink.items)
	}
}

func TestPublisherMissingFile(t *testing.T) {
	dir := t.TempDir()
	sink := &memorySink{name: "memory"}
	err := NewPublisher([]Sink{sink}).Publish(context.Background(), dir, []string{filepath.Join(dir, "missing.dot")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(data))
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkPut(t *testing.T) {
	client := &fakeS3{}
	sink := newS3Sink(client, "risk", "runs/2026")

	if err := sink.Put(context.Background(), "airprox.svg", strings.NewReader("<svg/>")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("PutObject calls = %d", len(client.inputs))
	}
	in := client.inputs[0]
	if *in.Bucket != "risk" || *in.Key != "runs/2026/airprox.svg" {
		t.Errorf("bucket/key = %s/%s", *in.Bucket, *in.Key)
	}
	if in.ContentType == nil || *in.ContentType != "image/svg+xml" {
		t.Errorf("content type = %v", in.ContentType)
	}
	if client.bodies[0] != "<svg/>" {
		t.Errorf("body = %q", client.bodies[0])
	}
}

func TestS3SinkKey(t *testing.T) {
	sink := newS3Sink(&fakeS3{}, "risk", "")
	key, err := sink.Key("a/b.dot")
	if err != nil || key != "a/b.dot" {
		t.Errorf("Key = %q, %v", key, err)
	}
	if _, err := sink.Key("../b.dot"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
}

func TestS3SinkPutError(t *testing.T) {
	sink := newS3Sink(&fakeS3{err: errors.New("access denied")}, "risk", "")
	err := sink.Put(context.Background(), "a.json", strings.NewReader("{}"))
	if err == nil || !strings.Contains(err.Error(), "s3://risk/a.json") {
		t.Errorf("err = %v", err)
	}
}
