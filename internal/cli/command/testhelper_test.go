package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the
// logger writing at the same time.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// result is the captured outcome of one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// isolate points HOME at an empty directory so no user config is read.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// newApp builds the CLI with captured output streams.
func newApp() (*cli.App, *syncBuffer, *syncBuffer) {
	app := App()
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	app.Writer = stdout
	app.ErrWriter = stderr
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app, stdout, stderr
}

// run invokes the CLI with args (without the program name).
func run(t *testing.T, args ...string) result {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	app, stdout, stderr := newApp()
	err := app.RunContext(ctx, append([]string{"imgcarve"}, args...))
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// scenarioInput is a 26-byte PNG-tagged range followed by a 9-byte
// JPG-tagged range.
func scenarioInput() []byte {
	var buf []byte
	buf = append(buf, 0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A)
	buf = append(buf, make([]byte, 10)...)
	buf = append(buf, 0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82)
	buf = append(buf, 0xFF, 0xD8, 0, 0, 0, 0, 0, 0xFF, 0xD9)
	return buf
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
