package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/storage/artifact"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/internal/telemetry/metric"
	"github.com/yndnr/imgcarve/pkg/carve"
)

var (
	pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	pngIEND   = []byte{0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82}
)

// scenarioInput is a 26-byte PNG-tagged range followed by a 9-byte
// JPG-tagged range. Neither decodes as a real image.
func scenarioInput() []byte {
	var buf []byte
	buf = append(buf, pngHeader...)
	buf = append(buf, make([]byte, 10)...)
	buf = append(buf, pngIEND...)
	buf = append(buf, 0xFF, 0xD8, 0, 0, 0, 0, 0, 0xFF, 0xD9)
	return buf
}

func realPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeInput(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestCarve_ScenarioKeepRaw(t *testing.T) {
	input := writeInput(t, scenarioInput())
	out := filepath.Join(t.TempDir(), "output")

	svc := NewCarveService(WithLogger(logger.Discard()))
	resp, err := svc.Carve(context.Background(), &CarveRequest{
		Input:     input,
		OutputDir: out,
		KeepRaw:   true,
	})
	if err != nil {
		t.Fatalf("Carve() error = %v", err)
	}

	if !domain.IsValidRunID(resp.RunID) {
		t.Errorf("RunID = %q is not a valid run ID", resp.RunID)
	}
	if got := listDir(t, out); strings.Join(got, ",") != "image_001.png,image_002.jpg" {
		t.Fatalf("files = %v", got)
	}

	sizes := map[string]int64{"image_001.png": 26, "image_002.jpg": 9}
	for name, want := range sizes {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != want {
			t.Errorf("%s size = %d, want %d", name, info.Size(), want)
		}
	}
}

func TestCarve_ScenarioReencodeFailures(t *testing.T) {
	input := writeInput(t, scenarioInput())
	out := filepath.Join(t.TempDir(), "output")

	reg := metric.NewRegistry()
	svc := NewCarveService(WithLogger(logger.Discard()), WithMetrics(reg))
	resp, err := svc.Carve(context.Background(), &CarveRequest{Input: input, OutputDir: out})
	if err != nil {
		t.Fatalf("Carve() error = %v, decode failures must not fail the run", err)
	}

	if len(resp.Report.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(resp.Report.Failures))
	}
	if got := listDir(t, out); len(got) != 0 {
		t.Errorf("output dir = %v, want empty", got)
	}
	if got := testutil.ToFloat64(reg.ArtifactFailures.WithLabelValues("decode")); got != 2 {
		t.Errorf("decode failures metric = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reg.SegmentsTotal.WithLabelValues("JPG")); got != 1 {
		t.Errorf("JPG segments metric = %v, want 1", got)
	}
}

func TestCarve_RoundTrip(t *testing.T) {
	var data []byte
	data = append(data, "lead-in bytes"...)
	data = append(data, realPNG(t)...)
	data = append(data, scenarioInput()...)
	data = append(data, "GIF89a trailing garbage without terminator"...)

	input := writeInput(t, data)
	out := filepath.Join(t.TempDir(), "output")
	merged := filepath.Join(t.TempDir(), "output.bin")

	carveSvc := NewCarveService(WithLogger(logger.Discard()))
	if _, err := carveSvc.Carve(context.Background(), &CarveRequest{
		Input:     input,
		OutputDir: out,
		KeepRaw:   true,
		Workers:   4,
	}); err != nil {
		t.Fatalf("Carve() error = %v", err)
	}

	mergeSvc := NewMergeService(WithLogger(logger.Discard()))
	stats, err := mergeSvc.Merge(context.Background(), &MergeRequest{Dir: out, Output: merged})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	got, err := os.ReadFile(merged)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip differs: got %d bytes, want %d", len(got), len(data))
	}
	if stats.Bytes != int64(len(data)) {
		t.Errorf("stats.Bytes = %d, want %d", stats.Bytes, len(data))
	}
}

func TestCarve_SingleTypeNames(t *testing.T) {
	var data []byte
	data = append(data, "xx"...)
	data = append(data, scenarioInput()...)
	data = append(data, scenarioInput()...)

	input := writeInput(t, data)
	out := filepath.Join(t.TempDir(), "output")

	svc := NewCarveService(WithLogger(logger.Discard()))
	resp, err := svc.Carve(context.Background(), &CarveRequest{
		Input:     input,
		OutputDir: out,
		Mode:      carve.ModeSingleType,
		KeepRaw:   true,
	})
	if err != nil {
		t.Fatalf("Carve() error = %v", err)
	}

	want := "jpg_image_0.jpg,jpg_image_1.jpg,png_image_0.png,png_image_1.png"
	if got := strings.Join(listDir(t, out), ","); got != want {
		t.Errorf("files = %s, want %s", got, want)
	}
	if resp.Result.Count(carve.FormatOpaque) != 0 {
		t.Error("single-type mode must not emit OPAQUE segments")
	}
}

func TestCarve_LogsCounts(t *testing.T) {
	input := writeInput(t, scenarioInput())

	var logBuf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "info", Format: "json", Output: &logBuf})
	if err != nil {
		t.Fatal(err)
	}

	svc := NewCarveService(WithLogger(l))
	out := filepath.Join(t.TempDir(), "output")
	if _, err := svc.Carve(context.Background(), &CarveRequest{Input: input, OutputDir: out, KeepRaw: true}); err != nil {
		t.Fatalf("Carve() error = %v", err)
	}

	log := logBuf.String()
	for _, want := range []string{
		`"format":"png","count":1`,
		`"format":"jpg","count":1`,
		`"format":"gif","count":0`,
		`"msg":"carve complete"`,
		`"total":2`,
		`"output":"` + out + `"`,
		`"run_id":"icrun-`,
	} {
		if !strings.Contains(log, want) {
			t.Errorf("log missing %s:\n%s", want, log)
		}
	}
}

func TestCarve_Errors(t *testing.T) {
	svc := NewCarveService(WithLogger(logger.Discard()))

	t.Run("missing input", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "nope.img")
		_, err := svc.Carve(context.Background(), &CarveRequest{Input: missing, OutputDir: t.TempDir()})
		if !errors.Is(err, domain.ErrInputRead) {
			t.Fatalf("error = %v, want ErrInputRead", err)
		}
		if !strings.Contains(err.Error(), missing) {
			t.Errorf("error %q should name the input", err)
		}
	})

	t.Run("output is a file", func(t *testing.T) {
		input := writeInput(t, scenarioInput())
		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := svc.Carve(context.Background(), &CarveRequest{Input: input, OutputDir: filepath.Join(blocker, "out")})
		if !errors.Is(err, domain.ErrOutputDir) {
			t.Fatalf("error = %v, want ErrOutputDir", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		input := writeInput(t, scenarioInput())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		resp, err := svc.Carve(ctx, &CarveRequest{Input: input, OutputDir: t.TempDir(), KeepRaw: true})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if resp == nil || resp.Report == nil {
			t.Fatal("partial response expected on cancellation")
		}
	})
}

func TestCarve_EmptyInput(t *testing.T) {
	input := writeInput(t, nil)
	out := filepath.Join(t.TempDir(), "output")

	resp, err := NewCarveService(WithLogger(logger.Discard())).Carve(context.Background(), &CarveRequest{Input: input, OutputDir: out})
	if err != nil {
		t.Fatalf("Carve() error = %v", err)
	}
	if len(resp.Result.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(resp.Result.Segments))
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output dir should still be created: %v", err)
	}
}

func TestCarve_Manifest(t *testing.T) {
	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			data := scenarioInput()
			input := writeInput(t, data)
			out := filepath.Join(t.TempDir(), "output")
			manifestPath := filepath.Join(t.TempDir(), "run"+ext)

			var scanned *carve.Result
			svc := NewCarveService(WithLogger(logger.Discard()))
			resp, err := svc.Carve(context.Background(), &CarveRequest{
				Input:     input,
				OutputDir: out,
				KeepRaw:   true,
				Manifest:  manifestPath,
				OnScanned: func(r *carve.Result) { scanned = r },
			})
			if err != nil {
				t.Fatalf("Carve() error = %v", err)
			}
			if scanned != resp.Result {
				t.Error("OnScanned should receive the scan result")
			}

			m, err := ReadManifest(manifestPath)
			if err != nil {
				t.Fatalf("ReadManifest() error = %v", err)
			}
			if m.RunID != resp.RunID {
				t.Errorf("RunID = %q, want %q", m.RunID, resp.RunID)
			}
			if m.InputSize != 35 || m.InputDigest != domain.Digest(data) {
				t.Errorf("input = %d bytes %s", m.InputSize, m.InputDigest)
			}
			if m.Mode != "partition" || !m.KeepRaw {
				t.Errorf("mode/keep_raw = %s/%v", m.Mode, m.KeepRaw)
			}
			if len(m.Artifacts) != 2 {
				t.Fatalf("artifacts = %d, want 2", len(m.Artifacts))
			}

			jpg := m.Artifacts[1]
			if jpg.Name != "image_002.jpg" || jpg.Format != "JPG" || jpg.Start != 26 || jpg.End != 35 || jpg.Size != 9 {
				t.Errorf("artifact[1] = %+v", jpg)
			}
			if jpg.Digest != domain.Digest(data[26:35]) {
				t.Errorf("artifact digest = %s", jpg.Digest)
			}
			if jpg.Status != domain.StatusWritten {
				t.Errorf("status = %s, want written", jpg.Status)
			}
			if got := m.Counts()[domain.StatusWritten]; got != 2 {
				t.Errorf("written count = %d, want 2", got)
			}
		})
	}
}

func TestCarve_ManifestRecordsFailures(t *testing.T) {
	input := writeInput(t, scenarioInput())
	manifestPath := filepath.Join(t.TempDir(), "run.yaml")

	svc := NewCarveService(WithLogger(logger.Discard()))
	if _, err := svc.Carve(context.Background(), &CarveRequest{
		Input:     input,
		OutputDir: filepath.Join(t.TempDir(), "output"),
		Manifest:  manifestPath,
	}); err != nil {
		t.Fatalf("Carve() error = %v", err)
	}

	m, err := ReadManifest(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range m.Artifacts {
		if a.Status != domain.StatusFailed || a.Code != domain.ErrArtifactDecode.Code || !strings.Contains(a.Error, "IC-ART-5003") {
			t.Errorf("%s: status=%s code=%s error=%q, want failed decode", a.Name, a.Status, a.Code, a.Error)
		}
	}
}

func TestWriteManifest_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.yaml")
	err := WriteManifest(path, &domain.Manifest{})
	if !errors.Is(err, domain.ErrManifestWrite) {
		t.Errorf("error = %v, want ErrManifestWrite", err)
	}
}

func TestScan(t *testing.T) {
	input := writeInput(t, scenarioInput())
	svc := NewCarveService(WithLogger(logger.Discard()))

	resp, err := svc.Scan(context.Background(), &ScanRequest{Input: input, Digests: true})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if resp.Size != 35 || resp.Mode != carve.ModePartition {
		t.Errorf("resp = size %d mode %s", resp.Size, resp.Mode)
	}

	want := []SegmentInfo{
		{Index: 0, Name: "image_001.png", Format: carve.FormatPNG, Start: 0, End: 26, Size: 26},
		{Index: 1, Name: "image_002.jpg", Format: carve.FormatJPG, Start: 26, End: 35, Size: 9},
	}
	if len(resp.Segments) != len(want) {
		t.Fatalf("segments = %d, want %d", len(resp.Segments), len(want))
	}
	for i, w := range want {
		got := resp.Segments[i]
		if got.Digest == "" {
			t.Errorf("segment %d: digest missing", i)
		}
		got.Digest = ""
		if got != w {
			t.Errorf("segment %d = %+v, want %+v", i, got, w)
		}
	}

	if _, err := svc.Scan(context.Background(), &ScanRequest{Input: filepath.Join(t.TempDir(), "x")}); !errors.Is(err, domain.ErrInputRead) {
		t.Errorf("Scan(missing) error = %v, want ErrInputRead", err)
	}
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrArtifactCreate.At("p", nil), "create"},
		{domain.ErrArtifactWrite.At("p", nil), "write"},
		{domain.ErrArtifactDecode.At("p", nil), "decode"},
		{domain.ErrArtifactSave.At("p", nil), "save"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := failureReason(tt.err); got != tt.want {
			t.Errorf("failureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

type countingCodec struct {
	artifact.StdCodec
	calls *int
}

func (c countingCodec) Decode(data []byte) (artifact.Image, error) {
	*c.calls++
	return c.StdCodec.Decode(data)
}

func TestCarve_CustomCodec(t *testing.T) {
	input := writeInput(t, realPNG(t))
	out := filepath.Join(t.TempDir(), "output")

	var calls int
	svc := NewCarveService(WithLogger(logger.Discard()), WithCodec(countingCodec{calls: &calls}))
	resp, err := svc.Carve(context.Background(), &CarveRequest{Input: input, OutputDir: out})
	if err != nil {
		t.Fatalf("Carve() error = %v", err)
	}
	if resp.Report.Written != 1 || calls != 1 {
		t.Errorf("written = %d, decode calls = %d, want 1 and 1", resp.Report.Written, calls)
	}
}
