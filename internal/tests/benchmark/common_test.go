package benchmark

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dustin/go-humanize"
)

// InputSizes defines the synthetic disk sizes for benchmarking.
var InputSizes = []int{1 << 20, 8 << 20, 64 << 20}

// SmallInputSizes for quick benchmarks.
var SmallInputSizes = []int{64 << 10, 1 << 20}

// sampleImages returns one encoded PNG and one encoded JPEG.
func sampleImages(b *testing.B) [][]byte {
	b.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 8), 0x40, 0xFF})
		}
	}

	var p, j bytes.Buffer
	if err := png.Encode(&p, img); err != nil {
		b.Fatal(err)
	}
	if err := jpeg.Encode(&j, img, nil); err != nil {
		b.Fatal(err)
	}
	return [][]byte{p.Bytes(), j.Bytes()}
}

// diskImage builds a buffer of about size bytes: random-length runs of
// signature-free filler with sample images embedded every density bytes.
func diskImage(b *testing.B, size, density int) []byte {
	b.Helper()
	images := sampleImages(b)
	rng := rand.New(rand.NewSource(1))

	buf := make([]byte, 0, size+density)
	for i := 0; len(buf) < size; i++ {
		gap := density/2 + rng.Intn(density)
		buf = append(buf, bytes.Repeat([]byte{0x11}, gap)...)
		buf = append(buf, images[i%len(images)]...)
	}
	return buf[:size]
}

// writeDisk stores data under a benchmark temp dir.
func writeDisk(b *testing.B, data []byte) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "disk.img")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		b.Fatal(err)
	}
	return path
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithSizes runs a benchmark function with various input sizes.
func runWithSizes(b *testing.B, sizes []int, benchFn func(b *testing.B, size int)) {
	for _, size := range sizes {
		b.Run(fmt.Sprintf("input_%s", humanize.IBytes(uint64(size))), func(b *testing.B) {
			b.SetBytes(int64(size))
			benchFn(b, size)
		})
	}
}
