package carve

import "testing"

func TestIndexWidth(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 3},
		{5, 3},
		{999, 3},
		{1000, 4},
		{1234, 4},
		{123456, 6},
	}
	for _, tt := range tests {
		if got := IndexWidth(tt.total); got != tt.want {
			t.Errorf("IndexWidth(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestPartitionName(t *testing.T) {
	tests := []struct {
		index, total int
		format       Format
		want         string
	}{
		{1, 2, FormatPNG, "image_001.png"},
		{2, 2, FormatJPG, "image_002.jpg"},
		{5, 5, FormatGIF, "image_005.gif"},
		{7, 1234, FormatOpaque, "image_0007.bin"},
		{1234, 1234, FormatPNG, "image_1234.png"},
	}
	for _, tt := range tests {
		if got := PartitionName(tt.index, tt.total, tt.format); got != tt.want {
			t.Errorf("PartitionName(%d, %d, %v) = %q, want %q", tt.index, tt.total, tt.format, got, tt.want)
		}
	}
}

func TestSingleTypeName(t *testing.T) {
	if got := SingleTypeName(0, FormatPNG); got != "png_image_0.png" {
		t.Errorf("got %q", got)
	}
	if got := SingleTypeName(12, FormatJPG); got != "jpg_image_12.jpg" {
		t.Errorf("got %q", got)
	}
}

func TestResult_Names(t *testing.T) {
	t.Run("partition", func(t *testing.T) {
		res := NewScanner().Scan(samplePNGJPG())
		names := res.Names()
		want := []string{"image_001.png", "image_002.jpg"}
		if len(names) != len(want) {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("single type", func(t *testing.T) {
		jpg := []byte{0xFF, 0xD8, 0xFF, 0xD9}
		buf := concat(jpg, samplePNGJPG(), jpg)
		res := NewScanner(WithMode(ModeSingleType)).Scan(buf)
		names := res.Names()
		want := []string{"png_image_0.png", "jpg_image_0.jpg", "jpg_image_1.jpg", "jpg_image_2.jpg"}
		if len(names) != len(want) {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
			}
		}
	})

	t.Run("width follows total", func(t *testing.T) {
		res := &Result{Mode: ModePartition, Segments: make([]Segment, 1234)}
		names := res.Names()
		if names[0] != "image_0001.bin" || names[1233] != "image_1234.bin" {
			t.Errorf("Names() = %q ... %q", names[0], names[1233])
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"JPEG", FormatJPG, false},
		{" gif ", FormatGIF, false},
		{"bin", FormatOpaque, false},
		{"tiff", FormatOpaque, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSignatures_PriorityOrder(t *testing.T) {
	sigs := Signatures()
	want := []Format{FormatPNG, FormatJPG, FormatGIF}
	if len(sigs) != len(want) {
		t.Fatalf("got %d signatures, want %d", len(sigs), len(want))
	}
	for i, f := range want {
		if sigs[i].Format != f {
			t.Errorf("Signatures()[%d] = %v, want %v", i, sigs[i].Format, f)
		}
	}

	gif, ok := SignatureFor(FormatGIF)
	if !ok || gif.Stride(true) != 1 {
		t.Error("GIF terminator must always be searched at byte stride")
	}
	png, _ := SignatureFor(FormatPNG)
	if png.Stride(true) != 8 || png.Stride(false) != 1 {
		t.Errorf("PNG stride = %d/%d, want 8/1", png.Stride(true), png.Stride(false))
	}
	if _, ok := SignatureFor(FormatOpaque); ok {
		t.Error("OPAQUE has no signature")
	}
}
