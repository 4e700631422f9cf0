// Package carve recovers image containers from raw binary data.
package carve

import (
	"bytes"
	"fmt"
	"strings"
)

// Format identifies the container type of a segment.
type Format uint8

const (
	// FormatOpaque marks bytes that match no known signature.
	FormatOpaque Format = iota
	FormatPNG
	FormatJPG
	FormatGIF
)

// String returns the upper-case tag of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPG:
		return "JPG"
	case FormatGIF:
		return "GIF"
	case FormatOpaque:
		return "OPAQUE"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Ext returns the file extension used for artifacts of this format.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPG:
		return "jpg"
	case FormatGIF:
		return "gif"
	default:
		return "bin"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFormat parses a format tag or extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "gif":
		return FormatGIF, nil
	case "opaque", "bin":
		return FormatOpaque, nil
	default:
		return FormatOpaque, fmt.Errorf("unknown format %q", s)
	}
}

// Signature describes how to recognise one container format.
type Signature struct {
	Format Format

	// Headers are the accepted leading literals. All headers of a
	// signature have the same length.
	Headers [][]byte

	// Terminator is the trailing literal that closes the container.
	Terminator []byte

	// Aligned reports whether the terminator may be searched at a stride
	// equal to its own length. The GIF trailer is a single marker byte
	// preceded by a block terminator and is never chunk aligned.
	Aligned bool
}

// HeaderLen returns the length of the header literals.
func (s Signature) HeaderLen() int {
	return len(s.Headers[0])
}

// MatchHeader reports whether any header literal starts at buf[i].
func (s Signature) MatchHeader(buf []byte, i int) bool {
	for _, h := range s.Headers {
		if i+len(h) <= len(buf) && bytes.Equal(buf[i:i+len(h)], h) {
			return true
		}
	}
	return false
}

// Stride returns the terminator search stride.
func (s Signature) Stride(aligned bool) int {
	if aligned && s.Aligned {
		return len(s.Terminator)
	}
	return 1
}

var (
	pngHeader     = []byte("\x89PNG\r\n\x1a\n")
	pngTerminator = []byte("IEND\xaeB\x60\x82")

	jpgHeader     = []byte{0xFF, 0xD8}
	jpgTerminator = []byte{0xFF, 0xD9}

	gif89aHeader  = []byte("GIF89a")
	gif87aHeader  = []byte("GIF87a")
	gifTerminator = []byte{0x00, 0x3B}
)

// registry is ordered by header priority.
var registry = []Signature{
	{
		Format:     FormatPNG,
		Headers:    [][]byte{pngHeader},
		Terminator: pngTerminator,
		Aligned:    true,
	},
	{
		Format:     FormatJPG,
		Headers:    [][]byte{jpgHeader},
		Terminator: jpgTerminator,
		Aligned:    true,
	},
	{
		Format:     FormatGIF,
		Headers:    [][]byte{gif89aHeader, gif87aHeader},
		Terminator: gifTerminator,
	},
}

// Signatures returns the known signatures in priority order: PNG, JPG, GIF.
// The returned slice is a copy; the byte literals are shared and must not
// be modified.
func Signatures() []Signature {
	out := make([]Signature, len(registry))
	copy(out, registry)
	return out
}

// SignatureFor returns the signature registered for f.
func SignatureFor(f Format) (Signature, bool) {
	for _, s := range registry {
		if s.Format == f {
			return s, true
		}
	}
	return Signature{}, false
}

// ImageFormats returns the recognisable formats in priority order.
func ImageFormats() []Format {
	out := make([]Format, 0, len(registry))
	for _, s := range registry {
		out = append(out, s.Format)
	}
	return out
}
