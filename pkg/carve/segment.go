// Package carve recovers image containers from raw binary data.
package carve

// Mode selects the scanning strategy.
type Mode uint8

const (
	// ModePartition runs one interleaved pass and assigns every input byte
	// to exactly one segment, using OPAQUE segments as filler.
	ModePartition Mode = iota

	// ModeSingleType runs one independent pass per format. Bytes outside
	// recognised containers are dropped.
	ModeSingleType
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSingleType:
		return "single"
	default:
		return "partition"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses "partition" or "single". An empty string yields
// ModePartition.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "partition", "full", "full-partition":
		return ModePartition, true
	case "single", "single-type", "per-format":
		return ModeSingleType, true
	default:
		return ModePartition, false
	}
}

// Segment is a half-open byte range [Start, End) of a scanned buffer.
type Segment struct {
	Format Format
	Start  int
	End    int

	buf []byte
}

// Len returns the number of bytes in the segment.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Bytes returns the segment's bytes as a subslice of the scanned buffer.
// The returned slice must not be modified.
func (s Segment) Bytes() []byte {
	return s.buf[s.Start:s.End:s.End]
}

// Result is the ordered segment directory of one scan.
type Result struct {
	Mode     Mode
	Size     int
	Segments []Segment
}

// Count returns the number of segments of format f.
func (r *Result) Count(f Format) int {
	n := 0
	for _, s := range r.Segments {
		if s.Format == f {
			n++
		}
	}
	return n
}

// Counts returns the number of segments per format.
func (r *Result) Counts() map[Format]int {
	out := make(map[Format]int)
	for _, s := range r.Segments {
		out[s.Format]++
	}
	return out
}

// CoveredBytes returns the total length of all segments. In partition
// mode it equals Size.
func (r *Result) CoveredBytes() int {
	n := 0
	for _, s := range r.Segments {
		n += s.Len()
	}
	return n
}
