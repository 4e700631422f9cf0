// Package carve recovers image containers from raw binary data.
package carve

// Scanner walks a buffer and emits its segment directory.
// A Scanner is immutable after construction and safe for concurrent use.
type Scanner struct {
	mode    Mode
	formats []Format
	aligned bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMode sets the scanning strategy. The default is ModePartition.
func WithMode(m Mode) Option {
	return func(s *Scanner) {
		s.mode = m
	}
}

// WithFormats restricts single-type mode to the given formats, scanned in
// the given order. It has no effect in partition mode, where all formats
// are always tested in priority order. FormatOpaque is ignored.
func WithFormats(formats ...Format) Option {
	return func(s *Scanner) {
		s.formats = s.formats[:0]
		for _, f := range formats {
			if f != FormatOpaque {
				s.formats = append(s.formats, f)
			}
		}
	}
}

// WithAlignedStride searches PNG and JPG terminators in windows advanced by
// the terminator length instead of byte by byte.
func WithAlignedStride(aligned bool) Option {
	return func(s *Scanner) {
		s.aligned = aligned
	}
}

// NewScanner creates a scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		mode:    ModePartition,
		formats: ImageFormats(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the configured scanning strategy.
func (s *Scanner) Mode() Mode {
	return s.mode
}

// Scan builds the segment directory of buf. It never fails: a buffer with
// no recognisable content yields no image segments.
func (s *Scanner) Scan(buf []byte) *Result {
	res := &Result{Mode: s.mode, Size: len(buf)}
	switch s.mode {
	case ModeSingleType:
		for _, f := range s.formats {
			sig, ok := SignatureFor(f)
			if !ok {
				continue
			}
			res.Segments = append(res.Segments, s.scanFormat(buf, sig)...)
		}
	default:
		res.Segments = s.scanPartition(buf)
	}
	return res
}

// scanPartition runs the interleaved pass. Every byte of buf ends up in
// exactly one segment.
func (s *Scanner) scanPartition(buf []byte) []Segment {
	sigs := registry
	cache := newTerminatorCache(sigs, s.aligned)

	var segs []Segment
	i := 0
	for i < len(buf) {
		if k := matchAny(buf, i, sigs); k >= 0 {
			if t := cache.find(buf, i, sigs, k, s.aligned); t >= 0 {
				end := t + len(sigs[k].Terminator)
				segs = append(segs, Segment{Format: sigs[k].Format, Start: i, End: end, buf: buf})
				i = end
				continue
			}
			// Unterminated header: not an image start, so it is folded
			// into the opaque span below.
		}

		next := NextHeader(buf, i+1, sigs)
		segs = append(segs, Segment{Format: FormatOpaque, Start: i, End: next, buf: buf})
		i = next
	}
	return segs
}

// scanFormat runs one independent pass for a single signature.
func (s *Scanner) scanFormat(buf []byte, sig Signature) []Segment {
	sigs := []Signature{sig}
	cache := newTerminatorCache(sigs, s.aligned)

	var segs []Segment
	i := 0
	for i+sig.HeaderLen() <= len(buf) {
		if !sig.MatchHeader(buf, i) {
			i++
			continue
		}
		t := cache.find(buf, i, sigs, 0, s.aligned)
		if t < 0 {
			i++
			continue
		}
		end := t + len(sig.Terminator)
		segs = append(segs, Segment{Format: sig.Format, Start: i, End: end, buf: buf})
		i = end
	}
	return segs
}
