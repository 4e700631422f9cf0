// Package carve recovers image containers from raw binary data.
package carve

import "bytes"

// FindTerminator returns the smallest offset o >= start, with
// (o-start) a multiple of stride, at which pattern occurs entirely within
// buf. It returns -1 if there is no such offset.
func FindTerminator(buf []byte, start int, pattern []byte, stride int) int {
	if len(pattern) == 0 || start < 0 {
		return -1
	}
	if stride <= 1 {
		if start > len(buf) {
			return -1
		}
		idx := bytes.Index(buf[start:], pattern)
		if idx < 0 {
			return -1
		}
		return start + idx
	}

	for o := start; o+len(pattern) <= len(buf); o += stride {
		if bytes.Equal(buf[o:o+len(pattern)], pattern) {
			return o
		}
	}
	return -1
}

// NextHeader returns the smallest offset >= from at which any of sigs has
// a header match, or len(buf) if there is none.
func NextHeader(buf []byte, from int, sigs []Signature) int {
	for i := from; i < len(buf); i++ {
		if matchAny(buf, i, sigs) >= 0 {
			return i
		}
	}
	return len(buf)
}

// matchAny returns the index into sigs of the first signature whose header
// matches at buf[i], or -1.
func matchAny(buf []byte, i int, sigs []Signature) int {
	for k := range sigs {
		if sigs[k].MatchHeader(buf, i) {
			return k
		}
	}
	return -1
}

// terminatorCache remembers failed terminator searches. A search for a
// signature that failed from offset p also fails from every q > p with
// q ≡ p (mod stride), since it inspects a subset of the same windows.
type terminatorCache struct {
	// misses[k][r] is the smallest failing start with residue r for
	// signature k, or -1.
	misses [][]int
}

func newTerminatorCache(sigs []Signature, aligned bool) *terminatorCache {
	c := &terminatorCache{misses: make([][]int, len(sigs))}
	for k, s := range sigs {
		m := make([]int, s.Stride(aligned))
		for r := range m {
			m[r] = -1
		}
		c.misses[k] = m
	}
	return c
}

// find locates the terminator of sigs[k] from start, consulting and
// updating the miss cache.
func (c *terminatorCache) find(buf []byte, start int, sigs []Signature, k int, aligned bool) int {
	stride := sigs[k].Stride(aligned)
	r := start % stride
	if miss := c.misses[k][r]; miss >= 0 && start >= miss {
		return -1
	}
	end := FindTerminator(buf, start, sigs[k].Terminator, stride)
	if end < 0 {
		c.misses[k][r] = start
	}
	return end
}
