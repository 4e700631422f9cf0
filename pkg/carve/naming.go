// Package carve recovers image containers from raw binary data.
package carve

import (
	"fmt"
	"strconv"
)

// minIndexWidth is the minimum zero-padded width of partition indices.
const minIndexWidth = 3

// IndexWidth returns the zero-padded index width for a partition of total
// segments: max(3, digits(total)).
func IndexWidth(total int) int {
	w := len(strconv.Itoa(total))
	if w < minIndexWidth {
		return minIndexWidth
	}
	return w
}

// PartitionName returns the artifact name of the 1-based index-th segment
// of a partition holding total segments, e.g. "image_007.png".
func PartitionName(index, total int, f Format) string {
	return fmt.Sprintf("image_%0*d.%s", IndexWidth(total), index, f.Ext())
}

// SingleTypeName returns the artifact name of the n-th (0-based) segment
// found by the pass for f, e.g. "jpg_image_0.jpg".
func SingleTypeName(n int, f Format) string {
	ext := f.Ext()
	return fmt.Sprintf("%s_image_%d.%s", ext, n, ext)
}

// Names returns the artifact name of every segment, in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Segments))
	if r.Mode == ModeSingleType {
		seen := make(map[Format]int)
		for i, s := range r.Segments {
			names[i] = SingleTypeName(seen[s.Format], s.Format)
			seen[s.Format]++
		}
		return names
	}

	total := len(r.Segments)
	for i, s := range r.Segments {
		names[i] = PartitionName(i+1, total, s.Format)
	}
	return names
}
